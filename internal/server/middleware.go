package server

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lawnchairsociety/gridclash/internal/logger"
)

const jsonKeyError = "error"

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"client_ip", getRealIP(c.Request),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("HTTP request failed", append(args, "errors", c.Errors.String())...)
			return
		}
		logger.Debug("HTTP request", args...)
	}
}

// rateLimit refuses submissions from clients over their window.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getRealIP(c.Request)
		ok, retry := s.rateLimiter.Allow(ip)
		if !ok {
			logger.Warning("Submission rate limited", "client_ip", ip, "retry_after", retry)
			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(retry.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{jsonKeyError: "too many submissions, try again later"})
			return
		}
		c.Next()
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.HTTP.MaxBodyBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.HTTP.MaxBodyBytes)
		}
		c.Next()
	}
}

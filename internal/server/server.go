// Package server exposes the round engine and the battle store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/gridclash/internal/config"
	"github.com/lawnchairsociety/gridclash/internal/database"
	"github.com/lawnchairsociety/gridclash/internal/engine"
	"github.com/lawnchairsociety/gridclash/internal/logger"
	"github.com/lawnchairsociety/gridclash/internal/replay"
)

// BattleStore persists finished battles.
type BattleStore interface {
	SaveBattle(ctx context.Context, r *database.BattleRecord) error
	GetBattle(ctx context.Context, id string) (*database.BattleRecord, error)
	ListBattles(ctx context.Context, limit int) ([]database.BattleRecord, error)
	HeroStats(ctx context.Context) ([]database.HeroStat, error)
}

type Server struct {
	cfg          *config.ServerConfig
	engine       *engine.Engine
	store        BattleStore
	policy       engine.PriorityPolicy
	streamer     *replay.Streamer
	upgrader     websocket.Upgrader
	slots        *ReplaySlots
	rateLimiter  *SubmitRateLimiter
	router       *gin.Engine
	httpServer   *http.Server
	shutdownOnce sync.Once
	StartTime    time.Time
}

// NewServer wires the HTTP API. store must not be nil.
func NewServer(cfg *config.ServerConfig, eng *engine.Engine, store BattleStore) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if eng == nil || store == nil {
		return nil, errors.New("server needs an engine and a battle store")
	}
	policy, err := engine.PolicyByName(cfg.Engine.Priority)
	if err != nil {
		return nil, err
	}
	if cfg.HTTP.Mode != "" {
		gin.SetMode(cfg.HTTP.Mode)
	}

	s := &Server{
		cfg:         cfg,
		engine:      eng,
		store:       store,
		policy:      policy,
		streamer:    replay.NewStreamer(cfg.Replay.AckTimeout()),
		slots:       NewReplaySlots(cfg.Connections),
		rateLimiter: NewSubmitRateLimiter(cfg.RateLimit),
		StartTime:   time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("Replay connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	{
		api.GET("/catalog/heroes", s.listHeroes)
		api.GET("/battles", s.listBattles)
		api.GET("/battles/:id", s.getBattle)
		api.GET("/battles/:id/replay", s.replayBattle)
		api.GET("/stats/heroes", s.heroStats)

		submit := api.Group("", s.rateLimit(), s.limitBody())
		submit.POST("/rounds", s.executeRound)
		submit.POST("/battles", s.createBattle)
	}
	return r
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTP.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Always("HTTP server listening", "address", s.cfg.HTTP.Address)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the listener and background work. It is safe to call more
// than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}
		logger.Info("Server shutdown complete", "uptime", time.Since(s.StartTime).Round(time.Second))
	})
	return err
}

// roundOptions returns unpaced options; pacing over HTTP is the replay
// client's job.
func (s *Server) roundOptions() engine.Options {
	opts := engine.Instant()
	opts.Priority = s.policy
	return opts
}

// getRealIP extracts the real client IP from an HTTP request.
// It checks X-Forwarded-For header first (for reverse proxy setups),
// then falls back to the direct remote address.
func getRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// "client, proxy1, proxy2"
		ips := strings.Split(xff, ",")
		if clientIP := strings.TrimSpace(ips[0]); clientIP != "" {
			return clientIP
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return hostOnly(r.RemoteAddr)
}

package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/gridclash/internal/config"
)

// SubmitRateLimiter limits battle and round submissions per IP. A client that
// exhausts its window is locked out, and each repeated lockout doubles up to
// the configured maximum.
type SubmitRateLimiter struct {
	mu              sync.Mutex
	clients         map[string]*submitInfo
	maxRequests     int
	window          time.Duration
	lockout         time.Duration
	maxLockout      time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

type submitInfo struct {
	windowStart  time.Time
	count        int
	lockedUntil  time.Time
	lockoutCount int
}

// NewSubmitRateLimiter creates a limiter and starts its cleanup goroutine.
func NewSubmitRateLimiter(cfg config.RateLimitConfig) *SubmitRateLimiter {
	rl := &SubmitRateLimiter{
		clients:         make(map[string]*submitInfo),
		maxRequests:     cfg.MaxRequests,
		window:          time.Duration(cfg.WindowSeconds) * time.Second,
		lockout:         time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:      time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	if rl.maxRequests == 0 {
		rl.maxRequests = 30
	}
	if rl.window == 0 {
		rl.window = time.Minute
	}
	if rl.lockout == 0 {
		rl.lockout = 30 * time.Second
	}
	if rl.maxLockout == 0 {
		rl.maxLockout = 5 * time.Minute
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the cleanup goroutine.
func (rl *SubmitRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Allow records a submission from ip. It returns false with the remaining
// lockout when the submission is refused.
func (rl *SubmitRateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, exists := rl.clients[ip]
	if !exists {
		info = &submitInfo{windowStart: now}
		rl.clients[ip] = info
	}

	if now.Before(info.lockedUntil) {
		return false, info.lockedUntil.Sub(now)
	}

	if now.Sub(info.windowStart) >= rl.window {
		info.windowStart = now
		info.count = 0
	}

	info.count++
	if info.count <= rl.maxRequests {
		return true, 0
	}

	info.lockoutCount++
	d := rl.lockout
	for i := 1; i < info.lockoutCount; i++ {
		if d >= rl.maxLockout/2 {
			d = rl.maxLockout
			break
		}
		d *= 2
	}
	if d > rl.maxLockout {
		d = rl.maxLockout
	}
	info.lockedUntil = now.Add(d)
	info.windowStart = info.lockedUntil
	info.count = 0
	return false, d
}

// Count returns the submissions ip made in its current window.
func (rl *SubmitRateLimiter) Count(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if info, exists := rl.clients[ip]; exists {
		return info.count
	}
	return 0
}

func (rl *SubmitRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCleanup:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup drops clients whose window and lockout both ended long ago.
func (rl *SubmitRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	for ip, info := range rl.clients {
		if info.lockedUntil.Before(cutoff) && info.windowStart.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

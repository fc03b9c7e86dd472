package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-wide configuration settings.
type ServerConfig struct {
	HTTP        HTTPConfig        `yaml:"http"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Replay      ReplayConfig      `yaml:"replay"`
	Engine      EngineConfig      `yaml:"engine"`
	Database    DatabaseConfig    `yaml:"database"`
	Simulation  SimulationConfig  `yaml:"simulation"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Address string `yaml:"address"`
	// Mode is the gin mode: debug, release or test.
	Mode string `yaml:"mode"`
	// MaxBodyBytes caps posted battle states and lineups.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// RateLimitConfig limits battle submissions per client IP.
type RateLimitConfig struct {
	// MaxRequests is the number of submissions allowed per window.
	MaxRequests int `yaml:"max_requests"`

	// WindowSeconds is the counting window.
	WindowSeconds int `yaml:"window_seconds"`

	// LockoutSeconds is the initial lockout once the window is exhausted.
	LockoutSeconds int `yaml:"lockout_seconds"`

	// MaxLockoutSeconds caps the exponential backoff.
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// ConnectionsConfig holds replay connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent replay sockets from a single IP address.
	// 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent replay sockets.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`

	// MaxPerBattle caps concurrent viewers of one stored battle.
	// 0 means unlimited.
	MaxPerBattle int `yaml:"max_per_battle"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum inbound message size in bytes. Clients only
	// send acks, so this stays small.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// ReplayConfig controls step streaming.
type ReplayConfig struct {
	// AckTimeoutMs is how long a step waits for its ack before the stream
	// advances on its own.
	AckTimeoutMs int `yaml:"ack_timeout_ms"`
}

// AckTimeout returns the ack timeout as a duration.
func (c ReplayConfig) AckTimeout() time.Duration {
	return time.Duration(c.AckTimeoutMs) * time.Millisecond
}

// EngineConfig holds presentation pacing and battle limits.
type EngineConfig struct {
	CastDelayMs       int     `yaml:"cast_delay_ms"`
	ReactionDelayMs   int     `yaml:"reaction_delay_ms"`
	PostEffectDelayMs int     `yaml:"post_effect_delay_ms"`
	SpeedMultiplier   float64 `yaml:"speed_multiplier"`
	// MaxRounds ends a battle as a draw when reached.
	MaxRounds int `yaml:"max_rounds"`
	// Priority selects the next-round priority policy: lowerHealth or alternate.
	Priority string `yaml:"priority"`
}

// DatabaseConfig selects the battle record store.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SimulationConfig holds batch self-play settings.
type SimulationConfig struct {
	Workers int   `yaml:"workers"`
	Battles int   `yaml:"battles"`
	Seed    int64 `yaml:"seed"`
}

// DefaultConfig returns a ServerConfig with safe defaults.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		HTTP: HTTPConfig{
			Address:      ":8080",
			Mode:         "release",
			MaxBodyBytes: 1 << 20,
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: []string{}, // Same-origin only by default
			MaxMessageSize: 512,
		},
		Connections: ConnectionsConfig{
			MaxPerIP:     3,
			MaxTotal:     100,
			MaxPerBattle: 20,
		},
		RateLimit: RateLimitConfig{
			MaxRequests:       30,
			WindowSeconds:     60,
			LockoutSeconds:    30,
			MaxLockoutSeconds: 300,
		},
		Replay: ReplayConfig{
			AckTimeoutMs: 2000,
		},
		Engine: EngineConfig{
			CastDelayMs:       600,
			ReactionDelayMs:   300,
			PostEffectDelayMs: 200,
			SpeedMultiplier:   1,
			MaxRounds:         50,
			Priority:          "lowerHealth",
		},
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "data/gridclash.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Simulation: SimulationConfig{
			Workers: 4,
			Battles: 1000,
			Seed:    1,
		},
	}
}

// LoadConfig loads server configuration from a YAML file.
// If the file doesn't exist, returns default config.
func LoadConfig(path string) (*ServerConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}
	if err := config.Validate(); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// Validate rejects settings the server cannot run with.
func (c *ServerConfig) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}
	switch c.Engine.Priority {
	case "lowerHealth", "alternate":
	default:
		return fmt.Errorf("engine.priority: unknown policy %q", c.Engine.Priority)
	}
	if c.Engine.SpeedMultiplier < 0 {
		return fmt.Errorf("engine.speed_multiplier: must not be negative")
	}
	if c.Connections.MaxPerIP < 0 || c.Connections.MaxTotal < 0 || c.Connections.MaxPerBattle < 0 {
		return fmt.Errorf("connections: limits must not be negative")
	}
	if c.Simulation.Workers < 1 {
		return fmt.Errorf("simulation.workers: must be at least 1")
	}
	return nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}

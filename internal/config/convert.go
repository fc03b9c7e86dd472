package config

import (
	"time"

	"github.com/lawnchairsociety/gridclash/internal/database"
	"github.com/lawnchairsociety/gridclash/internal/engine"
)

// Options returns paced engine options for local playback.
func (c EngineConfig) Options() (engine.Options, error) {
	policy, err := engine.PolicyByName(c.Priority)
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		CastDelay:       time.Duration(c.CastDelayMs) * time.Millisecond,
		ReactionDelay:   time.Duration(c.ReactionDelayMs) * time.Millisecond,
		PostEffectDelay: time.Duration(c.PostEffectDelayMs) * time.Millisecond,
		SpeedMultiplier: c.SpeedMultiplier,
		Priority:        policy,
	}, nil
}

// Store returns the database connection settings. Pool limits come from
// database.DefaultPostgresConfig.
func (c DatabaseConfig) Store() database.Config {
	pg := database.DefaultPostgresConfig()
	if c.Postgres.Host != "" {
		pg.Host = c.Postgres.Host
	}
	if c.Postgres.Port != 0 {
		pg.Port = c.Postgres.Port
	}
	if c.Postgres.SSLMode != "" {
		pg.SSLMode = c.Postgres.SSLMode
	}
	pg.User = c.Postgres.User
	pg.Password = c.Postgres.Password
	pg.Database = c.Postgres.Database

	return database.Config{
		Driver:     c.Driver,
		SQLitePath: c.SQLitePath,
		Postgres:   pg,
	}
}

package database

import (
	"strconv"
	"strings"
	"time"
)

// Config selects and addresses the battle store.
type Config struct {
	Driver     string // "sqlite" or "postgres"
	SQLitePath string
	Postgres   PostgresConfig
}

// PostgresConfig addresses a PostgreSQL server and sizes its pool.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders c as a lib/pq keyword/value string. Empty credentials are
// omitted so the driver can fall back to PGUSER and PGPASSWORD.
func (c PostgresConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := ""
	if c.Port > 0 {
		port = strconv.Itoa(c.Port)
	}
	pairs := [][2]string{
		{"host", c.Host},
		{"port", port},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.Database},
		{"sslmode", sslMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		if kv[1] == "" {
			continue
		}
		parts = append(parts, kv[0]+"="+quoteDSNValue(kv[1]))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue single-quotes values containing spaces or quotes, escaping
// quotes and backslashes.
func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// DefaultConfig stores battles in a SQLite file at sqlitePath.
func DefaultConfig(sqlitePath string) Config {
	return Config{Driver: string(DialectSQLite), SQLitePath: sqlitePath}
}

// DefaultPostgresConfig returns a local server with a modest pool.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
)

// =============================================================================
// Dialect Tests
// =============================================================================

func TestNewDialect(t *testing.T) {
	if _, ok := NewDialect(DialectSQLite).(*SQLiteDialect); !ok {
		t.Error("expected *SQLiteDialect")
	}
	if _, ok := NewDialect(DialectPostgres).(*PostgresDialect); !ok {
		t.Error("expected *PostgresDialect")
	}
	// Unknown dialect should default to SQLite
	if _, ok := NewDialect("unknown").(*SQLiteDialect); !ok {
		t.Error("expected default *SQLiteDialect")
	}
}

func TestDialect_InterfaceCompliance(t *testing.T) {
	var _ Dialect = &SQLiteDialect{}
	var _ Dialect = &PostgresDialect{}
}

func TestDialect_DriverNames(t *testing.T) {
	if got := (&SQLiteDialect{}).DriverName(); got != "sqlite" {
		t.Errorf("sqlite DriverName() = %q", got)
	}
	if got := (&PostgresDialect{}).DriverName(); got != "postgres" {
		t.Errorf("postgres DriverName() = %q", got)
	}
}

func TestDialect_Placeholder(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		position int
		want     string
	}{
		{&SQLiteDialect{}, 1, "?"},
		{&SQLiteDialect{}, 10, "?"},
		{&PostgresDialect{}, 1, "$1"},
		{&PostgresDialect{}, 2, "$2"},
		{&PostgresDialect{}, 100, "$100"},
	}
	for _, tt := range tests {
		if got := tt.dialect.Placeholder(tt.position); got != tt.want {
			t.Errorf("%T.Placeholder(%d) = %q, want %q", tt.dialect, tt.position, got, tt.want)
		}
	}
}

func TestDialect_InitStatements(t *testing.T) {
	stmts := (&SQLiteDialect{}).InitStatements()
	joined := strings.Join(stmts, ";")
	for _, want := range []string{"foreign_keys", "journal_mode", "busy_timeout"} {
		if !strings.Contains(joined, want) {
			t.Errorf("SQLite init statements missing %s: %v", want, stmts)
		}
	}
	if stmts := (&PostgresDialect{}).InitStatements(); len(stmts) != 0 {
		t.Errorf("Postgres init statements = %v, want none", stmts)
	}
}

func TestDialect_AutoIncrementKey(t *testing.T) {
	if got := (&SQLiteDialect{}).AutoIncrementKey(); !strings.Contains(got, "AUTOINCREMENT") {
		t.Errorf("sqlite key = %q", got)
	}
	if got := (&PostgresDialect{}).AutoIncrementKey(); !strings.HasPrefix(got, "SERIAL") {
		t.Errorf("postgres key = %q", got)
	}
}

func TestDialect_IsDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		err     error
		want    bool
	}{
		{"sqlite nil", &SQLiteDialect{}, nil, false},
		{"sqlite unique", &SQLiteDialect{}, errors.New("UNIQUE constraint failed: battles.id"), true},
		{"sqlite primary key", &SQLiteDialect{}, errors.New("constraint failed: PRIMARY KEY constraint failed"), true},
		{"sqlite other", &SQLiteDialect{}, errors.New("no such table: battles"), false},
		{"postgres nil", &PostgresDialect{}, nil, false},
		{"postgres code", &PostgresDialect{}, errors.New("ERROR: 23505"), true},
		{"postgres other", &PostgresDialect{}, errors.New("connection refused"), false},
		{"postgres typed", &PostgresDialect{}, &pq.Error{Code: "23505"}, true},
		{"postgres wrapped", &PostgresDialect{}, fmt.Errorf("save battle: %w", &pq.Error{Code: "23505"}), true},
		{"postgres foreign key", &PostgresDialect{}, &pq.Error{Code: "23503", Message: "violates foreign key"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.IsDuplicateKeyError(tt.err); got != tt.want {
				t.Errorf("IsDuplicateKeyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// =============================================================================
// QueryBuilder Tests
// =============================================================================

func TestQueryBuilder_Build(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"sqlite unchanged", &SQLiteDialect{}, "SELECT * FROM battles WHERE id = ? AND winner = ?", "SELECT * FROM battles WHERE id = ? AND winner = ?"},
		{"postgres numbered", &PostgresDialect{}, "SELECT * FROM battles WHERE id = ? AND winner = ?", "SELECT * FROM battles WHERE id = $1 AND winner = $2"},
		{"postgres empty", &PostgresDialect{}, "", ""},
		{"postgres none", &PostgresDialect{}, "SELECT COUNT(*) FROM battles", "SELECT COUNT(*) FROM battles"},
		{"postgres quoted", &PostgresDialect{}, "SELECT * FROM battles WHERE winner = '?' AND id = ?", "SELECT * FROM battles WHERE winner = '?' AND id = $1"},
		{"postgres many", &PostgresDialect{}, "VALUES (?, ?, ?, ?, ?)", "VALUES ($1, $2, $3, $4, $5)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewQueryBuilder(tt.dialect).Build(tt.query); got != tt.want {
				t.Errorf("Build(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestQueryBuilder_BuildRepeated(t *testing.T) {
	qb := NewQueryBuilder(&PostgresDialect{})
	q := "SELECT hero_id FROM battle_heroes WHERE battle_id = ? AND won = ?"
	first := qb.Build(q)
	if second := qb.Build(q); second != first {
		t.Errorf("second Build() = %q, want %q", second, first)
	}
	if other := qb.Build("DELETE FROM battles WHERE id = ?"); other != "DELETE FROM battles WHERE id = $1" {
		t.Errorf("Build() = %q", other)
	}
}

// =============================================================================
// Config Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/tmp/battles.db")
	if cfg.Driver != "sqlite" || cfg.SQLitePath != "/tmp/battles.db" {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig()
	if cfg.Host != "localhost" || cfg.Port != 5432 || cfg.SSLMode != "disable" {
		t.Errorf("DefaultPostgresConfig() = %+v", cfg)
	}
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 || cfg.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("pool settings = %+v", cfg)
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5433, User: "clash", Password: "secret", Database: "gridclash"}
	want := "host=db port=5433 user=clash password=secret dbname=gridclash sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	cfg.Password = "it's secret"
	if got := cfg.DSN(); !strings.Contains(got, `password='it\'s secret'`) {
		t.Errorf("DSN() = %q, want quoted password", got)
	}
	cfg.User, cfg.Password = "", ""
	if got := cfg.DSN(); strings.Contains(got, "user=") || strings.Contains(got, "password=") {
		t.Errorf("DSN() = %q, want empty credentials omitted", got)
	}
	cfg.SSLMode = "require"
	if got := cfg.DSN(); !strings.HasSuffix(got, "sslmode=require") {
		t.Errorf("DSN() = %q, want sslmode=require", got)
	}
}

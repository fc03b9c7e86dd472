// Package database persists finished battles and their step logs. SQLite is
// the default store; PostgreSQL is selected through Config.Driver.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound      = errors.New("battle not found")
	ErrDuplicate     = errors.New("battle already stored")
	ErrUnknownDriver = errors.New("unknown database driver")
)

// Database wraps the SQL connection and provides persistence operations.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the database selected by cfg and runs migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	var (
		dialect Dialect
		dsn     string
	)
	switch cfg.Driver {
	case "", string(DialectSQLite):
		dialect = NewDialect(DialectSQLite)
		dsn = cfg.SQLitePath
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	case string(DialectPostgres):
		dialect = NewDialect(DialectPostgres)
		dsn = cfg.Postgres.DSN()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, ok := dialect.(*SQLiteDialect); ok {
		// PRAGMAs are per connection; a single connection keeps them in force
		// and serializes writers.
		db.SetMaxOpenConns(1)
	} else {
		if cfg.Postgres.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		}
		if cfg.Postgres.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		}
		if cfg.Postgres.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init statement %q failed: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Dialect returns the SQL dialect in use.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// migrate creates the database schema if it doesn't exist.
func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS battles (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			rounds INTEGER NOT NULL,
			winner TEXT NOT NULL DEFAULT '',
			draw INTEGER NOT NULL DEFAULT 0,
			timed_out INTEGER NOT NULL DEFAULT 0,
			lineup_a TEXT NOT NULL,
			lineup_b TEXT NOT NULL,
			step_count INTEGER NOT NULL DEFAULT 0,
			steps TEXT NOT NULL
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS battle_heroes (
			id %s,
			battle_id TEXT NOT NULL REFERENCES battles(id) ON DELETE CASCADE,
			side TEXT NOT NULL,
			hero_id TEXT NOT NULL,
			won INTEGER NOT NULL DEFAULT 0,
			survived INTEGER NOT NULL DEFAULT 0
		)`, d.dialect.AutoIncrementKey()),

		`CREATE INDEX IF NOT EXISTS idx_battles_created_at ON battles(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_battle_heroes_battle_id ON battle_heroes(battle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_battle_heroes_hero_id ON battle_heroes(hero_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}

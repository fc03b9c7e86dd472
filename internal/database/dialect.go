package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect covers the SQL differences between the battle stores.
type Dialect interface {
	// DriverName is the database/sql driver registered for the dialect.
	DriverName() string

	// Placeholder returns the bind parameter for a 1-indexed position.
	Placeholder(position int) string

	// InitStatements run once after the pool is opened.
	InitStatements() []string

	// AutoIncrementKey is the column definition of a surrogate integer key.
	AutoIncrementKey() string

	// IsDuplicateKeyError reports a primary key or unique violation, such as
	// saving the same battle ID twice.
	IsDuplicateKeyError(err error) bool
}

// DialectType names a supported store.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect returns the dialect for t. Anything unrecognized is SQLite.
func NewDialect(t DialectType) Dialect {
	if t == DialectPostgres {
		return &PostgresDialect{}
	}
	return &SQLiteDialect{}
}

// SQLiteDialect targets modernc.org/sqlite.
type SQLiteDialect struct{}

func (*SQLiteDialect) DriverName() string { return "sqlite" }

func (*SQLiteDialect) Placeholder(int) string { return "?" }

// InitStatements turns on cascading deletes for battle_heroes, WAL so replay
// reads don't block battle writes, and a lock wait.
func (*SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (*SQLiteDialect) AutoIncrementKey() string { return "INTEGER PRIMARY KEY AUTOINCREMENT" }

func (*SQLiteDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	// Without extended result codes only the message names the constraint.
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// PostgresDialect targets github.com/lib/pq.
type PostgresDialect struct{}

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

func (*PostgresDialect) DriverName() string { return "postgres" }

func (*PostgresDialect) Placeholder(position int) string { return fmt.Sprintf("$%d", position) }

func (*PostgresDialect) InitStatements() []string { return nil }

func (*PostgresDialect) AutoIncrementKey() string { return "SERIAL PRIMARY KEY" }

func (*PostgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), uniqueViolation)
}

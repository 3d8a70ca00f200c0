// Package database owns sqlite connections for both halves of the app: the
// API's schema database, migrated on open, and the raw connection the client
// mirror builds its single key/value table on.
package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Every connection shares these pragmas: WAL so readers never block the
// writer, a busy timeout so concurrent writers queue instead of failing.
const pragmas = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// Connect opens a sqlite database with the app's standard pragmas and
// verifies it answers. No schema is applied; the mirror cache manages its
// own table.
func Connect(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return db, nil
}

// Open connects to the API database and brings its schema current with the
// embedded migrations.
func Open(path string) (*sql.DB, error) {
	db, err := Connect(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

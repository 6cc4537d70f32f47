// Package sqlite implements the repository interfaces on SQLite.
//
// The driver is modernc.org/sqlite — a pure Go translation of SQLite,
// so no CGo and no C toolchain; the database is a single file (or
// ":memory:" in tests). One *DB wraps the sql.DB pool and carries all
// repository methods.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	// Importing the driver package registers "sqlite" with
	// database/sql at init time.
	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements
// repository.UserRepository, repository.PortfolioRepository and
// repository.CredentialRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway test database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Pin the pool to one connection. PRAGMAs are per-connection, a
	// ":memory:" database exists per connection, and SQLite allows one
	// writer anyway.
	conn.SetMaxOpenConns(1)

	// Force an immediate connection so a bad path fails here, not on
	// the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — required for
	// a web server where requests hit the DB concurrently.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; portfolios.user_id
	// must reference a real user row.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure from the driver. The write paths use it to turn
// a constraint race into the same Conflict the pre-checks produce —
// two concurrent creates must never surface the loser as a 500.
func isUniqueViolation(err error) bool {
	var se *sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE ||
		se.Code() == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// safe to run on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			subject_id      TEXT NOT NULL UNIQUE,
			name            TEXT NOT NULL,
			email           TEXT NOT NULL UNIQUE,
			gender          TEXT NOT NULL,
			address         TEXT NOT NULL DEFAULT '',
			study_program   TEXT NOT NULL DEFAULT '',
			profile_picture TEXT NOT NULL DEFAULT '',
			role            TEXT NOT NULL DEFAULT 'mahasiswa',
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_subject_id ON users(subject_id);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS portfolios (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			level       TEXT NOT NULL,
			category    TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			docs_url    TEXT NOT NULL DEFAULT '',
			date        DATETIME NOT NULL,
			user_id     TEXT NOT NULL REFERENCES users(id),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_portfolios_created_at ON portfolios(created_at);
		CREATE INDEX IF NOT EXISTS idx_portfolios_category ON portfolios(category);
		CREATE INDEX IF NOT EXISTS idx_portfolios_user_id ON portfolios(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating portfolios table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS credentials (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating credentials table: %w", err)
	}

	return nil
}

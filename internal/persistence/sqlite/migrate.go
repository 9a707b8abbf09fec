package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migration is a single schema step applied exactly once, identified by a
// monotonically increasing version.
type migration struct {
	version     int
	description string
	statements  []string
}

var migrations = []migration{
	{
		version:     1,
		description: "users, sessions",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				is_admin INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT NOT NULL UNIQUE,
				fingerprint TEXT NOT NULL DEFAULT '',
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
		},
	},
	{
		version:     2,
		description: "business hours configurations",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS business_hours_configs (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				timezone TEXT NOT NULL,
				opens_at TEXT NOT NULL,
				closes_at TEXT NOT NULL,
				working_days TEXT NOT NULL,
				outside_hours_message TEXT NOT NULL DEFAULT '',
				weekend_message TEXT NOT NULL DEFAULT '',
				holiday_message TEXT NOT NULL DEFAULT '',
				warning_minutes INTEGER NOT NULL DEFAULT 0 CHECK (warning_minutes >= 0),
				cutoff_minutes INTEGER NOT NULL DEFAULT 0 CHECK (cutoff_minutes >= 0),
				is_active INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_business_hours_single_active
				ON business_hours_configs (is_active) WHERE is_active = 1`,
			`CREATE TABLE IF NOT EXISTS business_hours_holidays (
				id TEXT PRIMARY KEY,
				config_id TEXT NOT NULL REFERENCES business_hours_configs(id) ON DELETE CASCADE,
				date TEXT NOT NULL,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				recurring INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS business_hours_special (
				id TEXT PRIMARY KEY,
				config_id TEXT NOT NULL REFERENCES business_hours_configs(id) ON DELETE CASCADE,
				date TEXT NOT NULL,
				opens_at TEXT,
				closes_at TEXT,
				closed INTEGER NOT NULL DEFAULT 0,
				reason TEXT NOT NULL DEFAULT '',
				position INTEGER NOT NULL DEFAULT 0,
				UNIQUE (config_id, date)
			)`,
		},
	},
	{
		version:     3,
		description: "contact messages",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS contact_messages (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				subject TEXT NOT NULL DEFAULT '',
				body TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
		},
	},
}

// Migrate applies all pending migrations in version order. Each migration
// runs inside its own transaction together with its schema_migrations ledger
// row, so a failed step leaves the database at the previous version.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current sql.NullInt64
	if err := cp.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if current.Valid && int64(m.version) <= current.Int64 {
			continue
		}
		err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d: %w", m.version, err)
				}
			}
			_, err := tx.Exec(
				`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
				m.version, m.description, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// SchemaVersion reports the highest applied migration version, or zero for a
// fresh database.
func (cp *ConnectionPool) SchemaVersion(ctx context.Context) (int, error) {
	var current sql.NullInt64
	if err := cp.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&current); err != nil {
		return 0, mapError(err)
	}
	if !current.Valid {
		return 0, nil
	}
	return int(current.Int64), nil
}

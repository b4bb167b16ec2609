package sqlite

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations contains all database migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			CREATE TABLE IF NOT EXISTS streamers (
				id TEXT PRIMARY KEY,
				external_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				recorded_at DATETIME NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_streamers_external_id ON streamers(external_id, recorded_at);

			CREATE TABLE IF NOT EXISTS channels (
				id TEXT PRIMARY KEY,
				external_id INTEGER UNIQUE NOT NULL,
				name TEXT NOT NULL,
				company_name TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			CREATE TABLE IF NOT EXISTS streamings (
				id TEXT PRIMARY KEY,
				external_id INTEGER UNIQUE NOT NULL,
				provider_kind INTEGER NOT NULL,
				title TEXT NOT NULL,
				start_time DATETIME NOT NULL,
				end_time DATETIME NOT NULL,
				duration_seconds INTEGER NOT NULL,
				status INTEGER NOT NULL,
				streamer_id TEXT NOT NULL,
				channel_id TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (streamer_id) REFERENCES streamers(id) ON DELETE CASCADE,
				FOREIGN KEY (channel_id) REFERENCES channels(id) ON DELETE CASCADE
			);

			CREATE INDEX IF NOT EXISTS idx_streamings_streamer_id ON streamings(streamer_id);
			CREATE INDEX IF NOT EXISTS idx_streamings_channel_id ON streamings(channel_id);
		`,
	},
	{
		Version: 2,
		Name:    "streamings_start_time_index",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_streamings_start_time ON streamings(start_time);
		`,
	},
}

// Migrate runs all pending migrations
func Migrate(db *sql.DB) error {
	// Get current version
	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	// Run pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		// Execute migration
		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		// Record migration
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			migration.Version,
			migration.Name,
			sql.NullTime{Time: timeNow(), Valid: true},
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// getCurrentVersion returns the current schema version
func getCurrentVersion(db *sql.DB) (int, error) {
	// First, ensure the schema_migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var version int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		// If table doesn't exist, version is 0
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query version: %w", err)
	}
	return version, nil
}

// SchemaVersion returns the highest applied migration version
func SchemaVersion(db *sql.DB) (int, error) {
	return getCurrentVersion(db)
}

package database

import (
	"context"
	"fmt"
	"time"
)

// migration is one schema change, applied in order of version.
type migration struct {
	version string
	name    string
	sql     string
}

// migrations is the ordered schema history. Additive-only: released
// versions are never edited, new changes append a new entry.
var migrations = []migration{
	{
		version: "20260810_120000",
		name:    "create_command_history",
		sql: `
			CREATE TABLE IF NOT EXISTS command_history (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				device_id   TEXT    NOT NULL,
				hue         INTEGER NOT NULL,
				saturation  INTEGER NOT NULL,
				brightness  INTEGER NOT NULL,
				immediate   INTEGER NOT NULL,
				source      TEXT    NOT NULL,
				latency_ms  INTEGER NOT NULL,
				applied_at  TEXT    NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_command_history_applied_at
				ON command_history(applied_at);
			CREATE INDEX IF NOT EXISTS idx_command_history_device
				ON command_history(device_id);
		`,
	},
}

// Migrate applies all pending migrations in version order.
//
// Each migration runs in its own transaction: if one fails, earlier
// migrations stay committed, the failing one is rolled back and later
// ones are not attempted. Re-running Migrate after fixing the problem
// continues from where it stopped.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.version, m.name, err)
		}
	}

	return nil
}

// createMigrationsTable creates the schema_migrations table if needed.
func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

// appliedVersions returns the set of already applied migration versions.
func (db *DB) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// applyMigration runs one migration inside a transaction and records it.
func (db *DB) applyMigration(ctx context.Context, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		m.version,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return tx.Commit()
}

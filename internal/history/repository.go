package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/micaww/light-vst/internal/tuya"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// AppliedColor is one successfully delivered colour command.
type AppliedColor struct {
	ID         int64
	DeviceID   string
	Hue        uint16
	Saturation uint16
	Brightness uint16
	Immediate  bool
	Source     string
	LatencyMS  int64
	AppliedAt  time.Time
}

// Repository records and queries applied colour commands.
type Repository interface {
	RecordApplied(ctx context.Context, deviceID string, cmd tuya.ColorCommand, source string, latency time.Duration) error
	Recent(ctx context.Context, deviceID string, limit int) ([]AppliedColor, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SQLiteRepository implements Repository on the command_history table.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a repository backed by the given connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// RecordApplied inserts a history entry for a delivered command.
func (r *SQLiteRepository) RecordApplied(ctx context.Context, deviceID string, cmd tuya.ColorCommand, source string, latency time.Duration) error {
	if deviceID == "" {
		return fmt.Errorf("device id is required")
	}
	if source == "" {
		return fmt.Errorf("source is required")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO command_history
			(device_id, hue, saturation, brightness, immediate, source, latency_ms, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		deviceID,
		cmd.Hue,
		cmd.Saturation,
		cmd.Brightness,
		boolToInt(cmd.Immediate),
		source,
		latency.Milliseconds(),
		r.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting command history: %w", err)
	}

	return nil
}

// Recent returns the newest history entries for a device, ordered
// newest first. Limit defaults to 50 and is capped at 200.
func (r *SQLiteRepository) Recent(ctx context.Context, deviceID string, limit int) ([]AppliedColor, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, hue, saturation, brightness, immediate, source, latency_ms, applied_at
		 FROM command_history
		 WHERE device_id = ?
		 ORDER BY applied_at DESC, id DESC
		 LIMIT ?`,
		deviceID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying command history: %w", err)
	}
	defer rows.Close()

	entries := make([]AppliedColor, 0, limit)
	for rows.Next() {
		var entry AppliedColor
		var immediate int
		var appliedAt string

		if err := rows.Scan(
			&entry.ID,
			&entry.DeviceID,
			&entry.Hue,
			&entry.Saturation,
			&entry.Brightness,
			&immediate,
			&entry.Source,
			&entry.LatencyMS,
			&appliedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning command history: %w", err)
		}

		entry.Immediate = immediate != 0

		timestamp, err := time.Parse(time.RFC3339, appliedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing applied_at: %w", err)
		}
		entry.AppliedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating command history: %w", err)
	}

	return entries, nil
}

// Prune deletes entries older than the given duration and reports how
// many rows were removed.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := r.now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM command_history WHERE applied_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting command history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

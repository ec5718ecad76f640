package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/micaww/light-vst/internal/tuya"
)

// setupHistoryTestDB creates an in-memory SQLite database with the command_history table.
func setupHistoryTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE command_history (
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
		CREATE INDEX idx_command_history_applied_at ON command_history(applied_at);
		CREATE INDEX idx_command_history_device ON command_history(device_id);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// testRepo creates a repository with a stepped clock so rows get
// distinct, deterministic timestamps.
func testRepo(t *testing.T, db *sql.DB) *SQLiteRepository {
	t.Helper()

	repo := NewSQLiteRepository(db)
	current := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	return repo
}

// TestRecordApplied verifies history writes and retrieval.
func TestRecordApplied(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := testRepo(t, db)
	ctx := context.Background()

	cmd := tuya.ColorCommand{Hue: 120, Saturation: 800, Brightness: 1000, Immediate: true}
	if err := repo.RecordApplied(ctx, "bf0123456789", cmd, "midi", 12*time.Millisecond); err != nil {
		t.Fatalf("RecordApplied() error = %v", err)
	}

	entries, err := repo.Recent(ctx, "bf0123456789", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries length = %d, want 1", len(entries))
	}

	entry := entries[0]
	if entry.DeviceID != "bf0123456789" {
		t.Errorf("DeviceID = %q, want %q", entry.DeviceID, "bf0123456789")
	}
	if entry.Hue != 120 || entry.Saturation != 800 || entry.Brightness != 1000 {
		t.Errorf("color = %d/%d/%d, want 120/800/1000", entry.Hue, entry.Saturation, entry.Brightness)
	}
	if !entry.Immediate {
		t.Error("Immediate = false, want true")
	}
	if entry.Source != "midi" {
		t.Errorf("Source = %q, want %q", entry.Source, "midi")
	}
	if entry.LatencyMS != 12 {
		t.Errorf("LatencyMS = %d, want 12", entry.LatencyMS)
	}
	if entry.AppliedAt.IsZero() {
		t.Error("AppliedAt is zero")
	}
}

// TestRecordAppliedValidation verifies input validation.
func TestRecordAppliedValidation(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := testRepo(t, db)
	ctx := context.Background()

	cmd := tuya.ColorCommand{Hue: 120, Saturation: 1000, Brightness: 1000}

	if err := repo.RecordApplied(ctx, "", cmd, "midi", 0); err == nil {
		t.Error("expected error for empty device id")
	}
	if err := repo.RecordApplied(ctx, "bf0123456789", cmd, "", 0); err == nil {
		t.Error("expected error for empty source")
	}
}

// TestRecentOrderingAndLimit verifies newest-first ordering and limit handling.
func TestRecentOrderingAndLimit(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := testRepo(t, db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		cmd := tuya.ColorCommand{Hue: uint16(i * 10), Saturation: 1000, Brightness: 1000}
		if err := repo.RecordApplied(ctx, "bf0123456789", cmd, "param", 0); err != nil {
			t.Fatalf("RecordApplied(%d) error = %v", i, err)
		}
	}

	entries, err := repo.Recent(ctx, "bf0123456789", 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries length = %d, want 3", len(entries))
	}

	// Newest first: hues 40, 30, 20.
	wantHues := []uint16{40, 30, 20}
	for i, want := range wantHues {
		if entries[i].Hue != want {
			t.Errorf("entries[%d].Hue = %d, want %d", i, entries[i].Hue, want)
		}
	}
}

// TestRecentFiltersByDevice verifies entries from other devices are excluded.
func TestRecentFiltersByDevice(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := testRepo(t, db)
	ctx := context.Background()

	cmd := tuya.ColorCommand{Hue: 100, Saturation: 1000, Brightness: 1000}
	if err := repo.RecordApplied(ctx, "bf0123456789", cmd, "midi", 0); err != nil {
		t.Fatalf("RecordApplied() error = %v", err)
	}
	if err := repo.RecordApplied(ctx, "bfother", cmd, "midi", 0); err != nil {
		t.Fatalf("RecordApplied() error = %v", err)
	}

	entries, err := repo.Recent(ctx, "bf0123456789", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries length = %d, want 1", len(entries))
	}
	if entries[0].DeviceID != "bf0123456789" {
		t.Errorf("DeviceID = %q, want %q", entries[0].DeviceID, "bf0123456789")
	}
}

// TestRecentLimitClamping verifies default and maximum limits.
func TestRecentLimitClamping(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := testRepo(t, db)
	ctx := context.Background()

	if _, err := repo.Recent(ctx, "bf0123456789", 0); err != nil {
		t.Errorf("Recent() with zero limit error = %v", err)
	}
	if _, err := repo.Recent(ctx, "bf0123456789", 10000); err != nil {
		t.Errorf("Recent() with oversized limit error = %v", err)
	}
	if _, err := repo.Recent(ctx, "", 10); err == nil {
		t.Error("expected error for empty device id")
	}
}

// TestPrune verifies age-based deletion.
func TestPrune(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	insertRow := func(appliedAt time.Time) {
		t.Helper()
		_, err := db.Exec(
			`INSERT INTO command_history
				(device_id, hue, saturation, brightness, immediate, source, latency_ms, applied_at)
			 VALUES ('bf0123456789', 100, 1000, 1000, 1, 'midi', 5, ?)`,
			appliedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	now := time.Now()
	insertRow(now.Add(-48 * time.Hour))
	insertRow(now.Add(-36 * time.Hour))
	insertRow(now.Add(-1 * time.Hour))

	deleted, err := repo.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	entries, err := repo.Recent(ctx, "bf0123456789", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("remaining entries = %d, want 1", len(entries))
	}
}

// TestPruneValidation verifies invalid retention durations are rejected.
func TestPruneValidation(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteRepository(db)

	if _, err := repo.Prune(context.Background(), 0); err == nil {
		t.Error("expected error for zero retention")
	}
	if _, err := repo.Prune(context.Background(), -time.Hour); err == nil {
		t.Error("expected error for negative retention")
	}
}

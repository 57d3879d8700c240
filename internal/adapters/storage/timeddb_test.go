package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"civicbriefs/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) (*TimedDB, *perf.Collector) {
	t.Helper()
	db := openTestDB(t)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	collector := perf.NewCollector(100)
	return NewTimedDB(db, collector, 0), collector
}

// TestTimedDB_RecordsStorageKind verifies each call lands in the collector as storage.
func TestTimedDB_RecordsStorageKind(t *testing.T) {
	tdb, collector := openTimedTestDB(t)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q, want hello", val)
	}
	if got := collector.TotalRecorded(perf.KindStorage); got != 2 {
		t.Errorf("TotalRecorded(storage) = %d, want 2", got)
	}
	if got := collector.TotalRecorded(perf.KindRequest); got != 0 {
		t.Errorf("TotalRecorded(request) = %d, want 0", got)
	}
}

// TestTimedDB_ErrorPassthrough verifies SQL errors are returned unchanged and still timed.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	tdb, collector := openTimedTestDB(t)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO nonexistent_table VALUES (?)", 1); err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}
	var val string
	err := tdb.QueryRowContext(context.Background(), "SELECT val FROM test WHERE id = ?", "missing").Scan(&val)
	if err != sql.ErrNoRows {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
	if got := collector.TotalRecorded(perf.KindStorage); got != 2 {
		t.Errorf("TotalRecorded = %d, want 2", got)
	}
}

// TestTimedDB_CancelledContext verifies a cancelled context errors and is still timed.
func TestTimedDB_CancelledContext(t *testing.T) {
	tdb, collector := openTimedTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "x"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if got := collector.TotalRecorded(perf.KindStorage); got != 1 {
		t.Errorf("TotalRecorded = %d, want 1", got)
	}
}

// TestTimedDB_LabelsStatements verifies entries are named by verb and table.
func TestTimedDB_LabelsStatements(t *testing.T) {
	tdb, collector := openTimedTestDB(t)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?) ON CONFLICT(id) DO NOTHING", "1", "a"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	got := map[string]bool{}
	for _, q := range snap.SlowestQueries {
		got[q.Path] = true
	}
	for _, want := range []string{"UPSERT test", "SELECT test"} {
		if !got[want] {
			t.Errorf("labels = %v, missing %q", got, want)
		}
	}
}

func TestStatementLabel(t *testing.T) {
	tests := []struct {
		query, want string
	}{
		{"SELECT value FROM profile_kv WHERE profile_id = ?", "SELECT profile_kv"},
		{"INSERT INTO profile (id) VALUES (?) ON CONFLICT(id) DO UPDATE SET last_seen_at = 1", "UPSERT profile"},
		{"insert into profile_kv(profile_id) values (?)", "INSERT profile_kv"},
		{"DELETE FROM profile_kv WHERE key IN (?,?)", "DELETE profile_kv"},
		{"UPDATE profile SET last_seen_at = ?", "UPDATE profile"},
		{"CREATE TABLE IF NOT EXISTS schema_version (v INTEGER)", "CREATE schema_version"},
		{"INSERT OR IGNORE INTO schema_version (v) VALUES (1)", "INSERT schema_version"},
		{"PRAGMA foreign_keys = ON", "PRAGMA"},
		{"   ", "EMPTY"},
	}
	for _, tt := range tests {
		if got := statementLabel(tt.query); got != tt.want {
			t.Errorf("statementLabel(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

// TestTimedDB_NilRecorder verifies TimedDB works without a collector.
func TestTimedDB_NilRecorder(t *testing.T) {
	db := openTestDB(t)
	tdb := NewTimedDB(db, nil, 0)
	if _, err := tdb.ExecContext(context.Background(), "CREATE TABLE x (id TEXT)"); err != nil {
		t.Fatalf("ExecContext with nil recorder: %v", err)
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"civicbriefs/internal/adapters/http/perf"
)

// SQLDB is what the profile store needs from a database.
// Both *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the default threshold for slow query warnings.
// Profile lookups are single-row reads, so anything past this is worth a look.
const DefaultSlowQueryMs = 50

// TimedDB times every profile store statement. Each one is recorded on the
// perf page under a short label such as "SELECT profile_kv".
type TimedDB struct {
	db        *sql.DB
	recorder  perf.Recorder
	threshold float64
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is open; recorder may be nil
// POST: slowMs <= 0 selects DefaultSlowQueryMs
func NewTimedDB(db *sql.DB, recorder perf.Recorder, slowMs int) *TimedDB {
	if slowMs <= 0 {
		slowMs = DefaultSlowQueryMs
	}
	return &TimedDB{db: db, recorder: recorder, threshold: float64(slowMs)}
}

// RawDB returns the underlying *sql.DB.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// statementLabel names a statement by its verb and table: "SELECT profile_kv",
// "UPSERT profile". Values never appear in the label.
func statementLabel(query string) string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return "EMPTY"
	}
	verb := strings.ToUpper(words[0])
	if verb == "INSERT" && strings.Contains(strings.ToUpper(query), "ON CONFLICT") {
		verb = "UPSERT"
	}
	for i, w := range words[:len(words)-1] {
		switch strings.ToUpper(w) {
		case "FROM", "INTO", "UPDATE", "TABLE":
			rest := words[i+1:]
			for len(rest) > 1 && isClauseWord(rest[0]) {
				rest = rest[1:]
			}
			table := strings.TrimFunc(rest[0], func(r rune) bool {
				return r == '(' || r == '"' || r == '`' || r == ';'
			})
			if j := strings.IndexByte(table, '('); j > 0 {
				table = table[:j]
			}
			return verb + " " + table
		}
	}
	return verb
}

func isClauseWord(w string) bool {
	switch strings.ToUpper(w) {
	case "IF", "NOT", "EXISTS", "OR", "REPLACE", "IGNORE":
		return true
	}
	return false
}

// observe logs and records one statement.
func (t *TimedDB) observe(label string, start time.Time, err error) {
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	attrs := []any{"statement", label, "duration_ms", elapsed}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		attrs = append(attrs, "error", err)
	}
	if elapsed >= t.threshold {
		slog.Warn("slow_query", attrs...)
	} else {
		slog.Debug("query", attrs...)
	}

	if t.recorder != nil {
		t.recorder.Record(perf.Entry{
			Kind:       perf.KindStorage,
			Path:       label,
			DurationMs: elapsed,
			Timestamp:  start,
		})
	}
}

// ExecContext runs a write and times it.
// POST: timing recorded even when the statement fails
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(statementLabel(query), start, err)
	return result, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(statementLabel(query), start, err)
	return rows, err
}

// QueryRowContext times the query; a scan error surfaces later through the row.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(statementLabel(query), start, row.Err())
	return row
}

func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("BEGIN", start, err)
	return tx, err
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

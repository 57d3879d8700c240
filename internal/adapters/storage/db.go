package storage

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are applied in order; never edit a released entry, append a new one.
var migrations = []migration{
	{
		version: 1,
		name:    "profile",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS profile (
				id TEXT PRIMARY KEY,
				created_at TEXT NOT NULL,
				last_seen_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS profile_kv (
				profile_id TEXT NOT NULL,
				key TEXT NOT NULL,
				value TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (profile_id, key),
				FOREIGN KEY (profile_id) REFERENCES profile(id) ON DELETE CASCADE
			)`,
		},
	},
	{
		version: 2,
		name:    "profile_last_seen_index",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_profile_last_seen ON profile(last_seen_at)`,
		},
	},
}

// Open opens the SQLite database at path and applies pragmas and migrations.
// PRE: path is a file path or ":memory:"
// POST: Returns a migrated connection; the caller owns Close
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := MigrateDB(db, path); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// MigrateDB enables pragmas and applies every pending migration.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion(); WAL enabled for file databases
func MigrateDB(db *sql.DB, path string) error {
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
			return fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

func apply(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the applied schema version, or 0 for a fresh database.
// PRE: schema_version table exists
func SchemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// LatestSchemaVersion is the version a fully migrated database reports.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

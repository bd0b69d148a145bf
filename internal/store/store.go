package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// currentVersion is the schema generation stamped in PRAGMA user_version.
// 0 is the earliest layout, without project_emails or the default_email,
// rate and currency columns; 2 has all of them. Databases below it get the
// column migrations on open.
const currentVersion = 2

// DefaultDBFile is the database filename in the home directory.
const DefaultDBFile = "time_tracker.db"

type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for consistency warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for timer start/stop.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string, opts ...Option) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(opts ...Option) (*Store, error) {
	return New(":memory:", opts...)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Base tables match the oldest layout still found in the wild; newer
// project columns are added by columnMigrations.
var baseSchema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		description TEXT,
		created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS project_emails (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id  INTEGER NOT NULL,
		email       TEXT NOT NULL,
		is_primary  BOOLEAN DEFAULT 0,
		created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects (id)
	)`,
	`CREATE TABLE IF NOT EXISTS time_entries (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id       INTEGER NOT NULL,
		description      TEXT,
		start_time       TIMESTAMP NOT NULL,
		end_time         TIMESTAMP,
		duration_minutes INTEGER,
		created_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects (id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_project ON time_entries(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_start   ON time_entries(start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_emails_project  ON project_emails(project_id)`,
}

var columnMigrations = []string{
	`ALTER TABLE projects ADD COLUMN default_email TEXT`,
	`ALTER TABLE projects ADD COLUMN rate REAL`,
	`ALTER TABLE projects ADD COLUMN currency TEXT DEFAULT 'EUR'`,
}

// migrate runs on every open. Missing tables are always created; the column
// additions only run below currentVersion, and "duplicate column name" is
// treated as already applied since unversioned databases may have some.
func (s *Store) migrate() error {
	for i, stmt := range baseSchema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}

	for i, stmt := range columnMigrations {
		if _, err := s.db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("column migration %d: %w", i, err)
		}
	}
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// DefaultDBPath returns ~/time_tracker.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDBFile), nil
}

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createLegacyDB writes a database in the earliest schema layout:
// projects has no default_email, rate or currency columns.
func createLegacyDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "time_tracker.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE time_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			description TEXT,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			duration_minutes INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (project_id) REFERENCES projects (id)
		)`,
		`INSERT INTO projects (name, description) VALUES ('Legacy', 'old row')`,
		`INSERT INTO time_entries (project_id, description, start_time, end_time, duration_minutes)
		 VALUES (1, 'old work', '2023-05-01 09:00:00', '2023-05-01 10:30:00', 90)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func projectColumnNames(t *testing.T, s *Store) []string {
	t.Helper()
	rows, err := s.db.Query(`PRAGMA table_info(projects)`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestMigrateLegacyDatabase(t *testing.T) {
	path := createLegacyDB(t)

	s, err := New(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentVersion, version)

	cols := projectColumnNames(t, s)
	assert.Contains(t, cols, "default_email")
	assert.Contains(t, cols, "rate")
	assert.Contains(t, cols, "currency")

	ctx := context.Background()
	projects, err := s.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Legacy", projects[0].Name)
	assert.Equal(t, "old row", projects[0].Description)
	assert.Nil(t, projects[0].Rate)
	assert.Equal(t, "EUR", projects[0].Currency)

	rows, err := s.TimeEntries(ctx, EntryFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "old work", rows[0].Description)
	assert.Equal(t, int64(90), *rows[0].DurationMinutes)
	assert.Equal(t, 9, rows[0].StartTime.Hour(), "stored wall clock is preserved")

	// project_emails did not exist in this layout and is created on open.
	emails, err := s.ProjectEmails(ctx, projects[0].ID)
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestMigrateLegacyDatabaseReopen(t *testing.T) {
	path := createLegacyDB(t)

	for i := 0; i < 3; i++ {
		s, err := New(path)
		require.NoError(t, err, "open %d", i)

		cols := projectColumnNames(t, s)
		assert.Len(t, cols, 7, "open %d", i)

		projects, err := s.Projects(context.Background())
		require.NoError(t, err)
		assert.Len(t, projects, 1)
		require.NoError(t, s.Close())
	}
}

// execLegacy writes rows the way the old application did, before the store
// opens the file.
func execLegacy(t *testing.T, path string, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func TestLegacyAndNewRowsSortTogether(t *testing.T) {
	path := createLegacyDB(t)
	execLegacy(t, path,
		`INSERT INTO projects (name) VALUES ('Other')`,
		`INSERT INTO time_entries (project_id, description, start_time, end_time, duration_minutes)
		 VALUES (1, 'legacy late', '2024-03-04 11:00:00.000001', '2024-03-04 12:00:00', 59)`,
	)

	clock := newFakeClock() // 2024-03-04 09:00
	s, err := New(path, WithClock(clock.Now))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, ok, err := s.StartTimer(ctx, 2, "new early")
	require.NoError(t, err)
	require.True(t, ok)
	clock.Advance(30 * time.Minute)
	_, ok, err = s.StopTimer(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)
	rows, err := s.TimeEntries(ctx, EntryFilter{From: &from, To: &from})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "legacy late", rows[0].Description, "11:00 sorts before 09:00")
	assert.Equal(t, "new early", rows[1].Description)

	pid, ok, err := s.LatestEntryProject(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), pid)
}

func TestLegacyRunningEntryIsNewest(t *testing.T) {
	path := createLegacyDB(t)
	execLegacy(t, path,
		`INSERT INTO time_entries (project_id, description, start_time)
		 VALUES (1, 'legacy running', '2024-03-04 11:00:00.000001')`,
	)

	s, err := New(path, WithClock(newFakeClock().Now))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	// A second running entry for the same project, started earlier that day.
	_, err = s.db.Exec(`INSERT INTO time_entries (project_id, description, start_time) VALUES (1, 'new running', ?)`,
		formatTime(time.Date(2024, 3, 4, 10, 0, 0, 0, time.Local)))
	require.NoError(t, err)

	_, ok, err := s.StopTimer(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	running, err := s.RunningEntries(ctx)
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, "new running", running[0].Description, "the later legacy entry is the one stopped")
}

func TestStoredTimeLayout(t *testing.T) {
	assert.Equal(t, "2024-03-04 09:00:00", formatTime(time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local)))
	assert.Equal(t, "2024-03-04 09:00:00.000001", formatTime(time.Date(2024, 3, 4, 9, 0, 0, 1000, time.Local)))
}

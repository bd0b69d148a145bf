package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const reportRowQuery = `
	SELECT te.id, te.project_id, p.name, te.description,
	       CAST(te.start_time AS TEXT), CAST(te.end_time AS TEXT), te.duration_minutes,
	       CAST(te.created_at AS TEXT),
	       p.rate, p.currency
	FROM time_entries te
	JOIN projects p ON te.project_id = p.id`

// StartTimer opens a running entry for projectID. It returns ok=false when
// the project does not exist and *TimerRunningError when the project
// already has a running entry.
func (s *Store) StartTimer(ctx context.Context, projectID int64, description string) (id int64, ok bool, err error) {
	err = s.withinTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, projectID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("check project %d: %w", projectID, err)
		}

		running, err := runningIDs(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if len(running) > 0 {
			return &TimerRunningError{ProjectID: projectID, EntryID: running[0].id}
		}

		now := formatTime(s.now())
		res, err := tx.ExecContext(ctx,
			`INSERT INTO time_entries (project_id, description, start_time, created_at) VALUES (?, ?, ?, ?)`,
			projectID, description, now, now,
		)
		if err != nil {
			return fmt.Errorf("start entry: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("start entry: %w", err)
		}
		ok = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return id, ok, nil
}

// StopTimer stops the running entry of projectID and returns its duration
// in minutes. ok is false when nothing is running for the project.
func (s *Store) StopTimer(ctx context.Context, projectID int64) (minutes int64, ok bool, err error) {
	err = s.withinTx(ctx, func(tx *sql.Tx) error {
		running, err := runningIDs(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if len(running) == 0 {
			return nil
		}
		if len(running) > 1 {
			ids := make([]int64, len(running))
			for i, r := range running {
				ids[i] = r.id
			}
			s.logger.Warn("multiple running entries for project, stopping the most recent",
				zap.Int64("project_id", projectID),
				zap.Int64s("entry_ids", ids),
			)
		}
		minutes, err = s.stop(ctx, tx, running[0])
		ok = err == nil
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return minutes, ok, nil
}

// StopEntry stops the given entry if it is still running.
func (s *Store) StopEntry(ctx context.Context, entryID int64) (minutes int64, ok bool, err error) {
	err = s.withinTx(ctx, func(tx *sql.Tx) error {
		var r runningRef
		var startStr string
		err := tx.QueryRowContext(ctx,
			`SELECT id, CAST(start_time AS TEXT) FROM time_entries WHERE id = ? AND end_time IS NULL`, entryID,
		).Scan(&r.id, &startStr)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get running entry %d: %w", entryID, err)
		}
		if r.start, err = parseTime(startStr); err != nil {
			return fmt.Errorf("entry %d start_time: %w", entryID, err)
		}
		minutes, err = s.stop(ctx, tx, r)
		ok = err == nil
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return minutes, ok, nil
}

type runningRef struct {
	id    int64
	start time.Time
}

// runningIDs returns the running entries of a project, most recently started first.
func runningIDs(ctx context.Context, q dbtx, projectID int64) ([]runningRef, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, CAST(start_time AS TEXT) FROM time_entries
		 WHERE project_id = ? AND end_time IS NULL
		 ORDER BY start_time DESC, id DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("find running entry: %w", err)
	}
	defer rows.Close()

	var refs []runningRef
	for rows.Next() {
		var r runningRef
		var startStr string
		if err := rows.Scan(&r.id, &startStr); err != nil {
			return nil, err
		}
		if r.start, err = parseTime(startStr); err != nil {
			return nil, fmt.Errorf("entry %d start_time: %w", r.id, err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

func (s *Store) stop(ctx context.Context, tx *sql.Tx, r runningRef) (int64, error) {
	end := stamp(s.now())
	minutes := DurationMinutes(stamp(r.start), end)
	_, err := tx.ExecContext(ctx,
		`UPDATE time_entries SET end_time = ?, duration_minutes = ? WHERE id = ?`,
		end.Format(timeLayout), minutes, r.id,
	)
	if err != nil {
		return 0, fmt.Errorf("stop entry %d: %w", r.id, err)
	}
	return minutes, nil
}

// Entry returns one joined row, or nil if the entry does not exist.
func (s *Store) Entry(ctx context.Context, id int64) (*ReportRow, error) {
	row := s.db.QueryRowContext(ctx, reportRowQuery+` WHERE te.id = ?`, id)
	r, err := scanReportRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	return r, nil
}

// TimeEntries returns joined rows matching f, newest start_time first.
func (s *Store) TimeEntries(ctx context.Context, f EntryFilter) ([]ReportRow, error) {
	query := reportRowQuery + ` WHERE 1=1`
	var args []any

	if f.ProjectID != nil {
		query += ` AND te.project_id = ?`
		args = append(args, *f.ProjectID)
	}
	if f.From != nil {
		query += ` AND DATE(te.start_time) >= ?`
		args = append(args, f.From.Format(dateLayout))
	}
	if f.To != nil {
		query += ` AND DATE(te.start_time) <= ?`
		args = append(args, f.To.Format(dateLayout))
	}
	query += ` ORDER BY te.start_time DESC, te.id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	return s.queryReportRows(ctx, query, args...)
}

// RunningEntries returns every running entry across projects, newest first.
func (s *Store) RunningEntries(ctx context.Context) ([]ReportRow, error) {
	return s.queryReportRows(ctx, reportRowQuery+` WHERE te.end_time IS NULL ORDER BY te.start_time DESC, te.id DESC`)
}

func (s *Store) queryReportRows(ctx context.Context, query string, args ...any) ([]ReportRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		r, err := scanReportRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpdateEntry applies a partial update and re-derives duration_minutes
// whenever either timestamp changes. It returns false when the entry does
// not exist or the update carries no fields.
func (s *Store) UpdateEntry(ctx context.Context, id int64, u EntryUpdate) (bool, error) {
	if u.empty() {
		return false, nil
	}

	var updated bool
	err := s.withinTx(ctx, func(tx *sql.Tx) error {
		var projectID int64
		var startStr string
		var endStr sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT project_id, CAST(start_time AS TEXT), CAST(end_time AS TEXT) FROM time_entries WHERE id = ?`, id,
		).Scan(&projectID, &startStr, &endStr)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get entry %d: %w", id, err)
		}

		start, err := parseTime(startStr)
		if err != nil {
			return fmt.Errorf("entry %d start_time: %w", id, err)
		}
		end, err := parseNullableTime(endStr)
		if err != nil {
			return fmt.Errorf("entry %d end_time: %w", id, err)
		}

		var sets []string
		var args []any
		if u.Description != nil {
			sets = append(sets, "description = ?")
			args = append(args, *u.Description)
		}
		if u.ProjectID != nil && *u.ProjectID != projectID {
			stillRunning := end == nil && u.EndTime == nil
			if stillRunning {
				running, err := runningIDs(ctx, tx, *u.ProjectID)
				if err != nil {
					return err
				}
				if len(running) > 0 {
					return &TimerRunningError{ProjectID: *u.ProjectID, EntryID: running[0].id}
				}
			}
			sets = append(sets, "project_id = ?")
			args = append(args, *u.ProjectID)
		}
		if u.StartTime != nil {
			start = stamp(*u.StartTime)
			sets = append(sets, "start_time = ?")
			args = append(args, start.Format(timeLayout))
		}
		if u.EndTime != nil {
			e := stamp(*u.EndTime)
			end = &e
			sets = append(sets, "end_time = ?")
			args = append(args, e.Format(timeLayout))
		}
		if (u.StartTime != nil || u.EndTime != nil) && end != nil {
			sets = append(sets, "duration_minutes = ?")
			args = append(args, DurationMinutes(start, *end))
		}
		if len(sets) == 0 {
			// Only a no-op project reassignment was requested.
			updated = true
			return nil
		}
		args = append(args, id)

		res, err := tx.ExecContext(ctx, `UPDATE time_entries SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("update entry %d: %w", id, err)
		}
		updated, err = affected(res)
		return err
	})
	return updated, err
}

// DeleteEntry removes an entry whether running or not.
func (s *Store) DeleteEntry(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry %d: %w", id, err)
	}
	return affected(res)
}

// LatestEntryProject returns the project of the most recently started entry.
func (s *Store) LatestEntryProject(ctx context.Context) (int64, bool, error) {
	var projectID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT project_id FROM time_entries ORDER BY start_time DESC, id DESC LIMIT 1`,
	).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("latest entry project: %w", err)
	}
	return projectID, true, nil
}

func scanReportRow(sc scanner) (*ReportRow, error) {
	var r ReportRow
	var description, endTime, createdAt, currency sql.NullString
	var startTime string
	var duration sql.NullInt64
	var rate sql.NullFloat64

	err := sc.Scan(&r.ID, &r.ProjectID, &r.ProjectName, &description,
		&startTime, &endTime, &duration, &createdAt, &rate, &currency)
	if err != nil {
		return nil, err
	}
	r.Description = description.String
	if r.StartTime, err = parseTime(startTime); err != nil {
		return nil, fmt.Errorf("entry %d start_time: %w", r.ID, err)
	}
	if r.EndTime, err = parseNullableTime(endTime); err != nil {
		return nil, fmt.Errorf("entry %d end_time: %w", r.ID, err)
	}
	r.DurationMinutes = nullableInt(duration)
	if createdAt.Valid {
		r.CreatedAt, _ = parseTime(createdAt.String)
	}
	r.Rate = nullableFloat(rate)
	r.Currency = currency.String
	if !currency.Valid || currency.String == "" {
		r.Currency = DefaultCurrency
	}
	return &r, nil
}

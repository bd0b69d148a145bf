package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Timestamp columns are cast to TEXT so the driver hands back the stored
// local wall-clock text instead of reinterpreting it as UTC.
const projectColumns = `id, name, description, default_email, rate, currency, CAST(created_at AS TEXT)`

// AddProject inserts a project and returns its id. A name collision is
// reported as *DuplicateNameError from the UNIQUE constraint.
func (s *Store) AddProject(ctx context.Context, p NewProject) (int64, error) {
	currency := p.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, description, default_email, rate, currency, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.DefaultEmail, p.Rate, currency, formatTime(s.now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &DuplicateNameError{Name: p.Name}
		}
		return 0, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	return id, nil
}

// Project returns the project with the given id, or nil if there is none.
func (s *Store) Project(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return p, nil
}

// Projects lists all projects ordered by name.
func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject applies a partial update. It returns false when the project
// does not exist or the update carries no fields.
func (s *Store) UpdateProject(ctx context.Context, id int64, u ProjectUpdate) (bool, error) {
	if u.empty() {
		return false, nil
	}

	var sets []string
	var args []any
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.DefaultEmail != nil {
		sets = append(sets, "default_email = ?")
		args = append(args, *u.DefaultEmail)
	}
	if u.Rate != nil {
		sets = append(sets, "rate = ?")
		args = append(args, *u.Rate)
	}
	if u.Currency != nil {
		sets = append(sets, "currency = ?")
		args = append(args, *u.Currency)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isUniqueViolation(err) && u.Name != nil {
			return false, &DuplicateNameError{Name: *u.Name}
		}
		return false, fmt.Errorf("update project %d: %w", id, err)
	}
	return affected(res)
}

// DeleteProject removes only the project row. Entries and emails must be
// removed by the caller first; see DeleteProjectCascade.
func (s *Store) DeleteProject(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete project %d: %w", id, err)
	}
	return affected(res)
}

// DeleteProjectCascade removes a project with its time entries and emails
// in one transaction.
func (s *Store) DeleteProjectCascade(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withinTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM time_entries WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("delete entries of project %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_emails WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("delete emails of project %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete project %d: %w", id, err)
		}
		deleted, err = affected(res)
		return err
	})
	return deleted, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (*Project, error) {
	var p Project
	var description, email, currency, createdAt sql.NullString
	var rate sql.NullFloat64
	if err := sc.Scan(&p.ID, &p.Name, &description, &email, &rate, &currency, &createdAt); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.DefaultEmail = email.String
	p.Rate = nullableFloat(rate)
	p.Currency = currency.String
	if !currency.Valid || currency.String == "" {
		p.Currency = DefaultCurrency
	}
	if createdAt.Valid {
		p.CreatedAt, _ = parseTime(createdAt.String)
	}
	return &p, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var errNotOwned = errors.New("email does not belong to project")

// AddProjectEmail attaches an email to a project. When primary is true any
// existing primary flag for the project is cleared in the same transaction.
func (s *Store) AddProjectEmail(ctx context.Context, projectID int64, email string, primary bool) (int64, error) {
	var id int64
	err := s.withinTx(ctx, func(tx *sql.Tx) error {
		if primary {
			if _, err := tx.ExecContext(ctx, `UPDATE project_emails SET is_primary = 0 WHERE project_id = ?`, projectID); err != nil {
				return fmt.Errorf("clear primary email: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO project_emails (project_id, email, is_primary, created_at) VALUES (?, ?, ?, ?)`,
			projectID, email, primary, formatTime(s.now()),
		)
		if err != nil {
			return fmt.Errorf("insert project email: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ProjectEmails lists the emails of a project, primary first, then alphabetically.
func (s *Store) ProjectEmails(ctx context.Context, projectID int64) ([]ProjectEmail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, email, is_primary, CAST(created_at AS TEXT) FROM project_emails
		 WHERE project_id = ? ORDER BY is_primary DESC, email`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project emails: %w", err)
	}
	defer rows.Close()

	var emails []ProjectEmail
	for rows.Next() {
		var e ProjectEmail
		var primary sql.NullBool
		var createdAt sql.NullString
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Email, &primary, &createdAt); err != nil {
			return nil, fmt.Errorf("scan project email: %w", err)
		}
		e.IsPrimary = primary.Bool
		if createdAt.Valid {
			e.CreatedAt, _ = parseTime(createdAt.String)
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

// SetPrimaryEmail makes emailID the only primary email of projectID. It
// returns false, leaving flags untouched, when the email belongs elsewhere.
func (s *Store) SetPrimaryEmail(ctx context.Context, projectID, emailID int64) (bool, error) {
	err := s.withinTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE project_emails SET is_primary = 0 WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("clear primary email: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE project_emails SET is_primary = 1 WHERE id = ? AND project_id = ?`, emailID, projectID)
		if err != nil {
			return fmt.Errorf("set primary email: %w", err)
		}
		ok, err := affected(res)
		if err != nil {
			return err
		}
		if !ok {
			return errNotOwned
		}
		return nil
	})
	if errors.Is(err, errNotOwned) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteProjectEmail removes an email by id.
func (s *Store) DeleteProjectEmail(ctx context.Context, emailID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM project_emails WHERE id = ?`, emailID)
	if err != nil {
		return false, fmt.Errorf("delete project email %d: %w", emailID, err)
	}
	return affected(res)
}

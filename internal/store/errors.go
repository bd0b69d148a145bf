package store

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDuplicateName is matched by DuplicateNameError via errors.Is.
	ErrDuplicateName = errors.New("project name already exists")

	// ErrTimerAlreadyRunning is matched by TimerRunningError via errors.Is.
	ErrTimerAlreadyRunning = errors.New("timer is already running for this project")
)

// DuplicateNameError is returned when a project name collides with an existing one.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("project '%s' already exists", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// TimerRunningError is returned when starting a timer on a project that
// already has a running entry.
type TimerRunningError struct {
	ProjectID int64
	EntryID   int64
}

func (e *TimerRunningError) Error() string {
	return fmt.Sprintf("timer is already running for project %d (entry %d)", e.ProjectID, e.EntryID)
}

func (e *TimerRunningError) Is(target error) bool {
	return target == ErrTimerAlreadyRunning
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

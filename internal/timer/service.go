package timer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/timebill/internal/logger"
	"github.com/sadopc/timebill/internal/store"
	"go.uber.org/zap"
)

var (
	ErrEndBeforeStart  = errors.New("end time is before start time")
	ErrEmptyName       = errors.New("project name is required")
	ErrInvalidRate     = errors.New("hourly rate must not be negative")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter code")
	ErrInvalidEmail    = errors.New("invalid email address")
)

// RunningTimer is a running entry together with its elapsed time.
type RunningTimer struct {
	Entry   store.ReportRow
	Elapsed time.Duration
}

// Service orchestrates timer and project mutations on top of the store.
// The one-running-entry-per-project rule is enforced by the store; Service
// validates user input before it gets there.
type Service struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used to compute elapsed time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(st *store.Store, l *zap.Logger, opts ...Option) *Service {
	s := &Service{store: st, logger: logger.OrNop(l), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a timer on projectID. ok is false when the project does not
// exist. A project that already has a running entry yields
// store.ErrTimerAlreadyRunning.
func (s *Service) Start(ctx context.Context, projectID int64, description string) (int64, bool, error) {
	id, ok, err := s.store.StartTimer(ctx, projectID, strings.TrimSpace(description))
	if err != nil || !ok {
		return 0, ok, err
	}
	s.logger.Debug("timer started", zap.Int64("project_id", projectID), zap.Int64("entry_id", id))
	return id, true, nil
}

// Stop stops the running timer of projectID and returns the recorded minutes.
func (s *Service) Stop(ctx context.Context, projectID int64) (int64, bool, error) {
	minutes, ok, err := s.store.StopTimer(ctx, projectID)
	if err != nil || !ok {
		return 0, ok, err
	}
	s.logger.Debug("timer stopped", zap.Int64("project_id", projectID), zap.Int64("minutes", minutes))
	return minutes, true, nil
}

// StopEntry stops a running entry addressed by its own id.
func (s *Service) StopEntry(ctx context.Context, entryID int64) (int64, bool, error) {
	return s.store.StopEntry(ctx, entryID)
}

// Running lists all running timers with the time elapsed so far.
func (s *Service) Running(ctx context.Context) ([]RunningTimer, error) {
	rows, err := s.store.RunningEntries(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	timers := make([]RunningTimer, 0, len(rows))
	for _, r := range rows {
		elapsed := now.Sub(r.StartTime)
		if elapsed < 0 {
			elapsed = 0
		}
		timers = append(timers, RunningTimer{Entry: r, Elapsed: elapsed})
	}
	return timers, nil
}

// Edit applies a partial entry update. The resulting interval is checked
// against the stored values so that moving only one end cannot invert it.
func (s *Service) Edit(ctx context.Context, id int64, u store.EntryUpdate) (bool, error) {
	if u.Description != nil {
		d := strings.TrimSpace(*u.Description)
		u.Description = &d
	}
	if u.StartTime != nil || u.EndTime != nil {
		current, err := s.store.Entry(ctx, id)
		if err != nil {
			return false, err
		}
		if current == nil {
			return false, nil
		}
		start, end := current.StartTime, current.EndTime
		if u.StartTime != nil {
			start = *u.StartTime
		}
		if u.EndTime != nil {
			end = u.EndTime
		}
		if end != nil && end.Before(start) {
			return false, ErrEndBeforeStart
		}
	}
	return s.store.UpdateEntry(ctx, id, u)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.DeleteEntry(ctx, id)
}

// CreateProject validates and inserts a project. Name collisions surface as
// *store.DuplicateNameError.
func (s *Service) CreateProject(ctx context.Context, p store.NewProject) (int64, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return 0, ErrEmptyName
	}
	if p.Rate != nil && *p.Rate < 0 {
		return 0, ErrInvalidRate
	}
	currency, err := normalizeCurrency(p.Currency)
	if err != nil {
		return 0, err
	}
	p.Currency = currency
	p.DefaultEmail = strings.TrimSpace(p.DefaultEmail)
	if p.DefaultEmail != "" && !ValidEmail(p.DefaultEmail) {
		return 0, ErrInvalidEmail
	}
	p.Description = strings.TrimSpace(p.Description)

	id, err := s.store.AddProject(ctx, p)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("project created", zap.Int64("project_id", id), zap.String("name", p.Name))
	return id, nil
}

func (s *Service) UpdateProject(ctx context.Context, id int64, u store.ProjectUpdate) (bool, error) {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return false, ErrEmptyName
		}
		u.Name = &name
	}
	if u.Rate != nil && *u.Rate < 0 {
		return false, ErrInvalidRate
	}
	if u.Currency != nil {
		c, err := normalizeCurrency(*u.Currency)
		if err != nil {
			return false, err
		}
		u.Currency = &c
	}
	if u.DefaultEmail != nil {
		e := strings.TrimSpace(*u.DefaultEmail)
		if e != "" && !ValidEmail(e) {
			return false, ErrInvalidEmail
		}
		u.DefaultEmail = &e
	}
	return s.store.UpdateProject(ctx, id, u)
}

// RemoveProject deletes a project together with its entries and emails.
func (s *Service) RemoveProject(ctx context.Context, id int64) (bool, error) {
	ok, err := s.store.DeleteProjectCascade(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.Debug("project removed", zap.Int64("project_id", id))
	}
	return ok, nil
}

// AddEmail attaches a recipient address to a project. ok is false when the
// project does not exist.
func (s *Service) AddEmail(ctx context.Context, projectID int64, email string, primary bool) (int64, bool, error) {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return 0, false, ErrInvalidEmail
	}
	p, err := s.store.Project(ctx, projectID)
	if err != nil {
		return 0, false, err
	}
	if p == nil {
		return 0, false, nil
	}
	id, err := s.store.AddProjectEmail(ctx, projectID, email, primary)
	if err != nil {
		return 0, false, fmt.Errorf("add email to project %d: %w", projectID, err)
	}
	return id, true, nil
}

func (s *Service) SetPrimaryEmail(ctx context.Context, projectID, emailID int64) (bool, error) {
	return s.store.SetPrimaryEmail(ctx, projectID, emailID)
}

func (s *Service) RemoveEmail(ctx context.Context, emailID int64) (bool, error) {
	return s.store.DeleteProjectEmail(ctx, emailID)
}

// DefaultProject returns the project of the most recently started entry.
func (s *Service) DefaultProject(ctx context.Context) (int64, bool, error) {
	return s.store.LatestEntryProject(ctx)
}

// ValidEmail is a loose sanity check: a non-empty local part and domain
// around an @, and no whitespace.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return store.DefaultCurrency, nil
	}
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return code, nil
}

package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service runs the read path (store query, client-side refinement,
// aggregation) and status writes.
type Service struct {
	tasks  TaskRepository
	logger zerolog.Logger
	now    func() time.Time
	policy UrgencyPolicy
}

func NewService(tasks TaskRepository, logger zerolog.Logger) *Service {
	return &Service{
		tasks:  tasks,
		logger: logger.With().Str("component", "task").Logger(),
		now:    time.Now,
		policy: DefaultUrgencyPolicy,
	}
}

// SetClock replaces the wall clock, mainly for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetUrgencyPolicy overrides the due-soon window.
func (s *Service) SetUrgencyPolicy(p UrgencyPolicy) {
	s.policy = p
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Query is what a view asks for. Window is a time-window token applied to
// task creation time; empty means no window. Criteria refine the result.
type Query struct {
	Window   string   `json:"window,omitempty"`
	Criteria Criteria `json:"criteria"`
}

// ResolveWindow resolves a window token against the service clock.
func (s *Service) ResolveWindow(token string) (DateRange, error) {
	return ResolveDateRange(token, s.now())
}

func (s *Service) ListTasks(ctx context.Context, q Query) ([]*Task, error) {
	tasks, _, err := s.fetch(ctx, q)
	return tasks, err
}

func (s *Service) Summary(ctx context.Context, q Query) (TaskSummary, error) {
	tasks, _, err := s.fetch(ctx, q)
	if err != nil {
		return TaskSummary{}, err
	}
	return Summarize(tasks, s.now()), nil
}

func (s *Service) PatientSummaries(ctx context.Context, q Query) ([]PatientTaskSummary, error) {
	tasks, _, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return SummarizeByPatient(tasks, s.now()), nil
}

// Dashboard builds every view of one store round trip.
func (s *Service) Dashboard(ctx context.Context, q Query) (*Dashboard, error) {
	tasks, window, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	now := s.now()
	patients := SummarizeByPatient(tasks, now)
	if patients == nil {
		patients = []PatientTaskSummary{}
	}
	return &Dashboard{
		Range:       window,
		Tasks:       tasks,
		Summary:     Summarize(tasks, now),
		Patients:    patients,
		Urgency:     s.policy.CountByUrgency(tasks, now),
		GeneratedAt: now.UTC(),
	}, nil
}

func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.policy.Annotate([]*Task{t}, s.now())
	return t, nil
}

// UpdateStatus writes a new status. Only unknown statuses are rejected; a
// status the task's category does not present is written with a warning.
// Store failures are logged and reported as not updated.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (bool, error) {
	status, err := ParseStatus(raw)
	if err != nil {
		return false, err
	}
	log := s.logger.With().Str("task_id", id.String()).Str("status", string(status)).Logger()

	current, err := s.tasks.GetByID(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		log.Error().Err(err).Msg("load task for status update")
		return false, nil
	}
	if !AllowedFor(current.Category, status) {
		log.Warn().Str("category", string(current.Category)).Msg("status not presented by category")
	}

	ok, err := s.tasks.UpdateStatus(ctx, id, status)
	if err != nil {
		log.Error().Err(err).Msg("update task status")
		return false, nil
	}
	return ok, nil
}

// fetch resolves the window, queries the store and refines the result. A
// store failure is logged and yields an empty list.
func (s *Service) fetch(ctx context.Context, q Query) ([]*Task, *DateRange, error) {
	now := s.now()
	f := storeFilterFor(q.Criteria)

	var window *DateRange
	if q.Window != "" {
		r, err := ResolveDateRange(q.Window, now)
		if err != nil {
			return nil, nil, err
		}
		window = &r
		f.CreatedFrom = r.Start.Time()
		f.CreatedBefore = r.End.AddDays(1).Time()
	}

	stored, err := s.tasks.List(ctx, f)
	if err != nil {
		s.logger.Error().Err(err).Str("window", q.Window).Msg("list tasks")
		return []*Task{}, window, nil
	}

	tasks := Filter(stored, q.Criteria)
	s.policy.Annotate(tasks, now)
	return tasks, window, nil
}

// storeFilterFor pushes the exact-match criteria down to the store. A patient
// id that is not a UUID is left to Filter, which then matches nothing.
func storeFilterFor(c Criteria) StoreFilter {
	var f StoreFilter
	if c.Status != "" && c.Status != All {
		f.Statuses = []Status{Status(c.Status)}
	}
	if c.PatientID != "" && c.PatientID != All {
		if pid, err := uuid.Parse(c.PatientID); err == nil {
			f.PatientID = &pid
		}
	}
	if c.Category != "" && c.Category != All {
		f.Category = Category(c.Category)
	}
	if c.Priority != "" && c.Priority != All {
		f.Priority = Priority(c.Priority)
	}
	return f
}

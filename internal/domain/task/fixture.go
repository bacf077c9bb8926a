package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type fixtureFile struct {
	Tasks []fixtureTask `yaml:"tasks"`
}

// fixtureTask dates may be absolute (due_date) or relative to the load time
// (due_in_days, created_days_ago) so a fixture stays current.
type fixtureTask struct {
	ID               string `yaml:"id"`
	Title            string `yaml:"title"`
	Description      string `yaml:"description"`
	Category         string `yaml:"category"`
	Status           string `yaml:"status"`
	Priority         string `yaml:"priority"`
	DueDate          string `yaml:"due_date"`
	DueInDays        *int   `yaml:"due_in_days"`
	Assignee         string `yaml:"assignee"`
	Dimension        string `yaml:"dimension"`
	PatientID        string `yaml:"patient_id"`
	PatientName      string `yaml:"patient_name"`
	EstimatedMinutes *int   `yaml:"estimated_minutes"`
	CreatedDaysAgo   *int   `yaml:"created_days_ago"`
}

// LoadFixtures decodes a YAML task list, resolving relative dates against now.
// Every entry is validated; the first bad entry fails the whole load.
func LoadFixtures(r io.Reader, now time.Time) ([]*Task, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f fixtureFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return []*Task{}, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	out := make([]*Task, 0, len(f.Tasks))
	for i, ft := range f.Tasks {
		t, err := ft.toTask(now)
		if err != nil {
			return nil, fmt.Errorf("fixture %d (%q): %w", i, ft.Title, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (ft fixtureTask) toTask(now time.Time) (*Task, error) {
	if ft.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	t := &Task{
		Title:            ft.Title,
		Category:         Category(ft.Category),
		Status:           Status(ft.Status),
		Priority:         Priority(ft.Priority),
		Assignee:         ft.Assignee,
		Description:      optional(ft.Description),
		Dimension:        optional(ft.Dimension),
		PatientName:      optional(ft.PatientName),
		EstimatedMinutes: ft.EstimatedMinutes,
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if !t.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, ft.Category)
	}
	if !t.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, ft.Status)
	}
	if !t.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidArgument, ft.Priority)
	}

	if ft.ID != "" {
		id, err := uuid.Parse(ft.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: id: %v", ErrInvalidArgument, err)
		}
		t.ID = id
	}
	if ft.PatientID != "" {
		pid, err := uuid.Parse(ft.PatientID)
		if err != nil {
			return nil, fmt.Errorf("%w: patient_id: %v", ErrInvalidArgument, err)
		}
		t.PatientID = &pid
	}

	today := DateOf(now)
	switch {
	case ft.DueDate != "" && ft.DueInDays != nil:
		return nil, fmt.Errorf("%w: due_date and due_in_days are exclusive", ErrInvalidArgument)
	case ft.DueDate != "":
		d, err := ParseDate(ft.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		t.DueDate = &d
	case ft.DueInDays != nil:
		d := today.AddDays(*ft.DueInDays)
		t.DueDate = &d
	}
	if ft.CreatedDaysAgo != nil {
		t.CreatedAt = now.UTC().AddDate(0, 0, -*ft.CreatedDaysAgo)
	}
	return t, nil
}

// Seed inserts tasks one by one and returns how many were written.
func Seed(ctx context.Context, repo TaskRepository, tasks []*Task) (int, error) {
	for i, t := range tasks {
		if err := repo.Create(ctx, t); err != nil {
			return i, fmt.Errorf("seed task %q: %w", t.Title, err)
		}
	}
	return len(tasks), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

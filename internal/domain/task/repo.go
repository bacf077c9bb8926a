package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StoreFilter holds the predicates pushed down to the store. Zero values
// disable a predicate. The created-at range is half open: [CreatedFrom,
// CreatedBefore).
type StoreFilter struct {
	Statuses      []Status
	PatientID     *uuid.UUID
	Category      Category
	Priority      Priority
	CreatedFrom   time.Time
	CreatedBefore time.Time
}

// TaskRepository is the task record store. List returns tasks ordered by due
// date with undated tasks last, then by creation time.
type TaskRepository interface {
	List(ctx context.Context, f StoreFilter) ([]*Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (bool, error)
	Create(ctx context.Context, t *Task) error
}

func statusStrings(ss []Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

package task

import "fmt"

// Status is the stored lifecycle state of a task. The set is shared across
// categories; StatusesFor narrows it to what a category presents.
type Status string

const (
	StatusPending      Status = "pending"
	StatusScheduled    Status = "scheduled"
	StatusInProgress   Status = "in-progress"
	StatusCompleted    Status = "completed"
	StatusDeclined     Status = "declined"
	StatusCancelled    Status = "cancelled"
	StatusAcknowledged Status = "acknowledged"
	StatusUnreachable  Status = "unreachable"
	StatusInContact    Status = "in-contact"
	StatusEnrolled     Status = "enrolled"
	StatusWithdrawn    Status = "withdrawn"
	StatusTodo         Status = "todo"
	StatusNoShow       Status = "no-show"
)

// Phase is the category-independent projection of a status.
type Phase string

const (
	// PhaseOpen is work not yet started. Summaries count it as pending.
	PhaseOpen Phase = "open"
	// PhaseActive is work under way. It is neither pending nor completed.
	PhaseActive    Phase = "active"
	PhaseCompleted Phase = "completed"
	// PhaseClosed covers every exit other than completion.
	PhaseClosed Phase = "closed"
)

var statusPhases = map[Status]Phase{
	StatusPending:      PhaseOpen,
	StatusAcknowledged: PhaseOpen,
	StatusScheduled:    PhaseOpen,
	StatusTodo:         PhaseOpen,
	StatusInProgress:   PhaseActive,
	StatusInContact:    PhaseActive,
	StatusEnrolled:     PhaseActive,
	StatusCompleted:    PhaseCompleted,
	StatusDeclined:     PhaseClosed,
	StatusCancelled:    PhaseClosed,
	StatusWithdrawn:    PhaseClosed,
	StatusUnreachable:  PhaseClosed,
	StatusNoShow:       PhaseClosed,
}

var categoryStatuses = map[Category][]Status{
	CategoryProvider: {
		StatusPending, StatusAcknowledged, StatusScheduled, StatusInProgress,
		StatusCompleted, StatusDeclined, StatusCancelled,
	},
	CategoryPatient: {
		StatusPending, StatusScheduled, StatusInContact, StatusInProgress,
		StatusCompleted, StatusUnreachable, StatusNoShow, StatusDeclined,
		StatusWithdrawn, StatusCancelled,
	},
	CategorySystem: {
		StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled,
	},
	CategoryCommunity: {
		StatusPending, StatusInContact, StatusEnrolled, StatusCompleted,
		StatusDeclined, StatusWithdrawn, StatusUnreachable,
	},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusPhases[s]
	return ok
}

// PhaseOf projects a status onto its phase. Unknown statuses are treated as
// active so they are never counted as pending or completed.
func PhaseOf(s Status) Phase {
	if p, ok := statusPhases[s]; ok {
		return p
	}
	return PhaseActive
}

// IsPending reports whether s belongs to the open set
// {pending, acknowledged, scheduled, todo}.
func IsPending(s Status) bool { return PhaseOf(s) == PhaseOpen }

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, raw)
	}
	return s, nil
}

// StatusesFor returns the statuses a category presents, in workflow order.
func StatusesFor(c Category) ([]Status, error) {
	list, ok := categoryStatuses[c]
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, c)
	}
	out := make([]Status, len(list))
	copy(out, list)
	return out, nil
}

// AllowedFor reports whether a category presents s.
func AllowedFor(c Category, s Status) bool {
	for _, k := range categoryStatuses[c] {
		if k == s {
			return true
		}
	}
	return false
}

package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidArgument marks caller mistakes: unknown tokens, statuses and the like.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotFound is returned by repositories when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// All is the filter value that disables a predicate.
const All = "all"

type Category string

const (
	CategoryProvider  Category = "provider-level"
	CategoryPatient   Category = "patient-level"
	CategorySystem    Category = "system-level"
	CategoryCommunity Category = "community-level"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryProvider, CategoryPatient, CategorySystem, CategoryCommunity}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	for _, k := range Priorities {
		if k == p {
			return true
		}
	}
	return false
}

// Urgency is the coarse timeliness label shown next to a task.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyDueSoon Urgency = "due-soon"
	UrgencyNormal  Urgency = "normal"
)

// SLAStatus drives badge colouring.
type SLAStatus string

const (
	SLAOnTime    SLAStatus = "on-time"
	SLAAtRisk    SLAStatus = "at-risk"
	SLAOverdue   SLAStatus = "overdue"
	SLACompleted SLAStatus = "completed"
)

// Task maps to the tasks table.
type Task struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	Description      *string    `db:"description" json:"description,omitempty"`
	Category         Category   `db:"category" json:"category"`
	Status           Status     `db:"status" json:"status"`
	Priority         Priority   `db:"priority" json:"priority"`
	DueDate          *Date      `db:"due_date" json:"due_date,omitempty"`
	Assignee         string     `db:"assignee" json:"assignee"`
	Dimension        *string    `db:"dimension" json:"dimension,omitempty"`
	PatientID        *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	PatientName      *string    `db:"patient_name" json:"patient_name,omitempty"`
	EstimatedMinutes *int       `db:"estimated_minutes" json:"estimated_minutes,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`

	// Computed on read, never stored.
	Urgency   Urgency   `db:"-" json:"urgency,omitempty"`
	SLAStatus SLAStatus `db:"-" json:"sla_status,omitempty"`
}

// TaskSummary is the dashboard roll-up of a task list.
type TaskSummary struct {
	Total      int              `json:"total"`
	Pending    int              `json:"pending"`
	Completed  int              `json:"completed"`
	Overdue    int              `json:"overdue"`
	ByCategory map[Category]int `json:"by_category"`
	ByPriority map[Priority]int `json:"by_priority"`
}

// PatientTaskSummary rolls up the tasks of a single patient.
type PatientTaskSummary struct {
	PatientID         uuid.UUID `json:"patient_id"`
	PatientName       string    `json:"patient_name"`
	TotalTasks        int       `json:"total_tasks"`
	PendingTasks      int       `json:"pending_tasks"`
	CompletedTasks    int       `json:"completed_tasks"`
	OverdueTasks      int       `json:"overdue_tasks"`
	HighPriorityTasks int       `json:"high_priority_tasks"`
}

// Dashboard is everything the task view renders from one store round trip.
type Dashboard struct {
	Range       *DateRange           `json:"range,omitempty"`
	Tasks       []*Task              `json:"tasks"`
	Summary     TaskSummary          `json:"summary"`
	Patients    []PatientTaskSummary `json:"patients"`
	Urgency     map[Urgency]int      `json:"urgency"`
	GeneratedAt time.Time            `json:"generated_at"`
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

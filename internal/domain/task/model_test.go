package task

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fixedNow is 2026-03-15 14:30 UTC.
var fixedNow = time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func dueIn(days int) *Date {
	d := DateOf(fixedNow).AddDays(days)
	return &d
}

type taskOpt func(*Task)

func withStatus(s Status) taskOpt { return func(t *Task) { t.Status = s } }
func withPriority(p Priority) taskOpt { return func(t *Task) { t.Priority = p } }
func withCategory(c Category) taskOpt { return func(t *Task) { t.Category = c } }
func withDue(days int) taskOpt { return func(t *Task) { t.DueDate = dueIn(days) } }
func withDescription(s string) taskOpt { return func(t *Task) { t.Description = ptr(s) } }
func withCreated(ts time.Time) taskOpt { return func(t *Task) { t.CreatedAt = ts } }
func withPatient(id uuid.UUID, name string) taskOpt {
	return func(t *Task) {
		t.PatientID = &id
		if name != "" {
			t.PatientName = ptr(name)
		}
	}
}

func newTask(title string, opts ...taskOpt) *Task {
	t := &Task{
		ID:        uuid.New(),
		Title:     title,
		Category:  CategoryPatient,
		Status:    StatusPending,
		Priority:  PriorityMedium,
		Assignee:  "Care Team",
		CreatedAt: fixedNow.Add(-24 * time.Hour),
		UpdatedAt: fixedNow.Add(-24 * time.Hour),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("expected %s to be valid", c)
		}
	}
	if Category("family-level").Valid() {
		t.Error("expected unknown category to be invalid")
	}
}

func TestPriority_Valid(t *testing.T) {
	for _, p := range Priorities {
		if !p.Valid() {
			t.Errorf("expected %s to be valid", p)
		}
	}
	if Priority("urgent").Valid() {
		t.Error("expected unknown priority to be invalid")
	}
}

func TestTask_JSONShape(t *testing.T) {
	pid := uuid.MustParse("7b0c6f0e-3c1a-4b1e-9a53-0f1c2d3e4f50")
	task := newTask("Weekly check-in call",
		withPatient(pid, "Sarah Johnson"),
		withDue(2),
		withPriority(PriorityHigh),
	)
	task.Urgency = UrgencyDueSoon

	b, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{
		`"title":"Weekly check-in call"`,
		`"category":"patient-level"`,
		`"due_date":"2026-03-17"`,
		`"patient_id":"7b0c6f0e-3c1a-4b1e-9a53-0f1c2d3e4f50"`,
		`"patient_name":"Sarah Johnson"`,
		`"urgency":"due-soon"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, "description") {
		t.Errorf("expected absent description to be omitted: %s", s)
	}
	if strings.Contains(s, "sla_status") {
		t.Errorf("expected unset sla_status to be omitted: %s", s)
	}
}

func TestTask_UnmarshalNullDueDate(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"title":"x","due_date":null}`), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.DueDate != nil {
		t.Errorf("expected nil due date, got %v", task.DueDate)
	}
}

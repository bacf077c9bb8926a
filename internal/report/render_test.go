package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/domain/task"
)

func sampleDashboard() *task.Dashboard {
	now := time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)
	sarah := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	name := "Sarah Johnson"
	due := task.MustParseDate("2026-03-14")

	tasks := []*task.Task{
		{
			Title: "PHQ-9 follow-up", Category: task.CategoryPatient, Status: task.StatusPending,
			Priority: task.PriorityHigh, DueDate: &due, PatientID: &sarah, PatientName: &name,
		},
		{
			Title: "Quarterly caseload audit", Category: task.CategorySystem, Status: task.StatusTodo,
			Priority: task.PriorityLow,
		},
	}
	task.DefaultUrgencyPolicy.Annotate(tasks, now)
	r, _ := task.ResolveDateRange("1week", now)

	return &task.Dashboard{
		Range:       &r,
		Tasks:       tasks,
		Summary:     task.Summarize(tasks, now),
		Patients:    task.SummarizeByPatient(tasks, now),
		Urgency:     task.DefaultUrgencyPolicy.CountByUrgency(tasks, now),
		GeneratedAt: now,
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleDashboard()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Care tasks",
		"2026-03-08 to 2026-03-15",
		"total 2",
		"pending 2",
		"overdue 1",
		"1 overdue",
		"0 due soon",
		"1 on track",
		"Sarah Johnson",
		"PHQ-9 follow-up",
		"Quarterly caseload audit",
		"no due date",
		"generated 2026-03-15 09:00 UTC",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	// a buffer is not a terminal
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no ANSI escapes when writing to a buffer:\n%q", out)
	}
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	d := &task.Dashboard{
		Tasks:    []*task.Task{},
		Summary:  task.Summarize(nil, time.Now()),
		Patients: []task.PatientTaskSummary{},
		Urgency:  task.DefaultUrgencyPolicy.CountByUrgency(nil, time.Now()),
	}
	if err := Render(&buf, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "no patient tasks") || !strings.Contains(out, "no tasks in range") {
		t.Errorf("expected empty-state lines:\n%s", out)
	}
}

func TestRender_Nil(t *testing.T) {
	if err := Render(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected error for nil dashboard")
	}
}

func TestDisplayName_FallsBackToID(t *testing.T) {
	id := uuid.New()
	if got := displayName(task.PatientTaskSummary{PatientID: id}); got != id.String() {
		t.Errorf("expected id fallback, got %q", got)
	}
}

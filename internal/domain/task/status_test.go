package task

import (
	"errors"
	"testing"
)

func TestPhaseOf(t *testing.T) {
	tests := []struct {
		status Status
		want   Phase
	}{
		{StatusPending, PhaseOpen},
		{StatusAcknowledged, PhaseOpen},
		{StatusScheduled, PhaseOpen},
		{StatusTodo, PhaseOpen},
		{StatusInProgress, PhaseActive},
		{StatusInContact, PhaseActive},
		{StatusEnrolled, PhaseActive},
		{StatusCompleted, PhaseCompleted},
		{StatusDeclined, PhaseClosed},
		{StatusCancelled, PhaseClosed},
		{StatusWithdrawn, PhaseClosed},
		{StatusUnreachable, PhaseClosed},
		{StatusNoShow, PhaseClosed},
		{Status("mystery"), PhaseActive},
	}
	for _, tt := range tests {
		if got := PhaseOf(tt.status); got != tt.want {
			t.Errorf("PhaseOf(%s) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestIsPending_ExcludesInProgress(t *testing.T) {
	if IsPending(StatusInProgress) {
		t.Error("in-progress must not count as pending")
	}
	for _, s := range []Status{StatusPending, StatusAcknowledged, StatusScheduled, StatusTodo} {
		if !IsPending(s) {
			t.Errorf("expected %s to be pending", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("no-show")
	if err != nil || s != StatusNoShow {
		t.Errorf("expected no-show, got %q, %v", s, err)
	}
	_, err = ParseStatus("on-hold")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestStatusesFor(t *testing.T) {
	system, err := StatusesFor(CategorySystem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Status{StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled}
	if len(system) != len(want) {
		t.Fatalf("expected %v, got %v", want, system)
	}
	for i := range want {
		if system[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], system[i])
		}
	}

	// callers get a copy
	system[0] = StatusNoShow
	again, _ := StatusesFor(CategorySystem)
	if again[0] != StatusTodo {
		t.Error("StatusesFor leaked its backing slice")
	}

	if _, err := StatusesFor(Category("family-level")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown category, got %v", err)
	}
}

func TestStatusesFor_AllKnown(t *testing.T) {
	for _, c := range Categories {
		list, err := StatusesFor(c)
		if err != nil {
			t.Fatalf("%s: %v", c, err)
		}
		for _, s := range list {
			if !s.Valid() {
				t.Errorf("%s presents unknown status %s", c, s)
			}
		}
	}
}

func TestAllowedFor(t *testing.T) {
	if !AllowedFor(CategoryCommunity, StatusEnrolled) {
		t.Error("community-level should present enrolled")
	}
	if AllowedFor(CategorySystem, StatusNoShow) {
		t.Error("system-level should not present no-show")
	}
	if AllowedFor(Category("unknown"), StatusPending) {
		t.Error("unknown category presents nothing")
	}
}

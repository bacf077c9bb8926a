package task

import "time"

// DefaultDueSoonDays is the dashboard's "due soon" window.
const DefaultDueSoonDays = 3

// UrgencyPolicy classifies tasks against a due-soon window.
type UrgencyPolicy struct {
	DueSoonDays int
}

// DefaultUrgencyPolicy uses DefaultDueSoonDays.
var DefaultUrgencyPolicy = UrgencyPolicy{DueSoonDays: DefaultDueSoonDays}

// ClassifyUrgency classifies t with the default policy.
func ClassifyUrgency(t *Task, now time.Time) Urgency {
	return DefaultUrgencyPolicy.Classify(t, now)
}

// SLAStatusOf derives t's SLA badge with the default policy.
func SLAStatusOf(t *Task, now time.Time) SLAStatus {
	return DefaultUrgencyPolicy.SLAStatus(t, now)
}

// Classify returns overdue when the due date is before today, due-soon when it
// falls within today..today+DueSoonDays, and normal otherwise. Completed and
// cancelled tasks, and tasks without a due date, are always normal.
func (p UrgencyPolicy) Classify(t *Task, now time.Time) Urgency {
	if t.Status == StatusCompleted || t.Status == StatusCancelled || t.DueDate == nil {
		return UrgencyNormal
	}
	today := DateOf(now)
	due := *t.DueDate
	switch {
	case due.Before(today):
		return UrgencyOverdue
	case !due.After(today.AddDays(p.DueSoonDays)):
		return UrgencyDueSoon
	default:
		return UrgencyNormal
	}
}

func (p UrgencyPolicy) SLAStatus(t *Task, now time.Time) SLAStatus {
	if t.Status == StatusCompleted {
		return SLACompleted
	}
	switch p.Classify(t, now) {
	case UrgencyOverdue:
		return SLAOverdue
	case UrgencyDueSoon:
		return SLAAtRisk
	default:
		return SLAOnTime
	}
}

// Annotate fills the computed Urgency and SLAStatus fields in place.
func (p UrgencyPolicy) Annotate(tasks []*Task, now time.Time) {
	for _, t := range tasks {
		t.Urgency = p.Classify(t, now)
		t.SLAStatus = p.SLAStatus(t, now)
	}
}

// CountByUrgency tallies tasks per urgency, reporting zero for absent labels.
func (p UrgencyPolicy) CountByUrgency(tasks []*Task, now time.Time) map[Urgency]int {
	counts := map[Urgency]int{UrgencyOverdue: 0, UrgencyDueSoon: 0, UrgencyNormal: 0}
	for _, t := range tasks {
		counts[p.Classify(t, now)]++
	}
	return counts
}

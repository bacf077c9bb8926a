package task

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Summarize rolls a task list up into dashboard counts. A task is overdue when
// it has a due date before today and is not completed. Nil entries are skipped.
func Summarize(tasks []*Task, now time.Time) TaskSummary {
	s := TaskSummary{
		ByCategory: make(map[Category]int, len(Categories)),
		ByPriority: make(map[Priority]int, len(Priorities)),
	}
	for _, c := range Categories {
		s.ByCategory[c] = 0
	}
	for _, p := range Priorities {
		s.ByPriority[p] = 0
	}

	today := DateOf(now)
	for _, t := range tasks {
		if t == nil {
			continue
		}
		s.Total++
		if IsPending(t.Status) {
			s.Pending++
		}
		if t.Status == StatusCompleted {
			s.Completed++
		}
		if isOverdue(t, today) {
			s.Overdue++
		}
		if _, ok := s.ByCategory[t.Category]; ok {
			s.ByCategory[t.Category]++
		}
		if _, ok := s.ByPriority[t.Priority]; ok {
			s.ByPriority[t.Priority]++
		}
	}
	return s
}

// SummarizeByPatient groups tasks by patient and rolls each group up, most
// pending first. Tasks without a patient are skipped. Groups with equal
// pending counts keep the order in which their first task appeared.
func SummarizeByPatient(tasks []*Task, now time.Time) []PatientTaskSummary {
	today := DateOf(now)
	index := make(map[uuid.UUID]int)
	var out []PatientTaskSummary

	for _, t := range tasks {
		if t == nil || t.PatientID == nil {
			continue
		}
		i, ok := index[*t.PatientID]
		if !ok {
			i = len(out)
			index[*t.PatientID] = i
			out = append(out, PatientTaskSummary{PatientID: *t.PatientID})
		}
		ps := &out[i]
		if ps.PatientName == "" {
			ps.PatientName = strVal(t.PatientName)
		}
		ps.TotalTasks++
		if IsPending(t.Status) {
			ps.PendingTasks++
		}
		if t.Status == StatusCompleted {
			ps.CompletedTasks++
		}
		if isOverdue(t, today) {
			ps.OverdueTasks++
		}
		if t.Priority == PriorityHigh {
			ps.HighPriorityTasks++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PendingTasks > out[j].PendingTasks
	})
	return out
}

func isOverdue(t *Task, today Date) bool {
	return t.DueDate != nil && t.DueDate.Before(today) && t.Status != StatusCompleted
}

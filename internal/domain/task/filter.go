package task

import (
	"strings"

	"golang.org/x/text/cases"
)

// Criteria selects tasks. Every field is optional and all set fields must
// match. String fields treat "" and "all" as no filter.
type Criteria struct {
	Status      string     `json:"status,omitempty"`
	PatientID   string     `json:"patient_id,omitempty"`
	Category    string     `json:"category,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	SearchQuery string     `json:"search_query,omitempty"`
	DateRange   *DateRange `json:"date_range,omitempty"`
}

// Filter returns the tasks matching c in their original order.
func Filter(tasks []*Task, c Criteria) []*Task {
	m := newMatcher(c)
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil && m.match(t) {
			out = append(out, t)
		}
	}
	return out
}

type matcher struct {
	c     Criteria
	fold  cases.Caser
	query string
}

func newMatcher(c Criteria) *matcher {
	m := &matcher{c: c, fold: cases.Fold()}
	if c.SearchQuery != "" {
		m.query = m.fold.String(c.SearchQuery)
	}
	return m
}

func (m *matcher) match(t *Task) bool {
	if !matchExact(string(t.Status), m.c.Status) {
		return false
	}
	if !matchExact(patientIDString(t), m.c.PatientID) {
		return false
	}
	if !matchExact(string(t.Category), m.c.Category) {
		return false
	}
	if !matchExact(string(t.Priority), m.c.Priority) {
		return false
	}
	if m.query != "" && !m.matchSearch(t) {
		return false
	}
	if m.c.DateRange != nil {
		if t.DueDate == nil || !m.c.DateRange.Contains(*t.DueDate) {
			return false
		}
	}
	return true
}

func (m *matcher) matchSearch(t *Task) bool {
	for _, field := range []string{t.Title, strVal(t.Description), strVal(t.PatientName)} {
		if field != "" && strings.Contains(m.fold.String(field), m.query) {
			return true
		}
	}
	return false
}

func matchExact(value, want string) bool {
	if want == "" || want == All {
		return true
	}
	return value == want
}

func patientIDString(t *Task) string {
	if t.PatientID == nil {
		return ""
	}
	return t.PatientID.String()
}

// Package report renders a task dashboard for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/careops/careops/internal/domain/task"
)

var (
	colorRed    = lipgloss.Color("#E06C75")
	colorGreen  = lipgloss.Color("#98C379")
	colorYellow = lipgloss.Color("#E5C07B")
	colorBlue   = lipgloss.Color("#61AFEF")
	colorMuted  = lipgloss.Color("#636B78")
	colorBorder = lipgloss.Color("#3F4451")
)

type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	box     lipgloss.Style
	header  lipgloss.Style
	urgency map[task.Urgency]lipgloss.Style
	prio    map[task.Priority]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorBlue),
		section: r.NewStyle().Bold(true).MarginTop(1),
		label:   r.NewStyle().Foreground(colorMuted),
		muted:   r.NewStyle().Foreground(colorMuted),
		box:     r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1),
		header:  r.NewStyle().Bold(true).Underline(true),
		urgency: map[task.Urgency]lipgloss.Style{
			task.UrgencyOverdue: r.NewStyle().Foreground(colorRed).Bold(true),
			task.UrgencyDueSoon: r.NewStyle().Foreground(colorYellow),
			task.UrgencyNormal:  r.NewStyle().Foreground(colorGreen),
		},
		prio: map[task.Priority]lipgloss.Style{
			task.PriorityHigh:   r.NewStyle().Foreground(colorRed),
			task.PriorityMedium: r.NewStyle().Foreground(colorYellow),
			task.PriorityLow:    r.NewStyle().Foreground(colorMuted),
		},
	}
}

// Render writes d to w. Colours are used only when w is a terminal that
// supports them.
func Render(w io.Writer, d *task.Dashboard) error {
	if d == nil {
		return fmt.Errorf("render: nil dashboard")
	}
	st := newStyles(lipgloss.NewRenderer(w))

	var b strings.Builder
	b.WriteString(st.title.Render("Care tasks"))
	if d.Range != nil {
		b.WriteString(st.muted.Render(fmt.Sprintf("  %s to %s", d.Range.Start, d.Range.End)))
	}
	b.WriteString("\n")

	b.WriteString(st.box.Render(summaryLine(st, d)))
	b.WriteString("\n")

	b.WriteString(st.section.Render("By category"))
	b.WriteString("\n")
	for _, c := range task.Categories {
		fmt.Fprintf(&b, "  %-18s %d\n", c, d.Summary.ByCategory[c])
	}

	b.WriteString(st.section.Render("By priority"))
	b.WriteString("\n")
	for _, p := range task.Priorities {
		fmt.Fprintf(&b, "  %s %d\n", st.prio[p].Render(fmt.Sprintf("%-18s", p)), d.Summary.ByPriority[p])
	}

	b.WriteString(st.section.Render("Patients"))
	b.WriteString("\n")
	if len(d.Patients) == 0 {
		b.WriteString(st.muted.Render("  no patient tasks"))
		b.WriteString("\n")
	} else {
		writePatients(&b, st, d.Patients)
	}

	b.WriteString(st.section.Render("Tasks"))
	b.WriteString("\n")
	if len(d.Tasks) == 0 {
		b.WriteString(st.muted.Render("  no tasks in range"))
		b.WriteString("\n")
	} else {
		writeTasks(&b, st, d.Tasks)
	}

	b.WriteString(st.muted.Render("generated " + d.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func summaryLine(st styles, d *task.Dashboard) string {
	s := d.Summary
	parts := []string{
		st.label.Render("total ") + strconv.Itoa(s.Total),
		st.label.Render("pending ") + strconv.Itoa(s.Pending),
		st.label.Render("completed ") + strconv.Itoa(s.Completed),
		st.label.Render("overdue ") + st.urgency[task.UrgencyOverdue].Render(strconv.Itoa(s.Overdue)),
	}
	urg := []string{
		st.urgency[task.UrgencyOverdue].Render(fmt.Sprintf("%d overdue", d.Urgency[task.UrgencyOverdue])),
		st.urgency[task.UrgencyDueSoon].Render(fmt.Sprintf("%d due soon", d.Urgency[task.UrgencyDueSoon])),
		st.urgency[task.UrgencyNormal].Render(fmt.Sprintf("%d on track", d.Urgency[task.UrgencyNormal])),
	}
	return strings.Join(parts, "   ") + "\n" + strings.Join(urg, "   ")
}

func writePatients(b *strings.Builder, st styles, patients []task.PatientTaskSummary) {
	nameWidth := len("Patient")
	for _, p := range patients {
		if n := len(displayName(p)); n > nameWidth {
			nameWidth = n
		}
	}
	row := "  %-*s %7s %7s %9s %7s %4s\n"
	b.WriteString(st.header.Render(fmt.Sprintf(strings.TrimSuffix(row, "\n"),
		nameWidth, "Patient", "Total", "Pending", "Completed", "Overdue", "High")))
	b.WriteString("\n")
	for _, p := range patients {
		fmt.Fprintf(b, row, nameWidth, displayName(p),
			strconv.Itoa(p.TotalTasks), strconv.Itoa(p.PendingTasks), strconv.Itoa(p.CompletedTasks),
			strconv.Itoa(p.OverdueTasks), strconv.Itoa(p.HighPriorityTasks))
	}
}

func displayName(p task.PatientTaskSummary) string {
	if p.PatientName != "" {
		return p.PatientName
	}
	return p.PatientID.String()
}

func writeTasks(b *strings.Builder, st styles, tasks []*task.Task) {
	for _, t := range tasks {
		due := "no due date"
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		badge := st.urgency[t.Urgency].Render(fmt.Sprintf("%-8s", t.Urgency))
		if t.Urgency == "" {
			badge = fmt.Sprintf("%-8s", "")
		}
		line := fmt.Sprintf("  %-11s %s %s %-12s %s", due, badge,
			st.prio[t.Priority].Render(fmt.Sprintf("%-6s", t.Priority)), t.Status, t.Title)
		if t.PatientName != nil {
			line += st.muted.Render(" (" + *t.PatientName + ")")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

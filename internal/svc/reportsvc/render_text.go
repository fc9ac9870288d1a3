package reportsvc

import (
	"fmt"
	"strings"
)

const ruler = "-----------------------------------"

// RenderTaskOverview formats a task overview as a human-readable text block.
func RenderTaskOverview(o TaskOverview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task Overview (as of %s)\n", o.AsOf)
	b.WriteString(ruler + "\n")

	if o.Empty() {
		b.WriteString("No tasks have been recorded.\n")
	}

	writeRow(&b, "Total tasks:", o.Total)
	writeRow(&b, "Completed tasks:", o.Completed)
	writeRow(&b, "Incomplete tasks:", o.Incomplete)
	writeRow(&b, "Overdue tasks:", o.Overdue)
	writeRow(&b, "Incomplete (% of total):", o.PercentIncomplete)
	writeRow(&b, "Overdue (% of total):", o.PercentOverdue)
	b.WriteString(ruler + "\n")

	return b.String()
}

// RenderUserOverview formats a user overview as a human-readable text block.
func RenderUserOverview(o UserOverview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "User Overview (as of %s)\n", o.AsOf)
	b.WriteString(ruler + "\n")
	writeRow(&b, "Total users:", o.TotalUsers)
	writeRow(&b, "Total tasks:", o.TotalTasks)
	b.WriteString(ruler + "\n")

	for _, s := range o.Users {
		name := s.Username
		if !s.Registered {
			name += " (not registered)"
		}

		fmt.Fprintf(&b, "User: %s\n", name)

		if s.Tasks == 0 {
			b.WriteString("  No tasks assigned.\n")
		}

		writeRow(&b, "  Tasks assigned:", s.Tasks)
		writeRow(&b, "  Share of all tasks:", s.PercentOfTotal)
		writeRow(&b, "  Completed:", s.PercentCompleted)
		writeRow(&b, "  Incomplete:", s.PercentIncomplete)
		writeRow(&b, "  Incomplete and overdue:", s.PercentOverdue)
		b.WriteString(ruler + "\n")
	}

	return b.String()
}

// RenderStatistics formats the user and task counts.
func RenderStatistics(s Statistics) string {
	var b strings.Builder

	b.WriteString(ruler + "\n")
	writeRow(&b, "Number of users:", s.Users)
	writeRow(&b, "Number of tasks:", s.Tasks)
	b.WriteString(ruler + "\n")

	return b.String()
}

func writeRow(b *strings.Builder, label string, value any) {
	fmt.Fprintf(b, "%-28s%v\n", label, value)
}

package display

import (
	"fmt"
	"strings"

	"github.com/gerardosocias29/cms-station/internal/models"
)

// HistoryTable renders completed/cancelled entries for one department
// and day as a plain aligned table.
func HistoryTable(rows []models.Patient) string {
	if len(rows) == 0 {
		return dimStyle.Render("(no entries for this filter)") + "\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-8s %-22s %-12s %-11s %-20s %-20s\n",
		"TICKET", "NAME", "PRIORITY", "STATUS", "CREATED", "COMPLETED"))

	for _, p := range rows {
		completed := "-"
		if p.CompletedAt != nil {
			completed = p.CompletedAt.Format("2006-01-02 15:04:05")
		}
		ticket := PriorityStyle(p.Priority).Render(fmt.Sprintf("%-8s", p.Ticket()))
		b.WriteString(fmt.Sprintf("%s %-22s %-12s %-11s %-20s %-20s\n",
			ticket,
			truncate(p.Name, 22),
			models.PriorityLabel(p.Priority),
			p.Status,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
			completed))
	}
	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

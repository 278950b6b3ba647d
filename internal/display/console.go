package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gerardosocias29/cms-station/internal/models"
	"github.com/gerardosocias29/cms-station/internal/queue"
)

// ConsoleView is everything the staff console renders. It is a pure
// function of the controller snapshot; the console holds no state of
// its own.
type ConsoleView struct {
	DepartmentName string
	Specialization string
	Snapshot       queue.Snapshot
}

// Console renders the interactive staff screen: header, now-serving
// box, waiting grid colored by priority, destination picker, and the
// command help line.
func Console(view ConsoleView) string {
	var b strings.Builder

	title := view.DepartmentName
	if view.Specialization != "" {
		title += " - " + view.Specialization
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")

	totals := view.Snapshot.Totals
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"urgent %d | waiting %d | in progress %d | completed %d",
		totals.Urgent, totals.Waiting, totals.InProgress, totals.Completed)))
	b.WriteString("\n\n")

	b.WriteString("Now Serving\n")
	if view.Snapshot.Current != nil {
		b.WriteString(servingStyle.Render(view.Snapshot.Current.Ticket()))
	} else {
		b.WriteString(servingStyle.Render("---"))
	}
	b.WriteString("\n\nIn Queue\n")
	b.WriteString(waitingGrid(view.Snapshot.Waiting))

	if view.Snapshot.Current != nil {
		b.WriteString("\nWhere to go next?\n")
		b.WriteString(destinationPicker(view.Snapshot.Departments, view.Snapshot.DestinationID))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("[s <n>] start  [e] end  [d <n>] destination  [t] transfer  [n] new patient  [p] reprint  [r] refresh  [q] quit"))
	b.WriteString("\n")
	return b.String()
}

func waitingGrid(waiting []models.Patient) string {
	if len(waiting) == 0 {
		return dimStyle.Render("(queue is empty)") + "\n"
	}

	cells := make([]string, 0, len(waiting))
	for i, p := range waiting {
		ticket := PriorityStyle(p.Priority).Render(p.Ticket())
		cells = append(cells, cellStyle.Render(fmt.Sprintf("%d %s", i+1, ticket)))
	}

	var rows []string
	for start := 0; start < len(cells); start += 4 {
		end := start + 4
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[start:end]...))
	}
	return strings.Join(rows, "\n") + "\n"
}

func destinationPicker(departments []models.Department, selectedID string) string {
	if len(departments) == 0 {
		return dimStyle.Render("(no destinations loaded)") + "\n"
	}

	var b strings.Builder
	for i, d := range departments {
		label := fmt.Sprintf("%d %s", i+1, d.Name)
		if d.ID == selectedID {
			b.WriteString(selectedStyle.Render("> " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

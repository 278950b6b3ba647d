package display

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gerardosocias29/cms-station/internal/models"
)

// BoardView is the TV board input: every station currently serving a
// patient, the clinic banner, and the ambient video URL shown as a
// caption.
type BoardView struct {
	ClinicName string
	Tagline    string
	Stations   []models.Department
	VideoURL   string
	Now        time.Time
}

// Board renders the passive waiting-room grid. Cells are one per
// department, each with the department name and the ticket it is
// serving, colored by the ticket's priority class.
func Board(view BoardView) string {
	var b strings.Builder

	banner := view.ClinicName
	if view.Tagline != "" {
		banner += " - " + view.Tagline
	}
	b.WriteString(headerStyle.Render(banner))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(view.Now.Format("January 2, 2006 03:04:05 PM")))
	b.WriteString("\n\n")

	if len(view.Stations) == 0 {
		b.WriteString(dimStyle.Render("(no stations are serving)"))
		b.WriteString("\n")
		return b.String()
	}

	cells := make([]string, 0, len(view.Stations))
	for _, station := range view.Stations {
		number := PriorityStyle(station.NowServingPriority).Render(station.NowServing())
		cell := station.Name + "\n" + number + "\n" + dimStyle.Render("Now Serving")
		cells = append(cells, cellStyle.Render(cell))
	}

	for start := 0; start < len(cells); start += 4 {
		end := start + 4
		if end > len(cells) {
			end = len(cells)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells[start:end]...))
		b.WriteString("\n")
	}

	if view.VideoURL != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("ambient video: " + view.VideoURL))
		b.WriteString("\n")
	}
	return b.String()
}

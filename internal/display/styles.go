package display

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gerardosocias29/cms-station/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27")).Padding(0, 2)

	servingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("34")).Padding(1, 4)

	urgentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	seniorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	regularStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))

	cellStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2).Align(lipgloss.Center)

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// PriorityStyle maps a priority class to its display style: red for
// urgent, orange for senior/PWD, blue for regular, matching the ticket
// color coding on the printed boards.
func PriorityStyle(priority string) lipgloss.Style {
	switch priority {
	case models.PriorityUrgent:
		return urgentStyle
	case models.PrioritySenior:
		return seniorStyle
	default:
		return regularStyle
	}
}

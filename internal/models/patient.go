package models

import (
	"fmt"
	"time"
)

// Patient is one queue entry as it moves through intake, waiting,
// serving and a terminal state. The backend owns every field; stations
// only render and command transitions.
type Patient struct {
	ID             string     `json:"id"`
	Priority       string     `json:"priority"`
	PriorityNumber int        `json:"priority_number"`
	Status         string     `json:"status"`
	DepartmentID   string     `json:"department_id,omitempty"`
	AssignedTo     string     `json:"assigned_to,omitempty"`
	Name           string     `json:"name,omitempty"`
	Birthday       string     `json:"birthday,omitempty"`
	Address        string     `json:"address,omitempty"`
	Symptoms       string     `json:"symptoms,omitempty"`
	BloodPressure  string     `json:"blood_pressure,omitempty"`
	HeartRate      string     `json:"heart_rate,omitempty"`
	Temperature    string     `json:"temperature,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	PriorityUrgent  = "P"
	PrioritySenior  = "SC"
	PriorityRegular = "R"
)

// TicketNumber renders the printed/display form of a queue number:
// the priority prefix followed by the zero-padded sequence, e.g. R03.
func TicketNumber(priority string, number int) string {
	return fmt.Sprintf("%s%02d", priority, number)
}

// Ticket is the display number of this entry.
func (p Patient) Ticket() string {
	return TicketNumber(p.Priority, p.PriorityNumber)
}

func ValidStatus(status string) bool {
	switch status {
	case StatusWaiting, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityUrgent, PrioritySenior, PriorityRegular:
		return true
	}
	return false
}

// PriorityLabel is the long form shown on staff screens.
func PriorityLabel(priority string) string {
	switch priority {
	case PriorityUrgent:
		return "Urgent"
	case PrioritySenior:
		return "Senior/PWD"
	default:
		return "Regular"
	}
}

// CardTotals backs the console header counters.
type CardTotals struct {
	Urgent     int `json:"urgent"`
	Waiting    int `json:"waiting"`
	InProgress int `json:"inprogress"`
	Completed  int `json:"completed"`
}

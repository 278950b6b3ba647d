package models

// CallOutEvent is the ephemeral announcement message broadcast when a
// session starts or a patient is routed onward. Consumed once, never
// persisted.
type CallOutEvent struct {
	DepartmentName string `json:"department_name"`
	Priority       string `json:"priority"`
	Number         int    `json:"number"`
}

// Complete reports whether the event carries everything an announcement
// needs. Incomplete events are dropped silently.
func (e CallOutEvent) Complete() bool {
	return e.DepartmentName != "" && e.Priority != "" && e.Number > 0
}

// Ticket is the spoken/display number, e.g. SC07.
func (e CallOutEvent) Ticket() string {
	return TicketNumber(e.Priority, e.Number)
}

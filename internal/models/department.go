package models

// Department is a station the queue routes through. NowServing carries
// the currently served ticket for board views; it is empty when the
// station is idle.
type Department struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Specialization     string `json:"specialization,omitempty"`
	NowServingPriority string `json:"now_serving_priority,omitempty"`
	NowServingNumber   int    `json:"now_serving_number,omitempty"`
}

// NowServing is the display ticket for a board cell, or "---" when idle.
func (d Department) NowServing() string {
	if d.NowServingPriority == "" {
		return "---"
	}
	return TicketNumber(d.NowServingPriority, d.NowServingNumber)
}

// Profile identifies the logged-in staff member and the department
// their console operates on.
type Profile struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Department Department `json:"department"`
}

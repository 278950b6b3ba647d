package models

import "testing"

func TestTicketNumber(t *testing.T) {
	cases := []struct {
		priority string
		number   int
		want     string
	}{
		{"R", 3, "R03"},
		{"R", 12, "R12"},
		{"P", 1, "P01"},
		{"SC", 7, "SC07"},
		{"R", 99, "R99"},
		{"R", 100, "R100"},
	}

	for _, tt := range cases {
		if got := TicketNumber(tt.priority, tt.number); got != tt.want {
			t.Fatalf("TicketNumber(%q, %d)=%q, want %q", tt.priority, tt.number, got, tt.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	cases := []struct {
		status string
		valid  bool
	}{
		{"waiting", true},
		{"in-progress", true},
		{"completed", true},
		{"cancelled", true},
		{"serving", false},
		{"", false},
	}

	for _, tt := range cases {
		if got := ValidStatus(tt.status); got != tt.valid {
			t.Fatalf("ValidStatus(%q)=%v, want %v", tt.status, got, tt.valid)
		}
	}
}

func TestPriorityLabel(t *testing.T) {
	if got := PriorityLabel("P"); got != "Urgent" {
		t.Fatalf("unexpected label for P: %s", got)
	}
	if got := PriorityLabel("SC"); got != "Senior/PWD" {
		t.Fatalf("unexpected label for SC: %s", got)
	}
	if got := PriorityLabel("R"); got != "Regular" {
		t.Fatalf("unexpected label for R: %s", got)
	}
}

func TestCallOutComplete(t *testing.T) {
	cases := []struct {
		event    CallOutEvent
		complete bool
	}{
		{CallOutEvent{"Radiology", "R", 3}, true},
		{CallOutEvent{"", "R", 3}, false},
		{CallOutEvent{"Radiology", "", 3}, false},
		{CallOutEvent{"Radiology", "R", 0}, false},
	}

	for _, tt := range cases {
		if got := tt.event.Complete(); got != tt.complete {
			t.Fatalf("Complete(%+v)=%v, want %v", tt.event, got, tt.complete)
		}
	}
}

func TestDepartmentNowServing(t *testing.T) {
	d := Department{Name: "Clinic RM1"}
	if got := d.NowServing(); got != "---" {
		t.Fatalf("idle department should render ---, got %s", got)
	}
	d.NowServingPriority = "SC"
	d.NowServingNumber = 1
	if got := d.NowServing(); got != "SC01" {
		t.Fatalf("unexpected now serving: %s", got)
	}
}

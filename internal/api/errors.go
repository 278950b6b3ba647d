package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a backend rejection decoded from the standard
// {"error":{"code","message"}} envelope. Message is shown to the user
// verbatim when present.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("backend error %s (status %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("backend error (status %d)", e.Status)
}

// IsConflict reports whether err is the backend refusing a transition,
// typically starting a session while another entry is already
// in progress.
func IsConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusConflict || apiErr.Code == "already_serving"
}

// DecodeError marks a response that did not match the expected shape.
// Downstream code never re-checks payload shape; it either gets typed
// values or one of these.
type DecodeError struct {
	Endpoint string
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Endpoint, e.Reason)
}

package api

import (
	"encoding/json"
	"fmt"

	"github.com/gerardosocias29/cms-station/internal/models"
)

func validatePatient(p models.Patient) error {
	if p.ID == "" {
		return fmt.Errorf("entry missing id")
	}
	if !models.ValidStatus(p.Status) {
		return fmt.Errorf("entry %s has unknown status %q", p.ID, p.Status)
	}
	if !models.ValidPriority(p.Priority) {
		return fmt.Errorf("entry %s has unknown priority %q", p.ID, p.Priority)
	}
	return nil
}

func decodePatients(endpoint string, body []byte) ([]models.Patient, error) {
	var patients []models.Patient
	if err := json.Unmarshal(body, &patients); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Reason: err.Error()}
	}
	for _, p := range patients {
		if err := validatePatient(p); err != nil {
			return nil, &DecodeError{Endpoint: endpoint, Reason: err.Error()}
		}
	}
	return patients, nil
}

// decodeHistory accepts terminal entries only; the history endpoint is
// read-only and never carries the live queue.
func decodeHistory(endpoint string, body []byte) ([]models.Patient, error) {
	patients, err := decodePatients(endpoint, body)
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func decodeDepartments(endpoint string, body []byte) ([]models.Department, error) {
	var departments []models.Department
	if err := json.Unmarshal(body, &departments); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Reason: err.Error()}
	}
	for _, d := range departments {
		if d.ID == "" || d.Name == "" {
			return nil, &DecodeError{Endpoint: endpoint, Reason: "department missing id or name"}
		}
	}
	return departments, nil
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gerardosocias29/cms-station/internal/models"
)

// Client is the typed backend client. Every endpoint has exactly one
// decode path; callers receive validated structs or an error, never raw
// payloads.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport))
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

type envelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode()}
		var env envelope
		if jsonErr := json.Unmarshal(resp.Body(), &env); jsonErr == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			if apiErr.Message == "" {
				apiErr.Message = env.Message
			}
		}
		return nil, apiErr
	}
	return resp.Body(), nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body map[string]interface{}) ([]byte, error) {
	if body == nil {
		body = map[string]interface{}{}
	}
	if _, ok := body["request_id"]; !ok {
		body["request_id"] = uuid.NewString()
	}
	return c.do(ctx, http.MethodPost, path, body)
}

// Queue fetches the full waiting-room view for the caller's department.
func (c *Client) Queue(ctx context.Context) ([]models.Patient, error) {
	body, err := c.get(ctx, "/patients/queue")
	if err != nil {
		return nil, err
	}
	return decodePatients("/patients/queue", body)
}

// StartSession asks the backend to move a waiting entry to in-progress.
// The backend rejects it when another entry already holds the serving
// slot; IsConflict classifies that rejection.
func (c *Client) StartSession(ctx context.Context, patientID string) (models.Patient, error) {
	body, err := c.post(ctx, "/queue/start/"+patientID, nil)
	if err != nil {
		return models.Patient{}, err
	}
	var out struct {
		Patient models.Patient `json:"patient"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return models.Patient{}, &DecodeError{Endpoint: "/queue/start", Reason: err.Error()}
	}
	if err := validatePatient(out.Patient); err != nil {
		return models.Patient{}, &DecodeError{Endpoint: "/queue/start", Reason: err.Error()}
	}
	return out.Patient, nil
}

func (c *Client) EndSession(ctx context.Context, patientID string) error {
	_, err := c.post(ctx, "/queue/end/"+patientID, nil)
	return err
}

// Transfer routes the in-progress patient to another department's
// waiting list.
func (c *Client) Transfer(ctx context.Context, patientID, nextStepID string) error {
	_, err := c.post(ctx, "/queue/next/"+patientID, map[string]interface{}{
		"next_step_id": nextStepID,
	})
	return err
}

// Departments lists stations, optionally only those currently serving
// a patient (the board view).
func (c *Client) Departments(ctx context.Context, hasPatientOnly bool) ([]models.Department, error) {
	path := "/departments"
	if hasPatientOnly {
		path += "?has_patient=true"
	}
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeDepartments(path, body)
}

// QueueHistory reads terminal entries for a department and calendar day
// from the read-only history endpoint. date is YYYY-MM-DD.
func (c *Client) QueueHistory(ctx context.Context, departmentID, date string) ([]models.Patient, error) {
	body, err := c.get(ctx, "/patients/queue/history?department_id="+departmentID+"&date="+date)
	if err != nil {
		return nil, err
	}
	return decodeHistory("/patients/queue/history", body)
}

func (c *Client) DefaultPrinter(ctx context.Context) (models.PrinterBinding, error) {
	body, err := c.get(ctx, "/settings/default-printer")
	if err != nil {
		return models.PrinterBinding{}, err
	}
	var binding models.PrinterBinding
	if err := json.Unmarshal(body, &binding); err != nil {
		return models.PrinterBinding{}, &DecodeError{Endpoint: "/settings/default-printer", Reason: err.Error()}
	}
	return binding, nil
}

func (c *Client) SetDefaultPrinter(ctx context.Context, binding models.PrinterBinding) error {
	_, err := c.post(ctx, "/settings/default-printer", map[string]interface{}{
		"vendorId":         binding.VendorID,
		"productId":        binding.ProductID,
		"name":             binding.Name,
		"serialNumber":     binding.SerialNumber,
		"interface_number": binding.InterfaceNumber,
	})
	return err
}

func (c *Client) VideoURL(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/settings/video-url")
	if err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &DecodeError{Endpoint: "/settings/video-url", Reason: err.Error()}
	}
	return out.URL, nil
}

func (c *Client) SetVideoURL(ctx context.Context, url string) error {
	_, err := c.post(ctx, "/settings/video-url", map[string]interface{}{"url": url})
	return err
}

// Profile fetches the logged-in staff member. A failure here is fatal
// to the session; callers log out rather than retry.
func (c *Client) Profile(ctx context.Context) (models.Profile, error) {
	body, err := c.get(ctx, "/profile")
	if err != nil {
		return models.Profile{}, err
	}
	var profile models.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return models.Profile{}, &DecodeError{Endpoint: "/profile", Reason: err.Error()}
	}
	if profile.ID == "" {
		return models.Profile{}, &DecodeError{Endpoint: "/profile", Reason: "missing id"}
	}
	return profile, nil
}

// Intake are the fields captured once when a patient is registered.
type Intake struct {
	Name          string `json:"name"`
	Birthday      string `json:"birthday"`
	Address       string `json:"address"`
	Symptoms      string `json:"symptoms"`
	BloodPressure string `json:"blood_pressure"`
	HeartRate     string `json:"heart_rate"`
	Temperature   string `json:"temperature"`
	Priority      string `json:"priority"`
	AssignedTo    string `json:"assigned_to"`
}

// Validate surfaces missing required intake fields before any network
// round trip.
func (in Intake) Validate() []string {
	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Symptoms == "" {
		missing = append(missing, "symptoms")
	}
	if !models.ValidPriority(in.Priority) {
		missing = append(missing, "priority")
	}
	return missing
}

// CreatePatient registers a new queue entry. The backend allocates the
// id and the per-priority daily sequence number; the client never does.
func (c *Client) CreatePatient(ctx context.Context, in Intake) (models.Patient, error) {
	body, err := c.post(ctx, "/patients", map[string]interface{}{
		"name":           in.Name,
		"birthday":       in.Birthday,
		"address":        in.Address,
		"symptoms":       in.Symptoms,
		"blood_pressure": in.BloodPressure,
		"heart_rate":     in.HeartRate,
		"temperature":    in.Temperature,
		"priority":       in.Priority,
		"assigned_to":    in.AssignedTo,
	})
	if err != nil {
		return models.Patient{}, err
	}
	var patient models.Patient
	if err := json.Unmarshal(body, &patient); err != nil {
		return models.Patient{}, &DecodeError{Endpoint: "/patients", Reason: err.Error()}
	}
	if err := validatePatient(patient); err != nil {
		return models.Patient{}, &DecodeError{Endpoint: "/patients", Reason: err.Error()}
	}
	return patient, nil
}

func (c *Client) CardTotals(ctx context.Context) (models.CardTotals, error) {
	body, err := c.get(ctx, "/patients/card-totals")
	if err != nil {
		return models.CardTotals{}, err
	}
	var totals models.CardTotals
	if err := json.Unmarshal(body, &totals); err != nil {
		return models.CardTotals{}, &DecodeError{Endpoint: "/patients/card-totals", Reason: err.Error()}
	}
	return totals, nil
}

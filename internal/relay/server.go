package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gerardosocias29/cms-station/internal/models"
	"github.com/gerardosocias29/cms-station/internal/printer"
)

// BindingSource resolves the station's default printer binding. The
// backend client satisfies it; tests inject fixed bindings.
type BindingSource interface {
	DefaultPrinter(ctx context.Context) (models.PrinterBinding, error)
}

// Printer is what the relay needs from the driver.
type Printer interface {
	Print(ctx context.Context, binding models.PrinterBinding, payload printer.Payload) error
	PrintTestPage(ctx context.Context, binding models.PrinterBinding) error
}

// Handler is the LAN print relay: stations without direct device
// access POST payloads here and this process drives the USB printer.
// The binding is fetched fresh from the backend on every job; the
// relay holds no printer state of its own.
type Handler struct {
	bindings BindingSource
	printer  Printer
	log      *zap.Logger
	mock     bool
}

type Options struct {
	// Mock short-circuits hardware entirely: jobs are logged and
	// acknowledged, for stations where no printer is attached.
	Mock bool
}

func NewHandler(bindings BindingSource, driver Printer, log *zap.Logger, options Options) *Handler {
	return &Handler{bindings: bindings, printer: driver, log: log, mock: options.Mock}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(h.log))
	r.Get("/healthz", h.handleHealth)
	r.Post("/print", h.handlePrint)
	r.Post("/print/test", h.handleTestPrint)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handlePrint(w http.ResponseWriter, r *http.Request) {
	var payload printer.Payload
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	if payload.Text == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}

	if h.mock {
		h.log.Info("mock print", zap.String("text", payload.Text))
		writeJSON(w, http.StatusOK, map[string]string{"message": "printer not found, mock print completed"})
		return
	}

	h.runJob(w, r, func(ctx context.Context, binding models.PrinterBinding) error {
		return h.printer.Print(ctx, binding, payload)
	})
}

func (h *Handler) handleTestPrint(w http.ResponseWriter, r *http.Request) {
	if h.mock {
		h.log.Info("mock test print")
		writeJSON(w, http.StatusOK, map[string]string{"message": "printer not found, mock print completed"})
		return
	}
	h.runJob(w, r, h.printer.PrintTestPage)
}

func (h *Handler) runJob(w http.ResponseWriter, r *http.Request, job func(context.Context, models.PrinterBinding) error) {
	binding, err := h.bindings.DefaultPrinter(r.Context())
	if err != nil {
		h.log.Warn("binding fetch failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "binding_unavailable", "could not load the default printer setting")
		return
	}

	if err := job(r.Context(), binding); err != nil {
		status, code := classify(err)
		h.log.Warn("print failed", zap.String("code", code), zap.Error(err))
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "printing started"})
}

func classify(err error) (int, string) {
	var transferErr *printer.TransferError
	switch {
	case errors.Is(err, printer.ErrDeviceNotFound):
		return http.StatusBadGateway, "device_not_found"
	case errors.Is(err, printer.ErrEndpointNotFound):
		return http.StatusBadGateway, "endpoint_not_found"
	case errors.Is(err, printer.ErrPermissionDenied):
		return http.StatusBadGateway, "permission_denied"
	case errors.As(err, &transferErr):
		if transferErr.DriverConflict {
			return http.StatusBadGateway, "driver_conflict"
		}
		return http.StatusBadGateway, "transfer_failed"
	default:
		return http.StatusInternalServerError, "printer_error"
	}
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

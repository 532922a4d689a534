package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// errorResponse is the JSON body of every non-2xx answer.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("handler: encode response", "error", err)
	}
}

// writeError maps a service error to its HTTP status and JSON body:
// validation → 422, not found → 404, backend failure → 502, backend
// unavailable → 503, everything else → 500 with a generic message.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: errorDetail{Code: "validation_error", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: errorDetail{Code: "not_found", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrBackendFailure):
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: errorDetail{Code: "backend_failure", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrBackendUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: errorDetail{Code: "backend_unavailable", Message: "no export backend is configured"},
		})
	default:
		slog.Error("handler: internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: errorDetail{Code: "internal_error", Message: "internal server error"},
		})
	}
}

// writeBadRequest answers a request rejected before reaching the service
// layer (e.g. a non-numeric query parameter).
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: errorDetail{Code: "bad_request", Message: message},
	})
}

// unwrapMessage strips the service-layer wrapping prefixes from a sentinel
// error so clients see the human-readable part only.
// e.g. "service.ExportService.ExportWeek: validation error: week 60 ..." →
// "week 60 ...".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, prefix := range []string{
		"service.ExportService.ExportWeek: ",
	} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	for _, prefix := range []string{
		"validation error: ",
		"not found: ",
		"export backend failure: ",
	} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return msg
}

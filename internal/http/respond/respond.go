// Package respond writes JSON bodies and maps service errors to status codes for the handlers.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/facturas/internal/auth"
	"github.com/MrJamesThe3rd/facturas/internal/blob"
	"github.com/MrJamesThe3rd/facturas/internal/importer"
	"github.com/MrJamesThe3rd/facturas/internal/income"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
	"github.com/MrJamesThe3rd/facturas/internal/money"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Name  string `json:"name,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// BadRequest answers 400 with a plain message.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

var badInput = []error{
	income.ErrInvalidPeriod,
	importer.ErrUnknownFormat,
	importer.ErrNoHeader,
	importer.ErrNoMovements,
	importer.ErrNotSpreadsheet,
	money.ErrInvalid,
}

// Error maps err to a status. Anything unrecognised is logged and hidden behind a 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var verr *invoice.ValidationError
	if errors.As(err, &verr) {
		JSON(w, http.StatusBadRequest, errorResponse{Error: verr.Reason, Field: verr.Field, Name: verr.Name})
		return
	}

	for _, target := range badInput {
		if errors.Is(err, target) {
			JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	switch {
	case errors.Is(err, invoice.ErrNotFound), errors.Is(err, blob.ErrNotFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		JSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

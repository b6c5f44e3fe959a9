// Package httpx provides JSON response helpers shared by all handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/policy"
	"github.com/diewo77/invoice-manager/internal/validation"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Error maps domain errors to HTTP responses:
// validation → 400, unauthenticated → 401, forbidden → 403, missing → 404,
// anything else → 500.
func Error(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
	case errors.Is(err, policy.ErrUnauthorized):
		JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, policy.ErrForbidden):
		JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, policy.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		JSONError(w, http.StatusNotFound, "not_found", nil)
	default:
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// Package respond holds the request decoding and response helpers shared by
// the API handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalid marks a request rejected before reaching a service.
var ErrInvalid = errors.New("invalid request")

// Decode reads a JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return nil
}

// Var validates a single value against tag.
func Var(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return nil
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Status maps an error to the HTTP status reported for it.
func Status(err error) int {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case backend.IsAuthError(err):
		return http.StatusUnauthorized
	case errors.Is(err, backend.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}

		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status it maps to. Server-side failures are logged.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "error", err)
	}

	http.Error(w, err.Error(), status)
}

package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotConfigured    = errors.New("backend not configured")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: %d %s: %s", e.Status, e.Code, e.Message)
	}

	return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
}

// JWT expired / missing codes returned by the REST layer.
var authCodes = map[string]bool{
	"PGRST301":                   true,
	"PGRST302":                   true,
	"PGRST303":                   true,
	"bad_jwt":                    true,
	"session_not_found":          true,
	"refresh_token_not_found":    true,
	"refresh_token_already_used": true,
}

// IsAuthError reports whether err means the session is missing or no longer valid.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.Status == http.StatusUnauthorized || authCodes[apiErr.Code]
}

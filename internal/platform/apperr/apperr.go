// Package apperr defines the error categories shared by the report source,
// the integration clients and the workflow orchestrator.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput marks a missing or empty identifier.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks an appointment or patient lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrIntegrationFailure marks a failed call to an external collaborator.
	ErrIntegrationFailure = errors.New("integration failure")
	// ErrConfiguration marks missing credentials at client construction.
	ErrConfiguration = errors.New("configuration error")
)

// HTTPStatus maps an error to the HTTP status the API responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIntegrationFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package core

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeUpstream indicates the catalog API returned a non-success
	// status or failed to respond (502)
	ErrorTypeUpstream ErrorType = "upstream_error"
	// ErrorTypeValidation indicates a client error (400)
	ErrorTypeValidation ErrorType = "validation_error"
)

// GatewayError is the base error type for all gateway errors. Only upstream
// and validation errors may change the response status code; every other
// failure mode degrades to a best-effort successful response.
type GatewayError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *GatewayError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to a JSON-compatible map
func (e *GatewayError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewUpstreamError creates an upstream error (502). upstreamStatus is the
// status code the catalog API answered with; message carries a short
// operator-facing diagnostic, never the raw upstream body.
func NewUpstreamError(upstreamStatus int, message string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeUpstream,
		Message:    fmt.Sprintf("catalog api status %d: %s", upstreamStatus, message),
		StatusCode: http.StatusBadGateway,
		Err:        err,
	}
}

// NewUpstreamFailure creates an upstream error for transport-level failures
// (timeout, connection refused) where no status code exists.
func NewUpstreamFailure(message string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeUpstream,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Err:        err,
	}
}

// NewValidationError creates a validation error (400)
func NewValidationError(message string) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

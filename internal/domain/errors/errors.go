package errors

import (
	"net/http"

	"roadnet/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Is matches any BaseError carrying the same error code, so that errors
// built with WithDetails still match the predefined values.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)

	return ok && t.errorCode == e.errorCode
}

// Predefined error types
var (
	// Query errors
	ErrInvalidQuery = NewBaseError(
		http.StatusBadRequest,
		"INVALID_QUERY",
		"The query is invalid",
		"",
	)

	ErrWaypointNotFound = NewBaseError(
		http.StatusNotFound,
		"WAYPOINT_NOT_FOUND",
		"No road node matches the waypoint",
		"",
	)

	ErrNoPath = NewBaseError(
		http.StatusUnprocessableEntity,
		"NO_PATH",
		"No path connects the waypoints",
		"",
	)

	// Service state errors
	ErrGraphNotLoaded = NewBaseError(
		http.StatusServiceUnavailable,
		"GRAPH_NOT_LOADED",
		"The road graph is not loaded",
		"",
	)

	ErrSensorStoreUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"SENSOR_STORE_UNAVAILABLE",
		"No sensor data store is configured",
		"",
	)

	// General errors
	ErrInternal = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// StoreError represents a sensor store failure, implementing the AppError interface
type StoreError struct {
	err     error
	details string
}

// NewStoreError creates a sensor-store-related error
func NewStoreError(err error, details string) AppError {
	return &StoreError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StoreError) Error() string {
	return errors.Wrap(e.err, "sensor store query failed").Error()
}

// Unwrap exposes the store's error
func (e *StoreError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *StoreError) HTTPCode() int {
	return http.StatusBadGateway
}

// ErrorCode returns the business error code
func (e *StoreError) ErrorCode() string {
	return "SENSOR_STORE_FAILED"
}

// Message returns the user-friendly error message
func (e *StoreError) Message() string {
	return "Sensor store query failed"
}

// Details returns detailed error information
func (e *StoreError) Details() string {
	return e.details
}

package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict")
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Domain errors. Each wraps one of the sentinels above so HTTPStatusFromError
// can map it without knowing about the domain.
var (
	ErrNoSeatsAvailable = fmt.Errorf("no seats available for this course offer: %w", ErrConflict)
	ErrAlreadyEnrolled  = fmt.Errorf("student is already enrolled in this course offer: %w", ErrConflict)
	ErrNotEnrolled      = fmt.Errorf("student is not enrolled in this course offer: %w", ErrNotFound)
	ErrAssignmentClosed = fmt.Errorf("homework assignment is closed for submissions: %w", ErrConflict)
	ErrEmailTaken       = fmt.Errorf("a user with this email already exists: %w", ErrConflict)
	ErrAlreadyAnswered  = fmt.Errorf("message already has a response: %w", ErrConflict)
	ErrInvalidGrade     = NewValidationError("grade must be between 0 and 100", FieldError{Field: "grade", Error: "out of range"})
	ErrMissingFile      = NewValidationError("file is required", FieldError{Field: "file", Error: "required"})
	ErrSeatsOutOfRange  = NewValidationError("seat count out of range", FieldError{Field: "addSeats", Error: "out of range"})
)

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError carries the offending fields of a rejected request.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func NewValidationError(msg string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

// MissingFields builds a validation error naming every absent field.
func MissingFields(fields ...string) *ValidationError {
	fe := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		fe = append(fe, FieldError{Field: f, Error: "required"})
	}
	return NewValidationError("missing required fields: "+strings.Join(fields, ", "), fe...)
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrValidation.Error()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrTooManyRequests) {
		return http.StatusTooManyRequests
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return http.StatusServiceUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return http.StatusConflict
		case "23503": // foreign_key_violation
			return http.StatusNotFound
		case "22003": // numeric_value_out_of_range
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

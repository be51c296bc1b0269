package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", fmt.Errorf("offer 3: %w", ErrNotFound), http.StatusNotFound},
		{"not enrolled", ErrNotEnrolled, http.StatusNotFound},
		{"no seats", ErrNoSeatsAvailable, http.StatusConflict},
		{"already enrolled", ErrAlreadyEnrolled, http.StatusConflict},
		{"closed", ErrAssignmentClosed, http.StatusConflict},
		{"invalid grade", ErrInvalidGrade, http.StatusBadRequest},
		{"missing file", ErrMissingFile, http.StatusBadRequest},
		{"missing fields", MissingFields("title"), http.StatusBadRequest},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"throttled", ErrTooManyRequests, http.StatusTooManyRequests},
		{"unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict},
		{"fk violation", &pgconn.PgError{Code: "23503"}, http.StatusNotFound},
		{"out of range", fmt.Errorf("update: %w", &pgconn.PgError{Code: "22003"}), http.StatusBadRequest},
		{"seats out of range", ErrSeatsOutOfRange, http.StatusBadRequest},
		{"other pg error", &pgconn.PgError{Code: "42P01"}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}

func TestMissingFields(t *testing.T) {
	err := MissingFields("title", "due_date")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "missing required fields: title, due_date", err.Error())
	assert.Equal(t, []FieldError{{Field: "title", Error: "required"}, {Field: "due_date", Error: "required"}}, err.Fields)
}

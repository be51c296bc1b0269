package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	StudentID int64    `json:"student_id" validate:"required,gt=0"`
	Grade     *float64 `json:"grade" validate:"required"`
}

func TestRespondWithErr(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithErr(rec, errors.New("pq: connection refused on 10.0.0.5"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")

	rec = httptest.NewRecorder()
	RespondWithErr(rec, ErrInvalidGrade)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, []FieldError{{Field: "grade", Error: "out of range"}}, env.Errors)
}

func TestRespondWithKey(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithKey(rec, http.StatusOK, "users", []string{"a"})
	assert.JSONEq(t, `{"success": true, "users": ["a"]}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"empty body", "", nil},
		{"unknown field", `{"student_id": 1, "grade": 5, "extra": true}`, nil},
		{"missing grade", `{"student_id": 1}`, []string{"grade"}},
		{"zero id", `{"student_id": 0, "grade": 5}`, []string{"student_id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(req, &p)
			require.ErrorIs(t, err, ErrValidation)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			var got []string
			for _, f := range vErr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"student_id": 4, "grade": 0}`))
	var p payload
	require.NoError(t, DecodeJSON(req, &p))
	assert.Equal(t, int64(4), p.StudentID)
	assert.Equal(t, 0.0, *p.Grade)
}

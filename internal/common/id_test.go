package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{in: `7`, want: 7},
		{in: `"7"`, want: 7},
		{in: `""`, want: 0},
		{in: `null`, want: 0},
		{in: `"abc"`, wantErr: true},
		{in: `7.5`, wantErr: true},
		{in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got struct {
				StudentID ID `json:"student_id"`
			}
			err := json.Unmarshal([]byte(`{"student_id":`+tt.in+`}`), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StudentID)
		})
	}
}

func TestID_Validate(t *testing.T) {
	type req struct {
		OfferID ID `json:"offer_id" validate:"required,gt=0"`
	}
	assert.NoError(t, Validate(req{OfferID: 3}))
	assert.ErrorIs(t, Validate(req{}), ErrValidation)
	assert.ErrorIs(t, Validate(req{OfferID: -1}), ErrValidation)
}

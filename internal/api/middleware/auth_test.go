package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/common/security"
	"coursehub/internal/domain/model"
)

func TestAuthenticatorAndRoles(t *testing.T) {
	tokens := security.NewTokenIssuer([]byte("secret"), time.Hour)
	var seen Identity
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := jwtauth.Verifier(tokens.Auth)(Authenticator(StaffOnly(final)))

	lecturer, err := tokens.GenerateToken(7, model.RoleLecturer)
	require.NoError(t, err)
	student, err := tokens.GenerateToken(8, model.RoleStudent)
	require.NoError(t, err)
	foreign, err := security.NewTokenIssuer([]byte("other"), time.Hour).GenerateToken(7, model.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong key", foreign, http.StatusUnauthorized},
		{"student", student, http.StatusForbidden},
		{"lecturer", lecturer, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Equal(t, Identity{UserID: 7, Role: model.RoleLecturer}, seen)
}

func TestIdentity_CanActFor(t *testing.T) {
	assert.True(t, Identity{UserID: 3, Role: model.RoleStudent}.CanActFor(3))
	assert.False(t, Identity{UserID: 3, Role: model.RoleStudent}.CanActFor(4))
	assert.True(t, Identity{UserID: 1, Role: model.RoleLecturer}.CanActFor(4))
	assert.True(t, Identity{UserID: 1, Role: model.RoleAdmin}.CanActFor(4))
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"coursehub/internal/common"
	"coursehub/internal/common/security"
	"coursehub/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const identityCtxKey contextKey = "identity"

// Identity is the caller named by a verified token.
type Identity struct {
	UserID int64
	Role   string
}

// CanActFor reports whether the caller may act on userID's behalf.
func (i Identity) CanActFor(userID int64) bool {
	return model.IsStaff(i.Role) || i.UserID == userID
}

// Authenticator rejects requests without a valid token. It must run after
// jwtauth.Verifier.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			if errors.Is(err, jwtauth.ErrNoTokenFound) {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}
		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		role, err := security.GetUserRoleFromClaims(claims)
		if err != nil || !model.ValidRole(role) {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: unknown role")
			return
		}

		ctx := WithIdentity(r.Context(), Identity{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits only callers holding one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			common.RespondWithError(w, http.StatusForbidden, common.ErrForbidden.Error())
		})
	}
}

func StaffOnly(next http.Handler) http.Handler {
	return RequireRole(model.RoleLecturer, model.RoleAdmin)(next)
}

func AdminOnly(next http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)(next)
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok
}

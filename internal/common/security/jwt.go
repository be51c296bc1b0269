package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and verifies the HS256 tokens handed out at login.
type TokenIssuer struct {
	Auth *jwtauth.JWTAuth
	exp  time.Duration
}

func NewTokenIssuer(secret []byte, exp time.Duration) *TokenIssuer {
	return &TokenIssuer{
		Auth: jwtauth.New("HS256", secret, nil),
		exp:  exp,
	}
}

func (t *TokenIssuer) GenerateToken(userID int64, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": strconv.FormatInt(userID, 10),
		"role":    role,
		"exp":     time.Now().Add(t.exp).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := t.Auth.Encode(claims)
	return tokenString, err
}

// Helper functions to extract claims, used by the auth middleware.
func GetUserIDFromClaims(claims map[string]interface{}) (int64, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return 0, errors.New("user_id claim is missing or not a string")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("user_id claim is not numeric")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims map[string]interface{}) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

package model

import (
	"time"
)

const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RoleAdmin    = "admin"
)

type User struct {
	ID             int64      `json:"id"`
	FullName       string     `json:"full_name"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"` // Not exposed
	Role           string     `json:"role"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	ImageURL       *string    `json:"image_url,omitempty"`
}

// UserSummary is the row shape of the user listings.
type UserSummary struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether role may act on other users' records.
func IsStaff(role string) bool {
	return role == RoleLecturer || role == RoleAdmin
}

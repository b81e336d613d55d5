package models

import (
	"strings"
	"time"
)

// Back-office roles. The core only ever checks membership against these
// three; anything else is rejected.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleStaff   = "STAFF"
)

// User represents a back-office user.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Actor is the acting user supplied with every mutating call: an id plus a
// role string. The role is trusted as-is; authentication happens upstream.
type Actor struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

// HasAnyRole reports whether the actor's role matches one of the given
// roles, case-insensitively.
func (a Actor) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if strings.EqualFold(a.Role, r) {
			return true
		}
	}
	return false
}

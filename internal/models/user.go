package models

import "time"

// UserRole represents the available roles for route authorisation.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleViewer UserRole = "VIEWER"
)

// User represents an account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

package models

import "time"

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	Role                string    `json:"role"`
	Verified            bool      `json:"verified"`
	AdminRequestPending bool      `json:"admin_request_pending"`
	IsDefaultAdmin      bool      `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

package models

import "time"

const (
	AdminRequestPending  = "pending"
	AdminRequestApproved = "approved"
)

// AdminRequest is a petition to elevate an email's account to the admin role.
type AdminRequest struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Message      string     `json:"message"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	Status       string     `json:"status"`
	RequestedAt  time.Time  `json:"requested_at"`
	ProcessedAt  *time.Time `json:"processed_at"`
	ProcessedBy  *string    `json:"processed_by"`
}

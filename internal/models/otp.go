package models

import "time"

// OTP is the single active one-time code for an email address.
type OTP struct {
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
}

// Expired reports whether the code is past its expiry at now.
func (o OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

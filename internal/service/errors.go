package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches every *InputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound means no OTP, pending request or user exists for the key.
	ErrNotFound = errors.New("not found")
	// ErrExpired means the OTP is past its expiry.
	ErrExpired = errors.New("otp expired")
	// ErrMismatch means the submitted OTP does not match the active code.
	ErrMismatch = errors.New("otp mismatch")
	// ErrEmailNotVerified means no verified OTP exists for the email.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrConflict is the parent of every uniqueness failure.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized means the caller may not perform the operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDeliveryFailure means the email transport failed; the OTP record is still persisted.
	ErrDeliveryFailure = errors.New("email delivery failed")
	// ErrInvalidCredentials means no account matches the identifier and password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPendingApproval blocks login for accounts whose admin request has not been approved.
	ErrPendingApproval = errors.New("admin request pending approval")
	// ErrRateLimited means the email spent its OTP budget for the current window.
	ErrRateLimited = errors.New("too many otp requests")
)

var (
	ErrAlreadyPending       = fmt.Errorf("%w: admin request already pending for this email", ErrConflict)
	ErrAccountExists        = fmt.Errorf("%w: username or email already exists", ErrConflict)
	ErrUsernameMatchesEmail = fmt.Errorf("%w: username should not match email name part", ErrConflict)
)

// InputError describes a request field that failed validation.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return e.Reason
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(reason string) error {
	return &InputError{Reason: reason}
}

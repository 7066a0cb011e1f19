package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/interview-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrPendingExists indicates the pending-only uniqueness rule on admin requests rejected an insert.
var ErrPendingExists = errors.New("pending admin request already exists")

// UserStore captures persistence operations on user credentials.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	// UsernameOrEmailTaken reports whether any user holds username or email.
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	// MarkAdminRequestPending flags the user as awaiting elevation and replaces its password hash.
	MarkAdminRequestPending(ctx context.Context, email, passwordHash string) error
	// PromoteToAdmin sets role=admin, verified=true and clears the pending flag.
	PromoteToAdmin(ctx context.Context, email string) error
	// ResetDefaultAdmin re-asserts the bootstrap account's role, verification and password hash.
	ResetDefaultAdmin(ctx context.Context, email, passwordHash string) error
}

// OTPStore keeps at most one code per email.
type OTPStore interface {
	UpsertOTP(ctx context.Context, otp models.OTP) error
	FindOTP(ctx context.Context, email string) (models.OTP, error)
	// MarkOTPVerified flags the record only while it still carries code; ErrNotFound otherwise.
	MarkOTPVerified(ctx context.Context, email, code string) error
	HasVerifiedOTP(ctx context.Context, email string) (bool, error)
	DeleteOTP(ctx context.Context, email string) error
}

// AdminRequestStore persists admin-access requests.
type AdminRequestStore interface {
	// InsertAdminRequest returns ErrPendingExists when email already has a pending request.
	InsertAdminRequest(ctx context.Context, req models.AdminRequest) (models.AdminRequest, error)
	FindPendingAdminRequest(ctx context.Context, email string) (models.AdminRequest, error)
	// ApprovePendingAdminRequest moves the pending request for email to approved; ErrNotFound when none is pending.
	ApprovePendingAdminRequest(ctx context.Context, email, processedBy string, processedAt time.Time) (models.AdminRequest, error)
	// ListPendingAdminRequests returns pending requests ordered by requested_at ascending.
	ListPendingAdminRequests(ctx context.Context) ([]models.AdminRequest, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	UserStore
	OTPStore
	AdminRequestStore
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/interview-be/internal/metrics"
	"github.com/hongminglow/interview-be/internal/models"
	"github.com/hongminglow/interview-be/internal/storage"
)

// PasswordHasher hashes and checks user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// SubmitAdminRequest is the petition a user files to become an admin.
type SubmitAdminRequest struct {
	Email    string
	Message  string
	FullName string
	Phone    string
	Password string
}

// AdminRequests runs the pending -> approved lifecycle of admin-access requests.
// Only the default admin may list or approve requests.
type AdminRequests struct {
	store        storage.Store
	otps         *OTPLedger
	hasher       PasswordHasher
	defaultAdmin string
	metrics      *metrics.Recorder
	logger       *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewAdminRequests wires the ledger. defaultAdminEmail identifies the only approver.
func NewAdminRequests(store storage.Store, otps *OTPLedger, hasher PasswordHasher, defaultAdminEmail string, rec *metrics.Recorder, logger *slog.Logger) *AdminRequests {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminRequests{
		store:        store,
		otps:         otps,
		hasher:       hasher,
		defaultAdmin: strings.ToLower(strings.TrimSpace(defaultAdminEmail)),
		metrics:      rec,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// IsDefaultAdmin reports whether identity is the distinguished approver.
func (a *AdminRequests) IsDefaultAdmin(identity string) bool {
	return a.defaultAdmin != "" && strings.EqualFold(strings.TrimSpace(identity), a.defaultAdmin)
}

// Submit files a pending request for an email that has proven mailbox ownership.
func (a *AdminRequests) Submit(ctx context.Context, in SubmitAdminRequest) (models.AdminRequest, error) {
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return models.AdminRequest{}, err
	}
	if strings.TrimSpace(in.FullName) == "" {
		return models.AdminRequest{}, invalid("full name is required")
	}
	if err := validatePassword(in.Password); err != nil {
		return models.AdminRequest{}, err
	}

	verified, err := a.otps.IsVerified(ctx, email)
	if err != nil {
		return models.AdminRequest{}, err
	}
	if !verified {
		a.metrics.AdminRequest("email_not_verified")
		return models.AdminRequest{}, ErrEmailNotVerified
	}

	if pending, err := a.HasPending(ctx, email); err != nil {
		return models.AdminRequest{}, err
	} else if pending {
		a.metrics.AdminRequest("already_pending")
		return models.AdminRequest{}, ErrAlreadyPending
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return models.AdminRequest{}, fmt.Errorf("hash password: %w", err)
	}

	req := models.AdminRequest{
		ID:           a.newID(),
		Email:        email,
		Message:      strings.TrimSpace(in.Message),
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Status:       models.AdminRequestPending,
		RequestedAt:  a.now().UTC(),
	}
	// the pending index decides the winner before any account is touched
	created, err := a.store.InsertAdminRequest(ctx, req)
	if err != nil {
		if errors.Is(err, storage.ErrPendingExists) {
			a.metrics.AdminRequest("already_pending")
			return models.AdminRequest{}, ErrAlreadyPending
		}
		return models.AdminRequest{}, fmt.Errorf("insert admin request: %w", err)
	}

	if err := a.markUserPending(ctx, email, created.FullName, hash); err != nil {
		// Approve recreates a missing account from the stored request
		a.logger.ErrorContext(ctx, "admin request stored but account not flagged", "email", email, "request_id", created.ID, "error", err)
		return created, err
	}

	a.metrics.AdminRequest("ok")
	a.logger.InfoContext(ctx, "admin request submitted", "email", email, "request_id", created.ID)
	return created, nil
}

func (a *AdminRequests) markUserPending(ctx context.Context, email, fullName, hash string) error {
	err := a.store.MarkAdminRequestPending(ctx, email, hash)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("mark user pending: %w", err)
	}

	username, err := availableUsername(ctx, a.store, fullName, email)
	if err != nil {
		return err
	}
	_, err = a.store.CreateUser(ctx, models.User{
		Username:            username,
		Email:               email,
		PasswordHash:        hash,
		Role:                models.RoleUser,
		AdminRequestPending: true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			// lost a race on username or email; the email path is safe to retry as an update
			if retryErr := a.store.MarkAdminRequestPending(ctx, email, hash); retryErr == nil {
				return nil
			}
			return ErrAccountExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Approve elevates the account behind the pending request for email and closes the request.
func (a *AdminRequests) Approve(ctx context.Context, email, approver string) (models.AdminRequest, error) {
	if !a.IsDefaultAdmin(approver) {
		a.metrics.AdminApproval("unauthorized")
		return models.AdminRequest{}, ErrUnauthorized
	}
	email, err := NormalizeEmail(email)
	if err != nil {
		return models.AdminRequest{}, err
	}

	pending, err := a.store.FindPendingAdminRequest(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.metrics.AdminApproval("not_found")
			return models.AdminRequest{}, ErrNotFound
		}
		return models.AdminRequest{}, fmt.Errorf("find admin request: %w", err)
	}

	if err := a.elevate(ctx, pending); err != nil {
		return models.AdminRequest{}, err
	}

	approved, err := a.store.ApprovePendingAdminRequest(ctx, email, a.defaultAdmin, a.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.metrics.AdminApproval("not_found")
			return models.AdminRequest{}, ErrNotFound
		}
		// account is already elevated; retrying Approve closes the request
		a.metrics.AdminApproval("error")
		a.logger.ErrorContext(ctx, "user elevated but admin request left pending", "email", email, "request_id", pending.ID, "error", err)
		return models.AdminRequest{}, fmt.Errorf("approve admin request: %w", err)
	}

	a.metrics.AdminApproval("ok")
	a.logger.InfoContext(ctx, "admin request approved", "email", email, "request_id", approved.ID, "processed_by", a.defaultAdmin)
	return approved, nil
}

func (a *AdminRequests) elevate(ctx context.Context, req models.AdminRequest) error {
	err := a.store.PromoteToAdmin(ctx, req.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("promote user: %w", err)
	}

	// account removed since submission: recreate it from the request
	username, err := availableUsername(ctx, a.store, req.FullName, req.Email)
	if err != nil {
		return err
	}
	_, err = a.store.CreateUser(ctx, models.User{
		Username:     username,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Role:         models.RoleAdmin,
		Verified:     true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return a.store.PromoteToAdmin(ctx, req.Email)
		}
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}

// ListPending returns every pending request, oldest first.
func (a *AdminRequests) ListPending(ctx context.Context, requester string) ([]models.AdminRequest, error) {
	if !a.IsDefaultAdmin(requester) {
		return nil, ErrUnauthorized
	}
	out, err := a.store.ListPendingAdminRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admin requests: %w", err)
	}
	return out, nil
}

// HasPending reports whether email has a request awaiting approval.
func (a *AdminRequests) HasPending(ctx context.Context, email string) (bool, error) {
	_, err := a.store.FindPendingAdminRequest(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("find admin request: %w", err)
}

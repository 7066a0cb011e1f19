package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hongminglow/interview-be/internal/metrics"
	"github.com/hongminglow/interview-be/internal/models"
	"github.com/hongminglow/interview-be/internal/storage"
)

const defaultAdminUsername = "admin"

// SignupInput carries the self-service registration form.
type SignupInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Accounts owns signup, login and the default admin bootstrap.
type Accounts struct {
	users   storage.UserStore
	otps    *OTPLedger
	hasher  PasswordHasher
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewAccounts wires the account workflows over users and the OTP ledger.
func NewAccounts(users storage.UserStore, otps *OTPLedger, hasher PasswordHasher, rec *metrics.Recorder, logger *slog.Logger) *Accounts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Accounts{users: users, otps: otps, hasher: hasher, metrics: rec, logger: logger}
}

// Signup creates a role=user account for an email with a verified OTP, then consumes the OTP.
func (a *Accounts) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := validateUsername(username); err != nil {
		return models.User{}, err
	}
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return models.User{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return models.User{}, err
	}
	if in.Password != in.ConfirmPassword {
		return models.User{}, invalid("passwords do not match")
	}
	if strings.EqualFold(username, localPart(email)) {
		a.metrics.Signup("conflict")
		return models.User{}, ErrUsernameMatchesEmail
	}

	taken, err := a.users.UsernameOrEmailTaken(ctx, username, email)
	if err != nil {
		return models.User{}, fmt.Errorf("check user: %w", err)
	}
	if taken {
		a.metrics.Signup("conflict")
		return models.User{}, ErrAccountExists
	}

	verified, err := a.otps.IsVerified(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if !verified {
		a.metrics.Signup("email_not_verified")
		return models.User{}, ErrEmailNotVerified
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	created, err := a.users.CreateUser(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			a.metrics.Signup("conflict")
			return models.User{}, ErrAccountExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	if err := a.otps.Consume(ctx, email); err != nil {
		return created, err
	}

	a.metrics.Signup("ok")
	a.logger.InfoContext(ctx, "user signed up", "username", created.Username, "email", created.Email)
	return created, nil
}

// Login authenticates identifier (username or email) and password.
// Accounts awaiting admin approval are refused with ErrPendingApproval.
func (a *Accounts) Login(ctx context.Context, identifier, password string) (models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return models.User{}, invalid("identifier and password are required")
	}
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}

	user, err := a.users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if !a.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	if user.AdminRequestPending {
		return models.User{}, ErrPendingApproval
	}
	return user, nil
}

// EnsureDefaultAdmin creates the bootstrap admin or re-asserts its role,
// verification and password on every start.
func (a *Accounts) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	if password == "" {
		return invalid("default admin password is required")
	}
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = a.users.ResetDefaultAdmin(ctx, email, hash)
	if err == nil {
		a.logger.InfoContext(ctx, "default admin updated", "email", email)
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("update default admin: %w", err)
	}

	username, err := availableUsername(ctx, a.users, defaultAdminUsername, email)
	if err != nil {
		return err
	}
	created, err := a.users.CreateUser(ctx, models.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		Role:           models.RoleAdmin,
		Verified:       true,
		IsDefaultAdmin: true,
	})
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	a.logger.InfoContext(ctx, "default admin created", "email", email, "username", created.Username)
	return nil
}

// EmailExists reports whether any account uses email.
func (a *Accounts) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, invalid("email is required")
	}
	_, err := a.users.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("find user: %w", err)
}

// Profile returns the account for username.
func (a *Accounts) Profile(ctx context.Context, username string) (models.User, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

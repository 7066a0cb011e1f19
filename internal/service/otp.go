package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/hongminglow/interview-be/internal/mail"
	"github.com/hongminglow/interview-be/internal/metrics"
	"github.com/hongminglow/interview-be/internal/models"
	"github.com/hongminglow/interview-be/internal/ratelimit"
	"github.com/hongminglow/interview-be/internal/storage"
)

const (
	DefaultOTPTTL    = 5 * time.Minute
	DefaultOTPLength = 6

	otpSubject = "Your Verification OTP"
)

// OTPLimiter throttles OTP issuance per email.
type OTPLimiter interface {
	AllowOTP(ctx context.Context, email string) error
}

// OTPLedgerOptions tunes an OTPLedger. Zero values fall back to defaults.
type OTPLedgerOptions struct {
	TTL     time.Duration
	Length  int
	Limiter OTPLimiter
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// OTPLedger issues and verifies the single active one-time code per email.
type OTPLedger struct {
	store   storage.OTPStore
	sender  mail.Sender
	limiter OTPLimiter
	metrics *metrics.Recorder
	logger  *slog.Logger
	ttl     time.Duration
	length  int

	now      func() time.Time
	generate func(length int) (string, error)
}

// NewOTPLedger wires a ledger over store that notifies through sender.
func NewOTPLedger(store storage.OTPStore, sender mail.Sender, opts OTPLedgerOptions) *OTPLedger {
	l := &OTPLedger{
		store:    store,
		sender:   sender,
		limiter:  opts.Limiter,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		ttl:      opts.TTL,
		length:   opts.Length,
		now:      time.Now,
		generate: randomDigits,
	}
	if l.ttl <= 0 {
		l.ttl = DefaultOTPTTL
	}
	if l.length <= 0 {
		l.length = DefaultOTPLength
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Issue replaces any existing code for email with a fresh one and mails it.
// A delivery failure is reported as ErrDeliveryFailure after the record is stored.
func (l *OTPLedger) Issue(ctx context.Context, email string) (string, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}

	if l.limiter != nil {
		if err := l.limiter.AllowOTP(ctx, email); err != nil {
			if errors.Is(err, ratelimit.ErrRateLimited) {
				l.metrics.OTPIssued("rate_limited")
				return "", ErrRateLimited
			}
			// fail open: issuance does not depend on the limiter backend
			l.logger.WarnContext(ctx, "otp limiter unavailable", "email", email, "error", err)
		}
	}

	code, err := l.generate(l.length)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	record := models.OTP{
		Email:     email,
		Code:      code,
		ExpiresAt: l.now().UTC().Add(l.ttl),
		Verified:  false,
	}
	if err := l.store.UpsertOTP(ctx, record); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	body := fmt.Sprintf("Your OTP code is: %s\nThis code will expire in %s.", code, humanDuration(l.ttl))
	if err := l.sender.Send(ctx, email, otpSubject, body); err != nil {
		l.metrics.OTPIssued("delivery_failure")
		l.logger.ErrorContext(ctx, "otp delivery failed", "email", email, "error", err)
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}

	l.metrics.OTPIssued("ok")
	l.logger.InfoContext(ctx, "otp issued", "email", email, "expires_at", record.ExpiresAt)
	return code, nil
}

// Verify checks code against the active record for email and marks it verified.
// The record is left in place for the consuming workflow.
func (l *OTPLedger) Verify(ctx context.Context, email, code string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)

	record, err := l.store.FindOTP(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			l.metrics.OTPVerified("not_found")
			return ErrNotFound
		}
		return fmt.Errorf("find otp: %w", err)
	}
	if record.Expired(l.now()) {
		l.metrics.OTPVerified("expired")
		return ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		l.metrics.OTPVerified("mismatch")
		return ErrMismatch
	}

	if err := l.store.MarkOTPVerified(ctx, email, record.Code); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// replaced by a concurrent Issue between read and update
			l.metrics.OTPVerified("mismatch")
			return ErrMismatch
		}
		return fmt.Errorf("mark otp verified: %w", err)
	}
	l.metrics.OTPVerified("ok")
	return nil
}

// IsVerified reports whether email holds a verified code. The flag does not expire.
func (l *OTPLedger) IsVerified(ctx context.Context, email string) (bool, error) {
	ok, err := l.store.HasVerifiedOTP(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check otp: %w", err)
	}
	return ok, nil
}

// Consume deletes the record for email once a workflow has used it.
func (l *OTPLedger) Consume(ctx context.Context, email string) error {
	if err := l.store.DeleteOTP(ctx, email); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

func randomDigits(length int) (string, error) {
	ten := big.NewInt(10)
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return d.String()
}

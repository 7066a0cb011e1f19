package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/interview-be/internal/models"
	"github.com/hongminglow/interview-be/internal/storage"
)

// UpsertOTP replaces any previous code for the email.
func (s *Store) UpsertOTP(ctx context.Context, otp models.OTP) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO otps (email, code, expires_at, verified)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, verified = EXCLUDED.verified`,
		otp.Email, otp.Code, otp.ExpiresAt, otp.Verified)
	return err
}

func (s *Store) FindOTP(ctx context.Context, email string) (models.OTP, error) {
	var otp models.OTP
	err := s.pool.QueryRow(ctx,
		`SELECT email, code, expires_at, verified FROM otps WHERE email = $1`, email).
		Scan(&otp.Email, &otp.Code, &otp.ExpiresAt, &otp.Verified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.OTP{}, storage.ErrNotFound
		}
		return models.OTP{}, err
	}
	return otp, nil
}

func (s *Store) MarkOTPVerified(ctx context.Context, email, code string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE otps SET verified = TRUE WHERE email = $1 AND code = $2`, email, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) HasVerifiedOTP(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM otps WHERE email = $1 AND verified = TRUE)`, email).Scan(&ok)
	return ok, err
}

func (s *Store) DeleteOTP(ctx context.Context, email string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM otps WHERE email = $1`, email)
	return err
}

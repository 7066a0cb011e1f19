package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/interview-be/internal/models"
	"github.com/hongminglow/interview-be/internal/storage"
)

const adminRequestColumns = `id, email, message, full_name, phone, password_hash, status, requested_at, processed_at, processed_by`

// InsertAdminRequest relies on admin_requests_pending_email_idx to reject a second pending row.
func (s *Store) InsertAdminRequest(ctx context.Context, req models.AdminRequest) (models.AdminRequest, error) {
	const query = `
		INSERT INTO admin_requests (id, email, message, full_name, phone, password_hash, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + adminRequestColumns
	row := s.pool.QueryRow(ctx, query,
		req.ID, req.Email, req.Message, req.FullName, req.Phone, req.PasswordHash, req.Status, req.RequestedAt)
	created, err := scanAdminRequest(row)
	if err != nil {
		return models.AdminRequest{}, translateWriteErr(err)
	}
	return created, nil
}

func (s *Store) FindPendingAdminRequest(ctx context.Context, email string) (models.AdminRequest, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+adminRequestColumns+` FROM admin_requests WHERE email = $1 AND status = 'pending'`, email)
	return scanAdminRequest(row)
}

func (s *Store) ApprovePendingAdminRequest(ctx context.Context, email, processedBy string, processedAt time.Time) (models.AdminRequest, error) {
	const query = `
		UPDATE admin_requests
		SET status = 'approved', processed_at = $3, processed_by = $2
		WHERE email = $1 AND status = 'pending'
		RETURNING ` + adminRequestColumns
	return scanAdminRequest(s.pool.QueryRow(ctx, query, email, processedBy, processedAt))
}

func (s *Store) ListPendingAdminRequests(ctx context.Context) ([]models.AdminRequest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+adminRequestColumns+` FROM admin_requests WHERE status = 'pending' ORDER BY requested_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AdminRequest{}
	for rows.Next() {
		req, err := scanAdminRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanAdminRequest(row pgx.Row) (models.AdminRequest, error) {
	var req models.AdminRequest
	if err := row.Scan(&req.ID, &req.Email, &req.Message, &req.FullName, &req.Phone, &req.PasswordHash,
		&req.Status, &req.RequestedAt, &req.ProcessedAt, &req.ProcessedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AdminRequest{}, storage.ErrNotFound
		}
		return models.AdminRequest{}, err
	}
	return req, nil
}

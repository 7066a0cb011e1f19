// Package memory is an in-process storage.Store that enforces the same
// uniqueness rules as the Postgres schema.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/interview-be/internal/models"
	"github.com/hongminglow/interview-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	users    []models.User
	otps     map[string]models.OTP
	requests []models.AdminRequest
}

func NewStore() *Store {
	return &Store{otps: make(map[string]models.OTP)}
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	if !models.ValidRole(user.Role) {
		return models.User{}, fmt.Errorf("invalid role %q", user.Role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users = append(s.users, user)
	return user, nil
}

func (s *Store) FindByUsername(_ context.Context, username string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *Store) FindByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == identifier || u.Email == identifier })
}

func (s *Store) UsernameOrEmailTaken(_ context.Context, username, email string) (bool, error) {
	_, err := s.findUser(func(u models.User) bool { return u.Username == username || u.Email == email })
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) MarkAdminRequestPending(_ context.Context, email, passwordHash string) error {
	return s.updateUser(email, func(u *models.User) {
		u.AdminRequestPending = true
		u.PasswordHash = passwordHash
	})
}

func (s *Store) PromoteToAdmin(_ context.Context, email string) error {
	return s.updateUser(email, func(u *models.User) {
		u.Role = models.RoleAdmin
		u.Verified = true
		u.AdminRequestPending = false
	})
}

func (s *Store) ResetDefaultAdmin(_ context.Context, email, passwordHash string) error {
	return s.updateUser(email, func(u *models.User) {
		u.Role = models.RoleAdmin
		u.Verified = true
		u.IsDefaultAdmin = true
		u.AdminRequestPending = false
		u.PasswordHash = passwordHash
	})
}

func (s *Store) findUser(match func(models.User) bool) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) updateUser(email string, mutate func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			mutate(&s.users[i])
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) UpsertOTP(_ context.Context, otp models.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[otp.Email] = otp
	return nil
}

func (s *Store) FindOTP(_ context.Context, email string) (models.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	otp, ok := s.otps[email]
	if !ok {
		return models.OTP{}, storage.ErrNotFound
	}
	return otp, nil
}

func (s *Store) MarkOTPVerified(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	otp, ok := s.otps[email]
	if !ok || otp.Code != code {
		return storage.ErrNotFound
	}
	otp.Verified = true
	s.otps[email] = otp
	return nil
}

func (s *Store) HasVerifiedOTP(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	otp, ok := s.otps[email]
	return ok && otp.Verified, nil
}

func (s *Store) DeleteOTP(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.otps, email)
	return nil
}

func (s *Store) InsertAdminRequest(_ context.Context, req models.AdminRequest) (models.AdminRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Status == models.AdminRequestPending {
		for _, existing := range s.requests {
			if existing.Email == req.Email && existing.Status == models.AdminRequestPending {
				return models.AdminRequest{}, storage.ErrPendingExists
			}
		}
	}
	for _, existing := range s.requests {
		if existing.ID == req.ID {
			return models.AdminRequest{}, storage.ErrAlreadyExists
		}
	}
	s.requests = append(s.requests, req)
	return req, nil
}

func (s *Store) FindPendingAdminRequest(_ context.Context, email string) (models.AdminRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.Email == email && req.Status == models.AdminRequestPending {
			return req, nil
		}
	}
	return models.AdminRequest{}, storage.ErrNotFound
}

func (s *Store) ApprovePendingAdminRequest(_ context.Context, email, processedBy string, processedAt time.Time) (models.AdminRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.requests {
		req := &s.requests[i]
		if req.Email == email && req.Status == models.AdminRequestPending {
			at := processedAt
			by := processedBy
			req.Status = models.AdminRequestApproved
			req.ProcessedAt = &at
			req.ProcessedBy = &by
			return *req, nil
		}
	}
	return models.AdminRequest{}, storage.ErrNotFound
}

func (s *Store) ListPendingAdminRequests(_ context.Context) ([]models.AdminRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.AdminRequest{}
	for _, req := range s.requests {
		if req.Status == models.AdminRequestPending {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

// AdminRequests returns every stored request for email, in insertion order.
func (s *Store) AdminRequests(email string) []models.AdminRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AdminRequest
	for _, req := range s.requests {
		if strings.EqualFold(req.Email, email) {
			out = append(out, req)
		}
	}
	return out
}

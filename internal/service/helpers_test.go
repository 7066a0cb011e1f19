package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/interview-be/internal/storage/memory"
)

const defaultAdminEmail = "root@example.com"

type sentMail struct {
	To, Subject, Body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Verify(password, hash string) bool   { return hash == "hashed:"+password }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store    *memory.Store
	sender   *fakeSender
	clock    *fakeClock
	otps     *OTPLedger
	requests *AdminRequests
	accounts *Accounts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		store:  memory.NewStore(),
		sender: &fakeSender{},
		clock:  &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.otps = NewOTPLedger(f.store, f.sender, OTPLedgerOptions{Logger: logger})
	f.otps.now = f.clock.Now
	f.requests = NewAdminRequests(f.store, f.otps, plainHasher{}, defaultAdminEmail, nil, logger)
	f.requests.now = f.clock.Now
	f.accounts = NewAccounts(f.store, f.otps, plainHasher{}, nil, logger)
	return f
}

// verifyEmail runs the issue -> verify journey for email.
func (f *fixture) verifyEmail(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	code, err := f.otps.Issue(ctx, email)
	require.NoError(t, err)
	require.NoError(t, f.otps.Verify(ctx, email, code))
}

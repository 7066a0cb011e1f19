package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/interview-be/internal/auth"
	"github.com/hongminglow/interview-be/internal/middleware"
	"github.com/hongminglow/interview-be/internal/service"
	"github.com/hongminglow/interview-be/internal/storage/postgres"
)

// TestAuthIntegration runs the OTP -> signup -> token journey against a live Postgres.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL)
	require.NoError(t, err, "init store")
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	box := &inbox{codes: map[string]string{}}
	hasher := auth.NewBcryptHasher()
	otps := service.NewOTPLedger(store, box, service.OTPLedgerOptions{Logger: logger})
	accounts := service.NewAccounts(store, otps, hasher, nil, logger)
	tokens := auth.NewTokenManager("integration-secret", "integration", time.Hour)

	r := chi.NewRouter()
	NewHealthHandler(time.Now(), store).Register(r)
	NewAuthHandler(otps, accounts, tokens, logger).Register(r, middleware.Authenticate(tokens))
	ts := httptest.NewServer(r)
	defer ts.Close()
	api := &testAPI{t: t, server: ts, inbox: box}

	resp, env := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"database":"ok"`)

	suffix := time.Now().UnixNano()
	username := "apitest" + lettersFor(suffix)
	email := fmt.Sprintf("apitest_%d@example.com", suffix)
	password := fmt.Sprintf("Pass!%d", suffix)

	api.verify(email)
	resp, _ = api.do(http.MethodPost, "/signup", "", map[string]string{
		"username": username, "email": email, "password": password, "confirmPassword": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, tok := api.login(username, password)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, strings.TrimSpace(tok.AccessToken))
	assert.Equal(t, email, tok.Email)

	t.Logf("created user %s and successfully logged in via /token", username)
}

// lettersFor renders n in base 26 so generated usernames stay alphabetic.
func lettersFor(n int64) string {
	var b strings.Builder
	for n > 0 {
		b.WriteByte(byte('a' + n%26))
		n /= 26
	}
	return b.String()
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}

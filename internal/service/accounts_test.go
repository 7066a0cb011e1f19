package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/interview-be/internal/models"
)

func signupInput(username, email string) SignupInput {
	return SignupInput{Username: username, Email: email, Password: "p4ssword!", ConfirmPassword: "p4ssword!"}
}

func TestSignupAfterVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifyEmail(t, "a@x.com")

	user, err := f.accounts.Signup(ctx, signupInput("alice", "a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.AdminRequestPending)

	_, err = f.store.FindOTP(ctx, "a@x.com")
	assert.Error(t, err, "otp is consumed by signup")

	logged, err := f.accounts.Login(ctx, "alice", "p4ssword!")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", logged.Email)

	logged, err = f.accounts.Login(ctx, "A@X.com", "p4ssword!")
	require.NoError(t, err)
	assert.Equal(t, "alice", logged.Username)
}

func TestSignupRequiresVerifiedEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.accounts.Signup(context.Background(), signupInput("alice", "a@x.com"))
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestSignupRejectsUsernameMatchingLocalPart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.Signup(ctx, signupInput("Alice", "alice@x.com"))
	assert.ErrorIs(t, err, ErrUsernameMatchesEmail)

	f.verifyEmail(t, "alice@x.com")
	_, err = f.accounts.Signup(ctx, signupInput("alice", "alice@x.com"))
	assert.ErrorIs(t, err, ErrUsernameMatchesEmail)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]SignupInput{
		"short username":    signupInput("al", "a@x.com"),
		"non alpha":         signupInput("alice1", "a@x.com"),
		"bad email":         signupInput("alice", "a@x"),
		"short password":    {Username: "alice", Email: "a@x.com", Password: "short", ConfirmPassword: "short"},
		"password mismatch": {Username: "alice", Email: "a@x.com", Password: "p4ssword!", ConfirmPassword: "other-pass"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.accounts.Signup(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSignupDuplicateAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifyEmail(t, "a@x.com")
	_, err := f.accounts.Signup(ctx, signupInput("alice", "a@x.com"))
	require.NoError(t, err)

	f.verifyEmail(t, "other@x.com")
	_, err = f.accounts.Signup(ctx, signupInput("alice", "other@x.com"))
	assert.ErrorIs(t, err, ErrAccountExists)

	f.verifyEmail(t, "a@x.com")
	_, err = f.accounts.Signup(ctx, signupInput("alicia", "a@x.com"))
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifyEmail(t, "a@x.com")
	_, err := f.accounts.Signup(ctx, signupInput("alice", "a@x.com"))
	require.NoError(t, err)

	_, err = f.accounts.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.accounts.Login(ctx, "nobody", "p4ssword!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.accounts.Login(ctx, "", "p4ssword!")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdminRequestJourney(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.accounts.EnsureDefaultAdmin(ctx, defaultAdminEmail, "root-password"))

	f.verifyEmail(t, "b@x.com")
	_, err := f.requests.Submit(ctx, submission("b@x.com"))
	require.NoError(t, err)

	_, err = f.accounts.Login(ctx, "b@x.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrPendingApproval)

	_, err = f.requests.Approve(ctx, "b@x.com", defaultAdminEmail)
	require.NoError(t, err)

	user, err := f.accounts.Login(ctx, "b@x.com", "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

func TestEnsureDefaultAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.accounts.EnsureDefaultAdmin(ctx, defaultAdminEmail, "first-password"))
	require.NoError(t, f.accounts.EnsureDefaultAdmin(ctx, defaultAdminEmail, "second-password"))

	user, err := f.store.FindByEmail(ctx, defaultAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, user.Verified)
	assert.True(t, user.IsDefaultAdmin)

	_, err = f.accounts.Login(ctx, "admin", "first-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.accounts.Login(ctx, "admin", "second-password")
	assert.NoError(t, err)
}

func TestEnsureDefaultAdminAvoidsLocalPartUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.accounts.EnsureDefaultAdmin(ctx, "admin@example.com", "root-password"))
	user, err := f.store.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admina", user.Username)
}

func TestEmailExistsAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifyEmail(t, "a@x.com")
	_, err := f.accounts.Signup(ctx, signupInput("alice", "a@x.com"))
	require.NoError(t, err)

	ok, err := f.accounts.EmailExists(ctx, "A@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.accounts.EmailExists(ctx, "z@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	user, err := f.accounts.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	_, err = f.accounts.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hongminglow/interview-be/internal/storage"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lowercases email and checks its format.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email is required")
	}
	if !emailPattern.MatchString(email) {
		return "", invalid("invalid email format")
	}
	return email, nil
}

func validateUsername(username string) error {
	if utf8.RuneCountInString(username) < minUsernameLength {
		return invalid("username must be at least 3 characters long")
	}
	for _, r := range username {
		if !unicode.IsLetter(r) {
			return invalid("username must contain only alphabets")
		}
	}
	return nil
}

func validatePassword(password string) error {
	if len(strings.TrimSpace(password)) < minPasswordLength || !utf8.ValidString(password) {
		return invalid("password must be at least 8 characters")
	}
	return nil
}

// localPart returns the portion of a normalized email before '@'.
func localPart(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// availableUsername picks an unused alphabetic username derived from base that
// differs from the email's local part, appending letters on collision.
func availableUsername(ctx context.Context, users storage.UserStore, base, email string) (string, error) {
	base = lettersOnly(base)
	if utf8.RuneCountInString(base) < minUsernameLength {
		base = "user" + base
	}
	local := localPart(email)

	candidates := []string{base}
	for suffix := 'a'; suffix <= 'z'; suffix++ {
		candidates = append(candidates, base+string(suffix))
	}
	for _, candidate := range candidates {
		if strings.EqualFold(candidate, local) {
			continue
		}
		_, err := users.FindByUsername(ctx, candidate)
		if errors.Is(err, storage.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrAccountExists
}

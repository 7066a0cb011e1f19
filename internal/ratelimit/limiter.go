// Package ratelimit throttles OTP issuance per email with Redis counters.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is returned once a key exceeds its budget for the current window.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnavailable wraps Redis failures.
	ErrUnavailable = errors.New("rate limiter unavailable")
)

// Config holds the fixed-window budget.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// Limiter enforces a fixed window of MaxRequests per key.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{redis: redisClient, config: cfg}
}

// AllowOTP records one OTP request for email and fails once the window budget is spent.
func (l *Limiter) AllowOTP(ctx context.Context, email string) error {
	if l == nil || l.config.MaxRequests <= 0 {
		return nil
	}
	key := otpRequestKey(email)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	if count > int64(l.config.MaxRequests) {
		return ErrRateLimited
	}
	return nil
}

func otpRequestKey(email string) string {
	return "otp:req:" + strings.ToLower(email)
}

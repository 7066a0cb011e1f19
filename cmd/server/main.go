package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hongminglow/interview-be/internal/auth"
	"github.com/hongminglow/interview-be/internal/config"
	"github.com/hongminglow/interview-be/internal/mail"
	"github.com/hongminglow/interview-be/internal/metrics"
	"github.com/hongminglow/interview-be/internal/ratelimit"
	"github.com/hongminglow/interview-be/internal/server"
	"github.com/hongminglow/interview-be/internal/service"
	"github.com/hongminglow/interview-be/internal/storage/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	loadLocalEnv(logger)

	cfg, err := config.Load()
	if err != nil {
		fatal(logger, "load config", err)
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "init database", err)
	}
	defer store.Close()

	sender, err := mail.NewSMTPSender(cfg.SMTP)
	if err != nil {
		fatal(logger, "init mailer", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	otpOpts := service.OTPLedgerOptions{
		TTL:     cfg.OTPTTL,
		Length:  cfg.OTPLength,
		Metrics: recorder,
		Logger:  logger,
	}
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			fatal(logger, "parse REDIS_URL", err)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		otpOpts.Limiter = ratelimit.New(redisClient, ratelimit.Config{
			MaxRequests: cfg.OTPMaxRequests,
			Window:      cfg.OTPRequestWindow,
		})
		logger.Info("otp rate limiting enabled", "max_requests", cfg.OTPMaxRequests, "window", cfg.OTPRequestWindow)
	}

	hasher := auth.NewBcryptHasher()
	otps := service.NewOTPLedger(store, sender, otpOpts)
	accounts := service.NewAccounts(store, otps, hasher, recorder, logger)
	adminRequests := service.NewAdminRequests(store, otps, hasher, cfg.DefaultAdminEmail, recorder, logger)

	if cfg.DefaultAdminEmail != "" {
		if err := accounts.EnsureDefaultAdmin(ctx, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword); err != nil {
			fatal(logger, "bootstrap default admin", err)
		}
	} else {
		logger.Warn("DEFAULT_ADMIN_EMAIL not set; admin requests cannot be approved")
	}

	srv := server.New(cfg, server.Deps{
		Logger:        logger,
		Tokens:        auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		OTPs:          otps,
		Accounts:      accounts,
		AdminRequests: adminRequests,
		DB:            store,
		Gatherer:      registry,
	})

	go func() {
		logger.Info("interview backend listening", "addr", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "http server error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", "error", err)
	}
}

func loadLocalEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found; relying on existing environment")
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

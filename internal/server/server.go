package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/interview-be/internal/auth"
	"github.com/hongminglow/interview-be/internal/config"
	"github.com/hongminglow/interview-be/internal/http/handlers"
	"github.com/hongminglow/interview-be/internal/middleware"
	"github.com/hongminglow/interview-be/internal/service"
)

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	Logger        *slog.Logger
	Tokens        *auth.TokenManager
	OTPs          *service.OTPLedger
	Accounts      *service.Accounts
	AdminRequests *service.AdminRequests
	DB            handlers.Pinger
	// Gatherer backs /metrics; nil serves the default registry.
	Gatherer prometheus.Gatherer
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Router wires middleware and routes.
func Router(cfg config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(deps.Logger), middleware.CORS(cfg.CORSOrigins))

	handlers.NewHealthHandler(time.Now(), deps.DB).Register(r)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	authn := middleware.Authenticate(deps.Tokens)
	handlers.NewAuthHandler(deps.OTPs, deps.Accounts, deps.Tokens, deps.Logger).Register(r, authn)
	handlers.NewAdminHandler(deps.AdminRequests, deps.Logger).Register(r, authn)

	return r
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Router(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// SMTP delivery happens inline on /send-otp
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

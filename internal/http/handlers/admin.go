package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/interview-be/internal/http/respond"
	"github.com/hongminglow/interview-be/internal/middleware"
	"github.com/hongminglow/interview-be/internal/models/dto"
	"github.com/hongminglow/interview-be/internal/service"
)

// AdminHandler exposes the admin-access request workflow.
type AdminHandler struct {
	requests *service.AdminRequests
	logger   *slog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(requests *service.AdminRequests, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{requests: requests, logger: logger}
}

// Register attaches the request routes. The /admin group requires an admin
// token belonging to the default admin.
func (h *AdminHandler) Register(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Post("/request-admin-access", h.handleSubmit)
	r.With(authn).Get("/check-admin-request", h.handleCheck)

	r.Route("/admin", func(r chi.Router) {
		r.Use(authn, middleware.RequireAdmin, middleware.RequireIdentity(h.requests.IsDefaultAdmin))
		r.Get("/requests", h.handleList)
		r.Post("/grant-access", h.handleGrant)
	})
}

func (h *AdminHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminAccessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	created, err := h.requests.Submit(r.Context(), service.SubmitAdminRequest{
		Email:    req.Email,
		Message:  req.Message,
		FullName: req.FullName,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Admin access request submitted successfully", created)
}

// handleCheck reports whether the caller's own email has a pending request.
func (h *AdminHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	email := r.URL.Query().Get("email")
	if email == "" {
		email = claims.Email
	}
	if !sameEmail(email, claims.Email) {
		respond.Error(w, http.StatusForbidden, "unauthorized", "you can only check your own admin request status")
		return
	}
	pending, err := h.requests.HasPending(r.Context(), claims.Email)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]bool{"pending": pending})
}

func (h *AdminHandler) handleList(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	pending, err := h.requests.ListPending(r.Context(), claims.Email)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", pending)
}

func (h *AdminHandler) handleGrant(w http.ResponseWriter, r *http.Request) {
	var req dto.GrantAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	claims, _ := middleware.ClaimsFromContext(r.Context())
	approved, err := h.requests.Approve(r.Context(), req.Email, claims.Email)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Admin access granted for "+approved.Email, approved)
}

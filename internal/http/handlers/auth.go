package handlers

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/interview-be/internal/auth"
	"github.com/hongminglow/interview-be/internal/http/respond"
	"github.com/hongminglow/interview-be/internal/middleware"
	"github.com/hongminglow/interview-be/internal/models/dto"
	"github.com/hongminglow/interview-be/internal/service"
)

// AuthHandler owns the OTP, signup, login and profile endpoints.
type AuthHandler struct {
	otps     *service.OTPLedger
	accounts *service.Accounts
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(otps *service.OTPLedger, accounts *service.Accounts, tokens *auth.TokenManager, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{otps: otps, accounts: accounts, tokens: tokens, logger: logger}
}

// Register attaches auth routes. authn guards the routes that need a bearer token.
func (h *AuthHandler) Register(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Post("/send-otp", h.handleSendOTP)
	r.Post("/verify-otp", h.handleVerifyOTP)
	r.Post("/signup", h.handleSignup)
	r.Post("/token", h.handleToken)
	r.Get("/check-email", h.handleCheckEmail)
	r.With(authn).Get("/users/me", h.handleMe)
}

func (h *AuthHandler) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" && r.ContentLength != 0 {
		var body struct {
			Email string `json:"email"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeServiceError(w, r, h.logger, err)
			return
		}
		email = body.Email
	}
	if _, err := h.otps.Issue(r.Context(), email); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, "OTP sent successfully", nil)
}

func (h *AuthHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if err := h.otps.Verify(r.Context(), req.Email, req.OTP); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, "OTP verified successfully", nil)
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	user, err := h.accounts.Signup(r.Context(), service.SignupInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "User created successfully", user)
}

// handleToken accepts JSON {identifier, password} or an OAuth2 password form.
func (h *AuthHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_input", "invalid form payload")
			return
		}
		req.Identifier = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respond.Raw(w, http.StatusOK, dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
		Email:       user.Email,
	})
}

func (h *AuthHandler) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	exists, err := h.accounts.EmailExists(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]bool{"exists": exists})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	user, err := h.accounts.Profile(r.Context(), claims.Username)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.ProfileResponse{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Verified: user.Verified,
	})
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

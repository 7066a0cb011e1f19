package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hongminglow/interview-be/internal/http/respond"
	"github.com/hongminglow/interview-be/internal/service"
)

const maxBodyBytes = 1 << 20

var errBadJSON = errors.New("invalid JSON payload")

// writeServiceError maps the service error taxonomy onto status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var input *service.InputError
	switch {
	case errors.As(err, &input):
		respond.Error(w, http.StatusBadRequest, "invalid_input", input.Reason)
	case errors.Is(err, errBadJSON):
		respond.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrExpired):
		respond.Error(w, http.StatusGone, "otp_expired", "OTP has expired")
	case errors.Is(err, service.ErrMismatch):
		respond.Error(w, http.StatusBadRequest, "otp_mismatch", "invalid OTP")
	case errors.Is(err, service.ErrEmailNotVerified):
		respond.Error(w, http.StatusForbidden, "email_not_verified", "email not verified")
	case errors.Is(err, service.ErrAlreadyPending):
		respond.Error(w, http.StatusConflict, "already_pending", "an admin request is already pending for this email")
	case errors.Is(err, service.ErrConflict):
		respond.Error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respond.Error(w, http.StatusForbidden, "unauthorized", "not allowed to perform this action")
	case errors.Is(err, service.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		respond.Error(w, http.StatusUnauthorized, "invalid_credentials", "incorrect username or password")
	case errors.Is(err, service.ErrPendingApproval):
		respond.Error(w, http.StatusForbidden, "pending_approval", "admin request pending approval")
	case errors.Is(err, service.ErrRateLimited):
		respond.Error(w, http.StatusTooManyRequests, "rate_limited", "too many OTP requests, try again later")
	case errors.Is(err, service.ErrDeliveryFailure):
		logger.ErrorContext(r.Context(), "email delivery failed", "path", r.URL.Path, "error", err)
		respond.Error(w, http.StatusBadGateway, "delivery_failure", "failed to send email")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errBadJSON
	}
	return nil
}

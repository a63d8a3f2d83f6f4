package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/lodge-manager/internal/application"
)

type authService interface {
	Login(ctx context.Context, email, password string) (application.LoginResult, error)
}

// LoginObserver receives the outcome of every login attempt.
type LoginObserver interface {
	ObserveLogin(result string)
}

type AuthHandler struct {
	service   authService
	observer  LoginObserver
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, observer LoginObserver, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, observer: observer, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) observe(result string) {
	if h.observer != nil {
		h.observer.ObserveLogin(result)
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeBodyError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Login")

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			h.observe("rejected")
			h.responder.writeError(r.Context(), w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.observe("error")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.observe("success")
	logger.With("user_id", result.User.ID).InfoContext(r.Context(), "login succeeded")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: formatTimestamp(result.ExpiresAt),
		User:      toUserDTO(result.User),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	User      userDTO `json:"user"`
}

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserDTO(user application.User) userDTO {
	return userDTO{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
}

// timestampLayout renders UTC instants with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

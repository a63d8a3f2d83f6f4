package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/lodge-manager/internal/application"
	"github.com/example/lodge-manager/internal/validation"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgUnauthorized       = "Unauthorized"
	msgValidation         = "Validation error"
	msgNotFound           = "Not found"
	msgInternal           = "Internal server error"
	msgBadRequestBody     = "Invalid JSON body"
	msgInvalidID          = "Invalid id"
	msgTooManyRequests    = "Too many login attempts, please try again later"
	msgMethodNotAllowed   = "Method not allowed"
	msgBodyTooLarge       = "Request body too large"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = statusMessage(status)
	}
	r.writeJSON(ctx, w, status, errorResponse{Status: "error", Message: message})
}

func (r responder) writeValidation(ctx context.Context, w http.ResponseWriter, issues []validation.Issue) {
	if issues == nil {
		issues = []validation.Issue{}
	}
	r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Status: "error", Message: msgValidation, Errors: issues})
}

// writeBodyError answers a request whose body could not be decoded.
func (r responder) writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		r.loggerFor(ctx).InfoContext(ctx, "request body too large", "limit_bytes", maxErr.Limit)
		r.writeError(ctx, w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return
	}
	r.loggerFor(ctx).InfoContext(ctx, "malformed request body", "error", err)
	r.writeError(ctx, w, http.StatusBadRequest, msgBadRequestBody)
}

// handleServiceError maps application errors to a status code. The error text
// itself is logged, never sent.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, msgInternal)
		return
	}

	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeError(ctx, w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, application.ErrUnauthorized):
		r.writeError(ctx, w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, application.ErrNotFound):
		r.writeError(ctx, w, http.StatusNotFound, msgNotFound)
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeValidation(ctx, w, vErr.Issues)
			return
		}
		var schemaErr *validation.Error
		if errors.As(err, &schemaErr) {
			r.writeValidation(ctx, w, schemaErr.Issues)
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", http.StatusInternalServerError, "error", err)
		r.writeError(ctx, w, http.StatusInternalServerError, msgInternal)
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return msgValidation
	case http.StatusUnauthorized:
		return msgUnauthorized
	case http.StatusNotFound:
		return msgNotFound
	case http.StatusMethodNotAllowed:
		return msgMethodNotAllowed
	case http.StatusTooManyRequests:
		return msgTooManyRequests
	case http.StatusRequestEntityTooLarge:
		return msgBodyTooLarge
	default:
		return msgInternal
	}
}

type errorResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Errors  []validation.Issue `json:"errors,omitempty"`
}

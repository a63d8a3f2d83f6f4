package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/lodge-manager/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if principal, ok := PrincipalFromContext(ctx); ok {
		pairs = append(pairs, "principal_id", principal.UserID)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}

// LogLevel picks the level a failed operation is logged at. Client errors are
// routine and stay below Error so alerting only sees server faults.
func LogLevel(err error) slog.Level {
	switch ErrorKind(err) {
	case "":
		return slog.LevelInfo
	case "not_found", "validation", "canceled":
		return slog.LevelInfo
	case "unauthorized", "invalid_credentials":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

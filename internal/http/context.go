package http

import (
	"context"
	"log/slog"

	"github.com/example/lodge-manager/internal/application"
	"github.com/example/lodge-manager/internal/logging"
)

type contextKey string

const (
	requestIDContextKey  contextKey = "request_id"
	resourceIDContextKey contextKey = "resource_id"
	payloadContextKey    contextKey = "payload"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return application.ContextWithPrincipal(ctx, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	return application.PrincipalFromContext(ctx)
}

// ContextWithLogger stores a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithRequestID stores the request id assigned by RequestLogger.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext returns the request id, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// ContextWithResourceID injects the numeric identifier resolved from the request path.
func ContextWithResourceID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, resourceIDContextKey, id)
}

// ResourceIDFromContext extracts an identifier previously associated with the context.
func ResourceIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(resourceIDContextKey).(int64)
	return id, ok
}

// ContextWithPayload stores a decoded and validated request body.
func ContextWithPayload[T any](ctx context.Context, payload *T) context.Context {
	return context.WithValue(ctx, payloadContextKey, payload)
}

// PayloadFromContext returns the body stored by ValidateJSON for the same schema type.
func PayloadFromContext[T any](ctx context.Context) (*T, bool) {
	payload, ok := ctx.Value(payloadContextKey).(*T)
	return payload, ok && payload != nil
}

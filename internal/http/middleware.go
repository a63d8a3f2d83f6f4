package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/lodge-manager/internal/application"
	"github.com/example/lodge-manager/internal/validation"
)

const requestIDHeader = "X-Request-Id"

// TokenAuthenticator validates bearer tokens.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (application.Principal, error)
}

// RateLimiter decides whether a caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// RequireToken rejects requests without a valid bearer token before they reach
// the wrapped handler.
func RequireToken(authenticator TokenAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, "No token provided")
				return
			}
			if authenticator == nil {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, "Invalid token")
				return
			}

			principal, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, application.ErrUnauthorized) {
					responder.loggerFor(r.Context()).ErrorContext(r.Context(), "token verification failed", "error", err)
				}
				responder.writeError(r.Context(), w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger assigns a request id (taken from X-Request-Id when present),
// stores a request scoped logger in the context and logs start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithRequestID(r.Context(), id)
			ctx = ContextWithLogger(ctx, logger)
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			logger.DebugContext(ctx, "request started")
			next.ServeHTTP(rec, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", rec.statusCode(), "duration_ms", time.Since(start).Milliseconds())
		})
	}
}

// CORS sets the allow-origin header from configuration and answers preflight
// requests with 204.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	allowedOrigin = strings.TrimSpace(allowedOrigin)
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-Id")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			if allowedOrigin != "*" {
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Recover turns a panicking handler into a logged 500 response.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				responder.loggerFor(r.Context()).ErrorContext(r.Context(), "handler panicked",
					"error", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)
				responder.writeError(r.Context(), w, http.StatusInternalServerError, msgInternal)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitByClientIP rejects callers that exceed limiter's quota with 429. A nil
// limiter disables the check.
func LimitByClientIP(limiter RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(r.Context(), ip) {
				responder.loggerFor(r.Context()).WarnContext(r.Context(), "rate limit exceeded", "client_ip", ip)
				w.Header().Set("Retry-After", "60")
				responder.writeError(r.Context(), w, http.StatusTooManyRequests, msgTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodyBytes caps request bodies when RouterConfig leaves the limit unset.
const MaxBodyBytes int64 = 1 << 20

// LimitBody stops reading a request body after n bytes. Decoders reading past
// the limit see *http.MaxBytesError and the request is answered with 413.
func LimitBody(n int64) func(http.Handler) http.Handler {
	if n <= 0 {
		n = MaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidateJSON decodes the body into T, validates it and hands the result to
// next through the request context. Invalid bodies never reach next.
func ValidateJSON[T any](logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, err := validation.Decode[T](r.Body)
			if err != nil {
				var schemaErr *validation.Error
				if errors.As(err, &schemaErr) {
					responder.loggerFor(r.Context()).InfoContext(r.Context(), "request body rejected", "issue_count", len(schemaErr.Issues))
					responder.writeValidation(r.Context(), w, schemaErr.Issues)
					return
				}
				responder.writeBodyError(r.Context(), w, err)
				return
			}

			ctx := ContextWithPayload(r.Context(), payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	if r.status == 0 {
		r.status = statusCode
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

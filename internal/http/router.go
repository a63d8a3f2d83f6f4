package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/lodge-manager/internal/validation"
)

const (
	roomsPath        = "/api/rooms"
	availabilityPath = "/api/availability"
)

type RouterConfig struct {
	Auth          *AuthHandler
	Rooms         *RoomHandler
	Availability  *AvailabilityHandler
	Health        *HealthHandler
	Metrics       http.Handler
	Authenticator TokenAuthenticator
	LoginLimiter  RateLimiter
	Logger        *slog.Logger
	// MaxBodyBytes caps request bodies; zero means MaxBodyBytes.
	MaxBodyBytes int64
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	logger := defaultLogger(cfg.Logger)
	responder := newResponder(logger)
	protect := RequireToken(cfg.Authenticator, logger)

	if cfg.Health != nil {
		health := func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				methodNotAllowed(w, r, responder, http.MethodGet)
				return
			}
			cfg.Health.Health(w, r)
		}
		mux.HandleFunc("/health", health)
		mux.HandleFunc("/api/health", health)
	}

	if cfg.Metrics != nil {
		mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, r, responder, http.MethodGet)
				return
			}
			cfg.Metrics.ServeHTTP(w, r)
		})
	}

	if cfg.Auth != nil {
		login := LimitByClientIP(cfg.LoginLimiter, logger)(http.HandlerFunc(cfg.Auth.Login))
		mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, r, responder, http.MethodPost)
				return
			}
			login.ServeHTTP(w, r)
		})
	}

	if cfg.Rooms != nil {
		create := ValidateJSON[validation.RoomCreate](logger)(http.HandlerFunc(cfg.Rooms.Create))
		update := ValidateJSON[validation.RoomUpdate](logger)(http.HandlerFunc(cfg.Rooms.Update))

		mux.Handle(roomsPath, protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.List(w, r)
			case http.MethodPost:
				create.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, r, responder, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle(roomsPath+"/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseResourceID(r.URL.Path, roomsPath+"/")
			if !ok {
				responder.writeError(r.Context(), w, http.StatusBadRequest, msgInvalidID)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.Get(w, r)
			case http.MethodPut:
				update.ServeHTTP(w, r)
			case http.MethodDelete:
				cfg.Rooms.Delete(w, r)
			default:
				methodNotAllowed(w, r, responder, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})))
	}

	if cfg.Availability != nil {
		create := ValidateJSON[validation.AvailabilityCreate](logger)(http.HandlerFunc(cfg.Availability.Create))
		update := ValidateJSON[validation.AvailabilityUpdate](logger)(http.HandlerFunc(cfg.Availability.Update))

		mux.Handle(availabilityPath, protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Availability.List(w, r)
			case http.MethodPost:
				create.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, r, responder, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle(availabilityPath+"/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseResourceID(r.URL.Path, availabilityPath+"/")
			if !ok {
				responder.writeError(r.Context(), w, http.StatusBadRequest, msgInvalidID)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				update.ServeHTTP(w, r)
			case http.MethodDelete:
				cfg.Availability.Delete(w, r)
			default:
				methodNotAllowed(w, r, responder, http.MethodPut, http.MethodDelete)
			}
		})))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		responder.writeError(r.Context(), w, http.StatusNotFound, msgNotFound)
	})

	handler := LimitBody(cfg.MaxBodyBytes)(mux)
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

// RouteLabel collapses resource ids so metrics keep a bounded label set.
func RouteLabel(r *http.Request) string {
	path := r.URL.Path
	for _, prefix := range []string{roomsPath + "/", availabilityPath + "/"} {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			return prefix + ":id"
		}
	}
	switch path {
	case "/health", "/api/health", "/metrics", "/api/auth/login", roomsPath, availabilityPath:
		return path
	}
	return "other"
}

func parseResourceID(path, prefix string) (int64, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(path, prefix), "/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, responder responder, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	responder.writeError(r.Context(), w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

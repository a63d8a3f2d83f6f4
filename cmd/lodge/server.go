package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/lodge-manager/internal/application"
	"github.com/example/lodge-manager/internal/auth"
	"github.com/example/lodge-manager/internal/config"
	httptransport "github.com/example/lodge-manager/internal/http"
	"github.com/example/lodge-manager/internal/metrics"
	"github.com/example/lodge-manager/internal/persistence"
	"github.com/example/lodge-manager/internal/persistence/postgres"
	"github.com/example/lodge-manager/internal/persistence/sqlite"
	"github.com/example/lodge-manager/internal/ratelimit"
)

const shutdownTimeout = 10 * time.Second

// handlerDeps is everything newHandler wires into the router.
type handlerDeps struct {
	Config  config.Config
	Store   persistence.Store
	Limiter httptransport.RateLimiter
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
	// PasswordParams hash the fixed login password. Zero means
	// application.DefaultHashParams.
	PasswordParams application.HashParams
}

func newHandler(deps handlerDeps) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	params := deps.PasswordParams
	if params == (application.HashParams{}) {
		params = application.DefaultHashParams
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}

	credentials, err := application.NewStaticCredentials(application.DefaultLodgeUser(), application.DefaultLodgePassword, params)
	if err != nil {
		return nil, fmt.Errorf("build credentials: %w", err)
	}
	tokens := tokenAdapter{manager: auth.NewManager(auth.Options{
		Secret: deps.Config.JWTSecret,
		TTL:    deps.Config.TokenTTL,
		Now:    now,
	})}

	roomRepo := newRoomRepositoryAdapter(deps.Store.Rooms())
	availabilityRepo := newAvailabilityRepositoryAdapter(deps.Store.Availability())

	authService := application.NewAuthServiceWithLogger(credentials, tokens, tokens, logger)
	roomService := application.NewRoomServiceWithLogger(roomRepo, now, logger)
	availabilityService := application.NewAvailabilityServiceWithLogger(availabilityRepo, roomRepo, now, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(authService, m, logger),
		Rooms:         httptransport.NewRoomHandler(roomService, logger),
		Availability:  httptransport.NewAvailabilityHandler(availabilityService, logger),
		Health:        httptransport.NewHealthHandler(logger),
		Metrics:       m.Handler(),
		Authenticator: authService,
		LoginLimiter:  deps.Limiter,
		Logger:        logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recover(logger),
			httptransport.CORS(deps.Config.CORSAllowedOrigin),
			m.Middleware(httptransport.RouteLabel),
		},
	}), nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		store, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverSQLite, "":
		store, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLitePath), logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func openMigratedStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return store, nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.JWTSecretDefaulted {
		logger.Warn("JWT_SECRET is not set; tokens are signed with the built-in default secret")
	}

	store, err := openMigratedStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	var limiter httptransport.RateLimiter
	if cfg.RateLimitEnabled() {
		fixed, err := ratelimit.NewFixedWindowLimiter(ratelimit.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Limit:    cfg.LoginRateLimitPerMinute,
			Window:   time.Minute,
		})
		if err != nil {
			return fmt.Errorf("build login rate limiter: %w", err)
		}
		defer fixed.Close()
		if err := fixed.Ping(ctx); err != nil {
			logger.Warn("redis unreachable; login attempts are rejected until it recovers", "addr", cfg.RedisAddr, "error", err)
		}
		limiter = fixed
	}

	handler, err := newHandler(handlerDeps{
		Config:  cfg,
		Store:   store,
		Limiter: limiter,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("lodge API listening", "addr", server.Addr, "db_driver", cfg.DBDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

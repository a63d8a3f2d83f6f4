package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CredentialVerifier checks a login email/password pair and returns the matching user.
// Any mismatch must be reported as ErrInvalidCredentials.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, email, password string) (User, error)
}

// TokenIssuer signs a session token for a user.
type TokenIssuer interface {
	IssueToken(user User) (token string, expiresAt time.Time, err error)
}

// TokenVerifier validates a session token and returns the principal it names.
type TokenVerifier interface {
	VerifyToken(token string) (Principal, error)
}

// AuthService coordinates login and token authentication.
type AuthService struct {
	credentials CredentialVerifier
	issuer      TokenIssuer
	verifier    TokenVerifier
	logger      *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialVerifier, issuer TokenIssuer, verifier TokenVerifier) *AuthService {
	return NewAuthServiceWithLogger(credentials, issuer, verifier, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialVerifier, issuer TokenIssuer, verifier TokenVerifier, logger *slog.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		issuer:      issuer,
		verifier:    verifier,
		logger:      defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login verifies credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil || s.issuer == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Login")
	defer func() {
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				logger.WarnContext(ctx, "login rejected", "error_kind", ErrorKind(err))
				return
			}
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	if strings.TrimSpace(email) == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	var user User
	user, err = s.credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		return
	}

	var token string
	var expiresAt time.Time
	token, expiresAt, err = s.issuer.IssueToken(user)
	if err != nil {
		err = fmt.Errorf("issue token: %w", err)
		return
	}

	result = LoginResult{Token: token, ExpiresAt: expiresAt, User: user}
	return
}

// Authenticate validates a bearer token and returns its principal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Principal, error) {
	if s == nil || s.verifier == nil {
		return Principal{}, ErrUnauthorized
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrUnauthorized
	}

	principal, err := s.verifier.VerifyToken(token)
	if err != nil {
		s.loggerWith(ctx, "Authenticate").DebugContext(ctx, "token rejected", "error", err)
		return Principal{}, ErrUnauthorized
	}
	return principal, nil
}

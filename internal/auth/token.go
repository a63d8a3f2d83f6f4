// Package auth issues and verifies the signed session tokens handed out at login.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultSecret is used when no signing secret is configured.
	DefaultSecret = "your-secret-key"
	// DefaultTTL is the lifetime of an issued token.
	DefaultTTL = 24 * time.Hour

	defaultIssuer = "lodge-manager"
)

var defaultLeeway = 30 * time.Second

// ErrInvalidToken is returned for any token that fails parsing or validation.
var ErrInvalidToken = errors.New("auth: invalid token")

// Identity is the subject carried inside a token.
type Identity struct {
	ID    string
	Email string
	Role  string
}

// Claims is the JWT payload.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Options configures a Manager.
type Options struct {
	Secret string
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
	Now    func() time.Time
}

// Manager signs and verifies HS256 tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// NewManager builds a Manager, filling unset options with defaults.
func NewManager(opts Options) *Manager {
	if opts.Secret == "" {
		opts.Secret = DefaultSecret
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if strings.TrimSpace(opts.Issuer) == "" {
		opts.Issuer = defaultIssuer
	}
	if opts.Leeway <= 0 {
		opts.Leeway = defaultLeeway
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		secret: []byte(opts.Secret),
		ttl:    opts.TTL,
		issuer: strings.TrimSpace(opts.Issuer),
		leeway: opts.Leeway,
		now:    opts.Now,
	}
}

// Issue signs a token for identity and returns it with its expiry.
func (m *Manager) Issue(identity Identity) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		ID:    identity.ID,
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses token and returns the identity it carries.
func (m *Manager) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token not valid")
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.ID) == "" {
		return Identity{}, fmt.Errorf("%w: id claim missing", ErrInvalidToken)
	}

	return Identity{ID: claims.ID, Email: claims.Email, Role: claims.Role}, nil
}

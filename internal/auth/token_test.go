package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var lodgeIdentity = Identity{ID: "1", Email: "lodge@test.com", Role: "lodge"}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(Options{Secret: "s3cret", Now: fixedNow(now)})

	token, expiresAt, err := m.Issue(lodgeIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("expected 24h expiry, got %v", expiresAt)
	}

	got, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != lodgeIdentity {
		t.Fatalf("unexpected identity: %#v", got)
	}
}

func TestTokenCarriesClaims(t *testing.T) {
	t.Parallel()

	m := NewManager(Options{Secret: "s3cret"})
	token, _, err := m.Issue(lodgeIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	if claims.ID != "1" || claims.Email != "lodge@test.com" || claims.Role != "lodge" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
	if claims.RegisteredClaims.ID == "" {
		t.Fatal("expected jti claim")
	}
	if claims.Issuer != defaultIssuer {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewManager(Options{Secret: "s3cret", Now: fixedNow(now)})
	token, _, err := issuer.Issue(lodgeIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other, _, err := issuer.Issue(Identity{ID: "2", Email: "someone@else.com", Role: "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parts, otherParts := strings.Split(token, "."), strings.Split(other, ".")
	tampered := parts[0] + "." + otherParts[1] + "." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: "1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	tests := []struct {
		name     string
		verifier *Manager
		token    string
	}{
		{name: "empty", verifier: issuer, token: "  "},
		{name: "garbage", verifier: issuer, token: "not-a-jwt"},
		{name: "wrong secret", verifier: NewManager(Options{Secret: "other", Now: fixedNow(now)}), token: token},
		{name: "expired", verifier: NewManager(Options{Secret: "s3cret", Now: fixedNow(now.Add(25 * time.Hour))}), token: token},
		{name: "other issuer", verifier: NewManager(Options{Secret: "s3cret", Issuer: "elsewhere", Now: fixedNow(now)}), token: token},
		{name: "tampered", verifier: issuer, token: tampered},
		{name: "alg none", verifier: issuer, token: noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := tt.verifier.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifyAllowsClockSkewWithinLeeway(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	token, _, err := NewManager(Options{Secret: "s3cret", TTL: time.Minute, Now: fixedNow(now)}).Issue(lodgeIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	late := NewManager(Options{Secret: "s3cret", Now: fixedNow(now.Add(time.Minute + 10*time.Second))})
	if _, err := late.Verify(token); err != nil {
		t.Fatalf("expected token within leeway to verify, got %v", err)
	}
}

func TestNewManagerDefaults(t *testing.T) {
	t.Parallel()

	m := NewManager(Options{})
	if string(m.secret) != DefaultSecret || m.ttl != DefaultTTL || m.leeway != defaultLeeway {
		t.Fatalf("unexpected defaults: %#v", m)
	}
	if !strings.EqualFold(m.issuer, defaultIssuer) {
		t.Fatalf("unexpected issuer %q", m.issuer)
	}
}

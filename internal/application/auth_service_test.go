package application

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var cheapArgon2 = HashParams{MemoryKiB: 1024, Passes: 1, Threads: 1, SaltBytes: 16, KeyBytes: 32}

type tokenStub struct {
	issued   []User
	issueErr error
	expires  time.Time
}

func (s *tokenStub) IssueToken(user User) (string, time.Time, error) {
	if s.issueErr != nil {
		return "", time.Time{}, s.issueErr
	}
	s.issued = append(s.issued, user)
	return "token-for-" + user.ID, s.expires, nil
}

func (s *tokenStub) VerifyToken(token string) (Principal, error) {
	id, ok := strings.CutPrefix(token, "token-for-")
	if !ok {
		return Principal{}, errors.New("bad token")
	}
	return Principal{UserID: id, Email: DefaultLodgeEmail, Role: "lodge"}, nil
}

func newTestAuthService(t *testing.T, tokens *tokenStub) *AuthService {
	t.Helper()
	creds, err := NewStaticCredentials(DefaultLodgeUser(), DefaultLodgePassword, cheapArgon2)
	if err != nil {
		t.Fatalf("NewStaticCredentials: %v", err)
	}
	return NewAuthService(creds, tokens, tokens)
}

func TestAuthService_LoginSuccess(t *testing.T) {
	t.Parallel()

	tokens := &tokenStub{expires: testNow.Add(24 * time.Hour)}
	svc := newTestAuthService(t, tokens)

	result, err := svc.Login(context.Background(), "lodge@test.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token != "token-for-1" {
		t.Fatalf("unexpected token %q", result.Token)
	}
	if result.User != DefaultLodgeUser() {
		t.Fatalf("unexpected user %+v", result.User)
	}
	if !result.ExpiresAt.Equal(tokens.expires) {
		t.Fatalf("unexpected expiry %v", result.ExpiresAt)
	}
}

func TestAuthService_LoginEmailIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t, &tokenStub{})
	if _, err := svc.Login(context.Background(), "  Lodge@Test.com ", "password123"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
}

func TestAuthService_LoginRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "lodge@test.com", "password124"},
		{"wrong email", "other@test.com", "password123"},
		{"empty email", "", "password123"},
		{"empty password", "lodge@test.com", ""},
		{"password case", "lodge@test.com", "PASSWORD123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &tokenStub{}
			svc := newTestAuthService(t, tokens)
			_, err := svc.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if len(tokens.issued) != 0 {
				t.Fatal("no token may be issued on rejected login")
			}
		})
	}
}

func TestAuthService_LoginIssueFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("signing failed")
	svc := newTestAuthService(t, &tokenStub{issueErr: boom})
	_, err := svc.Login(context.Background(), DefaultLodgeEmail, DefaultLodgePassword)
	if !errors.Is(err, boom) {
		t.Fatalf("expected signing error, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("signing failure must not look like a credential failure")
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t, &tokenStub{})

	principal, err := svc.Authenticate(context.Background(), " token-for-1 ")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if principal.UserID != "1" || principal.Role != "lodge" {
		t.Fatalf("unexpected principal %+v", principal)
	}

	for _, token := range []string{"", "   ", "garbage"} {
		if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestAuthService_NotConfigured(t *testing.T) {
	t.Parallel()

	var svc *AuthService
	if _, err := svc.Login(context.Background(), DefaultLodgeEmail, DefaultLodgePassword); err == nil {
		t.Fatal("expected error from nil service")
	}
	if _, err := svc.Authenticate(context.Background(), "token-for-1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized from nil service, got %v", err)
	}
}

func TestNewStaticCredentials_RequiresEmailAndPassword(t *testing.T) {
	t.Parallel()

	if _, err := NewStaticCredentials(User{ID: "1"}, "secret", cheapArgon2); err == nil {
		t.Fatal("expected error without email")
	}
	if _, err := NewStaticCredentials(DefaultLodgeUser(), "", cheapArgon2); err == nil {
		t.Fatal("expected error without password")
	}
}

func TestPasswordHash(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse", cheapArgon2)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !hash.Matches("correct horse") {
		t.Fatal("expected the right password to match")
	}
	if hash.Matches("battery staple") {
		t.Fatal("expected a wrong password to be rejected")
	}

	again, err := HashPassword("correct horse", cheapArgon2)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if bytes.Equal(hash.salt, again.salt) || bytes.Equal(hash.key, again.key) {
		t.Fatal("expected a fresh salt per hash")
	}

	if (PasswordHash{}).Matches("") {
		t.Fatal("zero hash must not match")
	}
	if _, err := HashPassword("x", HashParams{MemoryKiB: 1024, Passes: 1, Threads: 1, SaltBytes: 4, KeyBytes: 32}); err == nil {
		t.Fatal("expected short salt to be refused")
	}
	if _, err := HashPassword("x", HashParams{}); err == nil {
		t.Fatal("expected zero params to be refused")
	}
}

package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultLodgeEmail and DefaultLodgePassword are the fixed login pair.
	DefaultLodgeEmail    = "lodge@test.com"
	DefaultLodgePassword = "password123"
)

// DefaultLodgeUser is the single account of the application.
func DefaultLodgeUser() User {
	return User{ID: "1", Email: DefaultLodgeEmail, Name: "Test Lodge", Role: "lodge"}
}

// StaticCredentials accepts exactly one email/password pair. The password is held
// only as an argon2id hash.
type StaticCredentials struct {
	user         User
	email        string
	passwordHash PasswordHash
}

// NewStaticCredentials hashes password with params and returns a verifier for user.
func NewStaticCredentials(user User, password string, params HashParams) (*StaticCredentials, error) {
	if strings.TrimSpace(user.Email) == "" || password == "" {
		return nil, errors.New("static credentials need an email and a password")
	}
	hash, err := HashPassword(password, params)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &StaticCredentials{
		user:         user,
		email:        normalizeEmail(user.Email),
		passwordHash: hash,
	}, nil
}

// VerifyCredentials implements CredentialVerifier. The password hash is always
// checked so a wrong email costs the same as a wrong password.
func (c *StaticCredentials) VerifyCredentials(_ context.Context, email, password string) (User, error) {
	emailMatch := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(c.email)) == 1
	passwordMatch := c.passwordHash.Matches(password)

	if !emailMatch || !passwordMatch {
		return User{}, ErrInvalidCredentials
	}
	return c.user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

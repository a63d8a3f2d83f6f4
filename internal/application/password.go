package application

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// HashParams sets the argon2id cost used for the lodge login password.
type HashParams struct {
	MemoryKiB uint32
	Passes    uint32
	Threads   uint8
	SaltBytes uint32
	KeyBytes  uint32
}

// DefaultHashParams are used when the server is started without overrides.
var DefaultHashParams = HashParams{
	MemoryKiB: 64 * 1024,
	Passes:    3,
	Threads:   2,
	SaltBytes: 16,
	KeyBytes:  32,
}

func (p HashParams) validate() error {
	if p.MemoryKiB == 0 || p.Passes == 0 || p.Threads == 0 {
		return errors.New("hash params need memory, passes and threads")
	}
	if p.SaltBytes < 8 || p.KeyBytes < 16 {
		return fmt.Errorf("hash params too weak: salt %d bytes, key %d bytes", p.SaltBytes, p.KeyBytes)
	}
	return nil
}

// PasswordHash is a salted argon2id digest kept in memory. The plain password
// is never stored.
type PasswordHash struct {
	params HashParams
	salt   []byte
	key    []byte
}

// HashPassword derives a PasswordHash for password with a fresh random salt.
func HashPassword(password string, params HashParams) (PasswordHash, error) {
	if err := params.validate(); err != nil {
		return PasswordHash{}, err
	}
	salt := make([]byte, params.SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return PasswordHash{}, fmt.Errorf("read salt: %w", err)
	}
	return PasswordHash{params: params, salt: salt, key: params.derive(password, salt)}, nil
}

// Matches reports whether password hashes to h. A zero PasswordHash matches nothing.
func (h PasswordHash) Matches(password string) bool {
	if len(h.key) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(h.key, h.params.derive(password, h.salt)) == 1
}

func (p HashParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Passes, p.MemoryKiB, p.Threads, p.KeyBytes)
}

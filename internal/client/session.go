package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Session is the authenticated state of a client: the bearer token and the
// user it was issued to.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	User      User      `json:"user"`
}

// Active reports whether the session carries a token that has not expired at now.
func (s *Session) Active(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// SessionStore persists a session between process runs.
type SessionStore interface {
	// Load returns ErrNoSession when nothing is stored.
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}

// MemorySessionStore keeps the session in memory.
type MemorySessionStore struct {
	mu      sync.Mutex
	session *Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (m *MemorySessionStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrNoSession
	}
	copied := *m.session
	return &copied, nil
}

func (m *MemorySessionStore) Save(session *Session) error {
	if session == nil {
		return errors.New("client: nil session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.session = &copied
	return nil
}

func (m *MemorySessionStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// FileSessionStore keeps the session as a JSON file readable only by the owner.
type FileSessionStore struct {
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// DefaultSessionPath returns <user config dir>/lodgectl/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "lodgectl", "session.json"), nil
}

func (f *FileSessionStore) Path() string {
	return f.path
}

func (f *FileSessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.Token == "" {
		return nil, ErrNoSession
	}
	return &session, nil
}

func (f *FileSessionStore) Save(session *Session) error {
	if session == nil {
		return errors.New("client: nil session")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

func (f *FileSessionStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

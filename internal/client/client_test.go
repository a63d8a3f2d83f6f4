package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testToken = "test-token"

// fakeAPI serves a minimal subset of the lodge API.
func fakeAPI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "lodge@test.com" || req.Password != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"status":"error","message":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"token":"`+testToken+`","expiresAt":"2099-01-01T00:00:00.000Z","user":{"id":"1","email":"lodge@test.com","name":"Test Lodge","role":"lodge"}}`)
	})
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"status":"error","message":"Invalid token"}`)
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("/api/rooms", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `[{"id":1,"name":"Cabin 1","capacity":4,"type":"cabin","description":null,"createdAt":"2025-04-02T09:30:00.000Z","updatedAt":"2025-04-02T09:30:00.000Z"}]`)
		case http.MethodPost:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"status":"error","message":"Validation error","errors":[{"code":"too_small","path":["capacity"],"message":"Capacity must be a positive number"},{"code":"too_small","path":["name"],"message":"Room name is required"}]}`)
		}
	}))
	mux.HandleFunc("/api/rooms/", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && r.URL.Path == "/api/rooms/1" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status":"error","message":"Not found"}`)
	}))
	mux.HandleFunc("/api/availability", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":5,"roomId":1,"startDate":"2025-06-01T00:00:00.000Z","endDate":"2025-06-03T00:00:00.000Z","status":"available","createdAt":"2025-04-02T09:30:00.000Z","updatedAt":"2025-04-02T09:30:00.000Z","room":{"id":1,"name":"Cabin 1","capacity":4,"type":"cabin"}}]`)
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(baseURL, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestRequireSessionWithoutToken(t *testing.T) {
	t.Parallel()

	srv, hits := fakeAPI(t)
	c := newTestClient(t, srv.URL)

	if _, err := c.RequireSession(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := c.ListRooms(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession from guarded call, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatal("guarded calls must not reach the server without a session")
	}
}

func TestRequireSessionExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	c := newTestClient(t, "http://localhost:3000",
		WithSession(&Session{Token: "x", ExpiresAt: now.Add(-time.Minute)}),
		WithClock(func() time.Time { return now }),
	)
	if _, err := c.RequireSession(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for expired session, got %v", err)
	}
}

func TestLoginStoresSession(t *testing.T) {
	t.Parallel()

	srv, _ := fakeAPI(t)
	store := NewMemorySessionStore()
	c := newTestClient(t, srv.URL, WithSessionStore(store))

	session, err := c.Login(context.Background(), "lodge@test.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token != testToken || session.User.Role != "lodge" {
		t.Fatalf("unexpected session %+v", session)
	}
	stored, err := store.Load()
	if err != nil || stored.Token != testToken {
		t.Fatalf("expected stored session, got %+v, %v", stored, err)
	}

	rooms, err := c.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Name != "Cabin 1" || rooms[0].CreatedAt.IsZero() {
		t.Fatalf("unexpected rooms %+v", rooms)
	}
}

func TestLoginRejected(t *testing.T) {
	t.Parallel()

	srv, _ := fakeAPI(t)
	c := newTestClient(t, srv.URL)

	_, err := c.Login(context.Background(), "lodge@test.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Invalid credentials" {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if c.Session() != nil {
		t.Fatal("rejected login must not create a session")
	}
}

func TestValidationErrorsMapToFields(t *testing.T) {
	t.Parallel()

	srv, _ := fakeAPI(t)
	c := newTestClient(t, srv.URL, WithSession(&Session{Token: testToken}))

	capacity := 0
	_, err := c.CreateRoom(context.Background(), RoomForm{Capacity: &capacity})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	fields := apiErr.FieldErrors()
	if fields["capacity"] != "Capacity must be a positive number" || fields["name"] != "Room name is required" {
		t.Fatalf("unexpected field errors %v", fields)
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	t.Parallel()

	srv, _ := fakeAPI(t)
	store := NewMemorySessionStore()
	stale := &Session{Token: "stale"}
	if err := store.Save(stale); err != nil {
		t.Fatalf("save: %v", err)
	}
	c := newTestClient(t, srv.URL, WithSessionStore(store), WithSession(stale))

	_, err := c.ListRooms(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected wrapped 401 APIError, got %v", err)
	}
	if c.Session() != nil {
		t.Fatal("client session must be cleared")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("stored session must be cleared, got %v", err)
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	t.Parallel()

	srv, _ := fakeAPI(t)
	c := newTestClient(t, srv.URL, WithSession(&Session{Token: testToken}))

	if err := c.DeleteRoom(context.Background(), 1); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	err := c.DeleteRoom(context.Background(), 2)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestLoadAvailabilityView(t *testing.T) {
	t.Parallel()

	srv, hits := fakeAPI(t)
	c := newTestClient(t, srv.URL, WithSession(&Session{Token: testToken}))

	view, err := c.LoadAvailabilityView(context.Background())
	if err != nil {
		t.Fatalf("LoadAvailabilityView: %v", err)
	}
	if len(view.Rooms) != 1 || len(view.Availability) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Availability[0].Room.Name != "Cabin 1" {
		t.Fatalf("expected embedded room, got %+v", view.Availability[0].Room)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected two requests, got %d", hits.Load())
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv, _ := fakeAPI(t)
	status, err := newTestClient(t, srv.URL).Health(context.Background())
	if err != nil || status != "ok" {
		t.Fatalf("unexpected health %q, %v", status, err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "localhost:3000", "ftp://host"} {
		if _, err := New(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestFileSessionStore(t *testing.T) {
	t.Parallel()

	store := NewFileSessionStore(filepath.Join(t.TempDir(), "nested", "session.json"))
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession before save, got %v", err)
	}

	want := &Session{Token: "abc", ExpiresAt: time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC), User: User{ID: "1", Email: "lodge@test.com"}}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Token != want.Token || !got.ExpiresAt.Equal(want.ExpiresAt) || got.User != want.User {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear must be a no-op: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after clear, got %v", err)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	err := &APIError{Status: 400, Message: "Validation error", Issues: []Issue{{Path: []string{"name"}}}}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "1 field issues") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

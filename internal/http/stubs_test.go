package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/lodge-manager/internal/application"
	"github.com/example/lodge-manager/internal/validation"
)

const validToken = "valid-token"

var stubNow = time.Date(2025, time.April, 2, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type authenticatorStub struct{}

func (authenticatorStub) Authenticate(_ context.Context, token string) (application.Principal, error) {
	if token != validToken {
		return application.Principal{}, application.ErrUnauthorized
	}
	return application.Principal{UserID: "1", Email: "lodge@test.com", Role: "lodge"}, nil
}

type authServiceStub struct {
	result application.LoginResult
	err    error
}

func (s authServiceStub) Login(_ context.Context, email, password string) (application.LoginResult, error) {
	if s.err != nil {
		return application.LoginResult{}, s.err
	}
	if email != "lodge@test.com" || password != "password123" {
		return application.LoginResult{}, application.ErrInvalidCredentials
	}
	return s.result, nil
}

type roomServiceStub struct {
	mu      sync.Mutex
	calls   int
	rooms   []application.Room
	created application.RoomInput
	patch   application.RoomPatch
	err     error
}

func (s *roomServiceStub) record() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *roomServiceStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *roomServiceStub) ListRooms(context.Context) ([]application.Room, error) {
	if err := s.record(); err != nil {
		return nil, err
	}
	return s.rooms, nil
}

func (s *roomServiceStub) GetRoom(_ context.Context, id int64) (application.Room, error) {
	if err := s.record(); err != nil {
		return application.Room{}, err
	}
	for _, room := range s.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return application.Room{}, application.ErrNotFound
}

func (s *roomServiceStub) CreateRoom(_ context.Context, input application.RoomInput) (application.Room, error) {
	if err := s.record(); err != nil {
		return application.Room{}, err
	}
	s.created = input
	return application.Room{
		ID:          1,
		Name:        input.Name,
		Capacity:    input.Capacity,
		Type:        input.Type,
		Description: input.Description,
		CreatedAt:   stubNow,
		UpdatedAt:   stubNow,
	}, nil
}

func (s *roomServiceStub) UpdateRoom(_ context.Context, id int64, patch application.RoomPatch) (application.Room, error) {
	if err := s.record(); err != nil {
		return application.Room{}, err
	}
	s.patch = patch
	for _, room := range s.rooms {
		if room.ID == id {
			if patch.Capacity != nil {
				room.Capacity = *patch.Capacity
			}
			return room, nil
		}
	}
	return application.Room{}, application.ErrNotFound
}

func (s *roomServiceStub) DeleteRoom(_ context.Context, id int64) error {
	if err := s.record(); err != nil {
		return err
	}
	for _, room := range s.rooms {
		if room.ID == id {
			return nil
		}
	}
	return application.ErrNotFound
}

type availabilityServiceStub struct {
	mu      sync.Mutex
	calls   int
	windows []application.Availability
	created application.AvailabilityInput
	patch   application.AvailabilityPatch
	err     error
}

func (s *availabilityServiceStub) record() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *availabilityServiceStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *availabilityServiceStub) ListAvailability(context.Context) ([]application.Availability, error) {
	if err := s.record(); err != nil {
		return nil, err
	}
	return s.windows, nil
}

func (s *availabilityServiceStub) CreateAvailability(_ context.Context, input application.AvailabilityInput) (application.Availability, error) {
	if err := s.record(); err != nil {
		return application.Availability{}, err
	}
	s.created = input
	status := input.Status
	if status == "" {
		status = application.StatusAvailable
	}
	return application.Availability{
		ID:        5,
		RoomID:    input.RoomID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    status,
		CreatedAt: stubNow,
		UpdatedAt: stubNow,
		Room:      application.Room{ID: input.RoomID, Name: "Cabin 1", Capacity: 4, Type: "cabin", CreatedAt: stubNow, UpdatedAt: stubNow},
	}, nil
}

func (s *availabilityServiceStub) UpdateAvailability(_ context.Context, id int64, patch application.AvailabilityPatch) (application.Availability, error) {
	if err := s.record(); err != nil {
		return application.Availability{}, err
	}
	s.patch = patch
	for _, window := range s.windows {
		if window.ID == id {
			if patch.Status != nil {
				window.Status = *patch.Status
			}
			return window, nil
		}
	}
	return application.Availability{}, application.ErrNotFound
}

func (s *availabilityServiceStub) DeleteAvailability(_ context.Context, id int64) error {
	if err := s.record(); err != nil {
		return err
	}
	for _, window := range s.windows {
		if window.ID == id {
			return nil
		}
	}
	return application.ErrNotFound
}

type limiterStub struct {
	allow bool
	keys  []string
}

func (l *limiterStub) Allow(_ context.Context, key string) bool {
	l.keys = append(l.keys, key)
	return l.allow
}

type testServer struct {
	handler      http.Handler
	rooms        *roomServiceStub
	availability *availabilityServiceStub
}

func newTestServer(t *testing.T, limiter RateLimiter) *testServer {
	t.Helper()
	logger := discardLogger()
	rooms := &roomServiceStub{}
	windows := &availabilityServiceStub{}
	auth := authServiceStub{result: application.LoginResult{
		Token:     "signed-token",
		ExpiresAt: stubNow.Add(24 * time.Hour),
		User:      application.DefaultLodgeUser(),
	}}

	handler := NewRouter(RouterConfig{
		Auth:          NewAuthHandler(auth, nil, logger),
		Rooms:         NewRoomHandler(rooms, logger),
		Availability:  NewAvailabilityHandler(windows, logger),
		Health:        NewHealthHandler(logger),
		Metrics:       http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "# metrics\n") }),
		Authenticator: authenticatorStub{},
		LoginLimiter:  limiter,
		Logger:        logger,
	})
	return &testServer{handler: handler, rooms: rooms, availability: windows}
}

func (s *testServer) do(t *testing.T, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+validToken)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Errors  []validation.Issue `json:"errors"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	if body.Status != "error" {
		t.Fatalf("expected status \"error\", got %q", body.Status)
	}
	return body
}

func findIssue(t *testing.T, body errorBody, field string) validation.Issue {
	t.Helper()
	for _, issue := range body.Errors {
		if issue.Field() == field {
			return issue
		}
	}
	t.Fatalf("no issue on %q in %+v", field, body.Errors)
	return validation.Issue{}
}

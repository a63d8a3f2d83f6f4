// Package client is a typed client for the lodge API. Authentication state is an
// explicit Session held by the Client and persisted through a SessionStore.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Client calls the lodge API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	store   SessionStore
	now     func() time.Time

	mu      sync.RWMutex
	session *Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSessionStore persists logins and clears rejected sessions.
func WithSessionStore(store SessionStore) Option {
	return func(c *Client) { c.store = store }
}

// WithSession starts the client with an existing session.
func WithSession(session *Session) Option {
	return func(c *Client) { c.session = session }
}

// WithClock overrides the clock used to expire sessions.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a client for the API at baseURL, for example "http://localhost:3000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", baseURL)
	}

	c := &Client{baseURL: u, http: http.DefaultClient, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// RequireSession is the route guard: it returns ErrNoSession when no usable
// token is held.
func (c *Client) RequireSession() (*Session, error) {
	session := c.Session()
	if !session.Active(c.now()) {
		return nil, ErrNoSession
	}
	return session, nil
}

// Login exchanges credentials for a session and stores it.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password}, &resp, false); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("client: login response carried no token")
	}

	session := &Session{Token: resp.Token, ExpiresAt: resp.ExpiresAt, User: resp.User}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(session); err != nil {
			return session, fmt.Errorf("save session: %w", err)
		}
	}
	return session, nil
}

// Logout forgets the session. Tokens are stateless, so the server is not called.
func (c *Client) Logout() error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	if c.store != nil {
		return c.store.Clear()
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (string, error) {
	var resp healthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp, false); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	if err := c.do(ctx, http.MethodGet, "/api/rooms", nil, &rooms, true); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) GetRoom(ctx context.Context, id int64) (Room, error) {
	var room Room
	err := c.do(ctx, http.MethodGet, roomPath(id), nil, &room, true)
	return room, err
}

func (c *Client) CreateRoom(ctx context.Context, form RoomForm) (Room, error) {
	var room Room
	err := c.do(ctx, http.MethodPost, "/api/rooms", form, &room, true)
	return room, err
}

func (c *Client) UpdateRoom(ctx context.Context, id int64, form RoomForm) (Room, error) {
	var room Room
	err := c.do(ctx, http.MethodPut, roomPath(id), form, &room, true)
	return room, err
}

func (c *Client) DeleteRoom(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, roomPath(id), nil, nil, true)
}

func (c *Client) ListAvailability(ctx context.Context) ([]Availability, error) {
	var windows []Availability
	if err := c.do(ctx, http.MethodGet, "/api/availability", nil, &windows, true); err != nil {
		return nil, err
	}
	return windows, nil
}

func (c *Client) CreateAvailability(ctx context.Context, form AvailabilityForm) (Availability, error) {
	var window Availability
	err := c.do(ctx, http.MethodPost, "/api/availability", form, &window, true)
	return window, err
}

func (c *Client) UpdateAvailability(ctx context.Context, id int64, form AvailabilityForm) (Availability, error) {
	var window Availability
	err := c.do(ctx, http.MethodPut, availabilityPath(id), form, &window, true)
	return window, err
}

func (c *Client) DeleteAvailability(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, availabilityPath(id), nil, nil, true)
}

// LoadAvailabilityView fetches rooms and availability in parallel.
func (c *Client) LoadAvailabilityView(ctx context.Context) (AvailabilityView, error) {
	var view AvailabilityView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rooms, err := c.ListRooms(gctx)
		view.Rooms = rooms
		return err
	})
	g.Go(func() error {
		windows, err := c.ListAvailability(gctx)
		view.Availability = windows
		return err
	})
	if err := g.Wait(); err != nil {
		return AvailabilityView{}, err
	}
	return view, nil
}

func roomPath(id int64) string {
	return "/api/rooms/" + strconv.FormatInt(id, 10)
}

func availabilityPath(id int64) string {
	return "/api/availability/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, authenticated bool) error {
	var token string
	if authenticated {
		session, err := c.RequireSession()
		if err != nil {
			return err
		}
		token = session.Token
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		if authenticated && resp.StatusCode == http.StatusUnauthorized {
			if clearErr := c.Logout(); clearErr != nil {
				return errors.Join(fmt.Errorf("%w: %w", ErrSessionExpired, apiErr), clearErr)
			}
			return fmt.Errorf("%w: %w", ErrSessionExpired, apiErr)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}
	if body.Message != "" {
		apiErr.Message = body.Message
	}
	apiErr.Issues = body.Errors
	return apiErr
}

package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSession is returned when an authenticated call is made without a token.
	ErrNoSession = errors.New("client: not logged in")
	// ErrSessionExpired is returned when the server rejected the stored token.
	// The session has been cleared by the time the caller sees it.
	ErrSessionExpired = errors.New("client: session expired")
)

// Issue is one field problem reported by the API.
type Issue struct {
	Code     string   `json:"code"`
	Expected string   `json:"expected,omitempty"`
	Received string   `json:"received,omitempty"`
	Path     []string `json:"path"`
	Message  string   `json:"message"`
}

// APIError is a non-2xx API response.
type APIError struct {
	Status  int
	Message string
	Issues  []Issue
}

func (e *APIError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s (%d field issues)", e.Status, e.Message, len(e.Issues))
}

// FieldErrors maps each dotted field path to its first message. Issues without
// a path are collected under "".
func (e *APIError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Issues))
	for _, issue := range e.Issues {
		field := strings.Join(issue.Path, ".")
		if _, seen := out[field]; !seen {
			out[field] = issue.Message
		}
	}
	return out
}

type errorBody struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Errors  []Issue `json:"errors"`
}

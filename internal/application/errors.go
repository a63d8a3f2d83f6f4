package application

import (
	"errors"
	"strings"

	"github.com/example/lodge-manager/internal/validation"
)

var (
	// ErrUnauthorized is returned when the caller presents no valid token.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when a login email/password pair is rejected.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
)

// ValidationError captures field level issues that callers can surface to users.
type ValidationError struct {
	Issues []validation.Issue
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.Issues) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.Issues))
	for _, issue := range v.Issues {
		fields = append(fields, issue.Field())
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Issues) > 0
}

// add records an issue on field.
func (v *ValidationError) add(code, field, message string) {
	path := []string{}
	if field != "" {
		path = strings.Split(field, ".")
	}
	v.Issues = append(v.Issues, validation.Issue{Code: code, Path: path, Message: message})
}

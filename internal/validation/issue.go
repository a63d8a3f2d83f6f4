// Package validation decodes JSON request bodies into typed schemas and reports
// every rule violation as a structured Issue.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeInvalidType      = "invalid_type"
	CodeTooSmall         = "too_small"
	CodeTooBig           = "too_big"
	CodeInvalidEnumValue = "invalid_enum_value"
	CodeInvalidDate      = "invalid_date"
	CodeInvalidString    = "invalid_string"
	CodeCustom           = "custom"
)

// ErrMalformedBody is returned when the request body is not a JSON object.
var ErrMalformedBody = errors.New("validation: malformed JSON body")

// Issue describes one rule violation on one field.
type Issue struct {
	Code     string   `json:"code"`
	Expected string   `json:"expected,omitempty"`
	Received string   `json:"received,omitempty"`
	Path     []string `json:"path"`
	Message  string   `json:"message"`
}

// Field returns the dotted path of the issue.
func (i Issue) Field() string {
	return strings.Join(i.Path, ".")
}

// Error carries the issues found while validating a payload.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field(), issue.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CustomIssue builds an issue for a rule checked outside the schema, such as a
// lookup against the store.
func CustomIssue(message string, path ...string) Issue {
	return Issue{Code: CodeCustom, Path: path, Message: message}
}

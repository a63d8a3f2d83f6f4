package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed indicates that a migration script could not be applied.
	ErrMigrationFailed = errors.New("migration execution failed")

	// ErrInvalidMigrationFile indicates a malformed file name or empty script.
	ErrInvalidMigrationFile = errors.New("invalid migration file format")

	// ErrDuplicateVersion indicates that two files share a version number.
	ErrDuplicateVersion = errors.New("duplicate migration version")

	// ErrVersionConflict indicates a gap in the sequence or an applied version with no file.
	ErrVersionConflict = errors.New("migration version conflict")
)

// MigrationError wraps a failure with the migration that caused it.
type MigrationError struct {
	Version   string
	Name      string
	Operation string
	Err       error
}

func (e *MigrationError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.Name, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration (%s): %s: %v", e.Name, e.Operation, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

func newMigrationError(version, name, operation string, err error) *MigrationError {
	return &MigrationError{Version: version, Name: name, Operation: operation, Err: err}
}

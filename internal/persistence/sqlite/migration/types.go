package migration

import (
	"embed"
	"time"
)

// Files holds the schema migrations shipped with the binary.
//
//go:embed migrations/*.sql
var Files embed.FS

// Dir is the directory inside Files that holds the migration scripts.
const Dir = "migrations"

// Migration represents a single versioned schema change.
type Migration struct {
	Version     string // e.g. "001"
	Description string
	SQL         string
	Name        string // file name inside the migration FS
	Checksum    string
}

// AppliedMigration is a row from schema_migrations.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status summarises the migration state of a database.
type Status struct {
	CurrentVersion string
	Applied        []AppliedMigration
	Pending        []Migration
}

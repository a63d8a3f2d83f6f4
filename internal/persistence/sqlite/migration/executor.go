package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Executor runs migrations against a SQLite database and tracks them in schema_migrations.
type Executor struct {
	db *sql.DB
}

// NewExecutor creates an Executor for db.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// InitializeVersionTable creates the schema_migrations table if it doesn't exist.
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	const stmt = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT,
			execution_time_ms INTEGER
		)`
	if _, err := e.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

// Apply runs every statement of m and records it, all inside one transaction.
func (e *Executor) Apply(ctx context.Context, m Migration) (err error) {
	start := time.Now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return newMigrationError(m.Version, m.Name, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	for i, stmt := range statements(m.SQL) {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			return newMigrationError(m.Version, m.Name, fmt.Sprintf("execute statement %d", i+1),
				fmt.Errorf("%w: %v", ErrMigrationFailed, execErr))
		}
	}

	const record = `INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`
	appliedAt := time.Now().UTC().Format(time.RFC3339)
	if _, execErr := tx.ExecContext(ctx, record, m.Version, appliedAt, m.Checksum, time.Since(start).Milliseconds()); execErr != nil {
		return newMigrationError(m.Version, m.Name, "record migration", execErr)
	}

	if err = tx.Commit(); err != nil {
		return newMigrationError(m.Version, m.Name, "commit transaction", err)
	}
	return nil
}

// Applied returns all recorded migrations ordered by version.
func (e *Executor) Applied(ctx context.Context) ([]AppliedMigration, error) {
	const query = `
		SELECT version, applied_at, COALESCE(execution_time_ms, 0), COALESCE(checksum, '')
		FROM schema_migrations
		ORDER BY CAST(version AS INTEGER) ASC`

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			a         AppliedMigration
			appliedAt string
			elapsedMs int64
		)
		if err := rows.Scan(&a.Version, &appliedAt, &elapsedMs, &a.Checksum); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		a.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt)
		a.ExecutionTime = time.Duration(elapsedMs) * time.Millisecond
		applied = append(applied, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return applied, nil
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
)

// Manager applies pending migrations from an FS in version order.
type Manager struct {
	executor *Executor
	files    fs.FS
	logger   *slog.Logger
}

// NewManager creates a Manager reading scripts from the Dir directory of files.
func NewManager(db *sql.DB, files fs.FS, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		executor: NewExecutor(db),
		files:    files,
		logger:   logger.With("component", "migration"),
	}
}

// Run executes all pending migrations sequentially. It stops at the first failure.
func (m *Manager) Run(ctx context.Context) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}

	if len(status.Pending) == 0 {
		m.logger.InfoContext(ctx, "schema up to date", "version", status.CurrentVersion)
		return nil
	}

	m.logger.InfoContext(ctx, "applying migrations",
		"current_version", status.CurrentVersion,
		"pending", len(status.Pending),
	)

	for _, migration := range status.Pending {
		if err := m.executor.Apply(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed",
				"version", migration.Version,
				"file", migration.Name,
				"error", err,
			)
			return err
		}
		m.logger.InfoContext(ctx, "migration applied",
			"version", migration.Version,
			"description", migration.Description,
		)
	}

	return nil
}

// Status reports the applied and pending migrations.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}

	available, err := Scan(m.files, Dir)
	if err != nil {
		return Status{}, err
	}

	applied, err := m.executor.Applied(ctx)
	if err != nil {
		return Status{}, err
	}

	if err := validateSequence(available, applied); err != nil {
		return Status{}, err
	}

	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}

	status := Status{Applied: applied}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}
	for _, migration := range available {
		if !done[migration.Version] {
			status.Pending = append(status.Pending, migration)
		}
	}
	return status, nil
}

// validateSequence rejects gaps in the available versions and applied versions with no file.
func validateSequence(available []Migration, applied []AppliedMigration) error {
	known := make(map[int]bool, len(available))
	for i, migration := range available {
		n := versionNumber(migration.Version)
		if i > 0 && n != versionNumber(available[i-1].Version)+1 {
			return fmt.Errorf("%w: missing migration version %03d", ErrVersionConflict, versionNumber(available[i-1].Version)+1)
		}
		known[n] = true
	}

	for _, a := range applied {
		if !known[versionNumber(a.Version)] {
			return fmt.Errorf("%w: applied migration %s has no file", ErrVersionConflict, a.Version)
		}
	}
	return nil
}

// Package migration applies versioned schema changes to the lodge SQLite database.
//
// Migration files are embedded into the binary and follow the naming convention
// {version}_{description}.sql (e.g. "001_create_rooms.sql"). Applied versions are
// tracked in the schema_migrations table so each file runs exactly once.
//
// Example usage:
//
//	manager := migration.NewManager(db, migration.Files, logger)
//	if err := manager.Run(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration

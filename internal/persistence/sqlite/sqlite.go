package sqlite

import (
	"context"
	"log/slog"

	"github.com/example/lodge-manager/internal/persistence"
	"github.com/example/lodge-manager/internal/persistence/sqlite/migration"
)

// Storage is the SQLite-backed persistence.Store.
type Storage struct {
	pool         *ConnectionPool
	rooms        *RoomRepository
	availability *AvailabilityRepository
	logger       *slog.Logger
}

// Open connects to the database described by config. Call Migrate before use.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Storage{
		pool:         pool,
		rooms:        NewRoomRepository(pool),
		availability: NewAvailabilityRepository(pool),
		logger:       logger,
	}, nil
}

// Rooms returns the room repository.
func (s *Storage) Rooms() persistence.RoomRepository {
	return s.rooms
}

// Availability returns the availability repository.
func (s *Storage) Availability() persistence.AvailabilityRepository {
	return s.availability
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	return migration.NewManager(s.pool.DB(), migration.Files, s.logger).Run(ctx)
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

var _ persistence.Store = (*Storage)(nil)

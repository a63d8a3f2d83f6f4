package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/lodge-manager/internal/persistence"
	"github.com/example/lodge-manager/internal/persistence/sqlite"
)

// SQLiteHarness provides a migrated SQLite store on a temporary file.
type SQLiteHarness struct {
	Store        *sqlite.Storage
	Rooms        persistence.RoomRepository
	Availability persistence.AvailabilityRepository
	Path         string
}

// NewSQLiteHarness opens and migrates a store under tb.TempDir. The store is
// closed through tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "lodge.db")
	storage, err := sqlite.Open(context.Background(), sqlite.TempFileTestConfig(path), nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return &SQLiteHarness{
		Store:        storage,
		Rooms:        storage.Rooms(),
		Availability: storage.Availability(),
		Path:         path,
	}
}

// SeedRoom stores a room built from opts.
func (h *SQLiteHarness) SeedRoom(tb testing.TB, opts ...RoomOption) persistence.Room {
	tb.Helper()
	room, err := h.Rooms.CreateRoom(context.Background(), NewRoomFixture(opts...).Persistence())
	if err != nil {
		tb.Fatalf("failed to seed room: %v", err)
	}
	return room
}

// SeedAvailability stores a window for roomID built from opts.
func (h *SQLiteHarness) SeedAvailability(tb testing.TB, roomID int64, opts ...AvailabilityOption) persistence.Availability {
	tb.Helper()
	window, err := h.Availability.CreateAvailability(context.Background(), NewAvailabilityFixture(roomID, opts...).Persistence())
	if err != nil {
		tb.Fatalf("failed to seed availability: %v", err)
	}
	return window
}

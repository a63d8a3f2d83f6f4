package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/lodge-manager/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lodge.db")
	storage, err := Open(context.Background(), TempFileTestConfig(path), nil)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return storage
}

func strPtr(s string) *string { return &s }

func createRoom(t *testing.T, s *Storage, name string) persistence.Room {
	t.Helper()
	room, err := s.Rooms().CreateRoom(context.Background(), persistence.Room{
		Name:     name,
		Capacity: 4,
		Type:     "cabin",
	})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	return room
}

func TestRoomRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	repo := storage.Rooms()

	created, err := repo.CreateRoom(ctx, persistence.Room{
		Name:        "Cabin 1",
		Capacity:    4,
		Type:        "cabin",
		Description: strPtr("by the lake"),
	})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected store-assigned id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps, got %#v", created)
	}

	fetched, err := repo.GetRoom(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if fetched.Name != "Cabin 1" || fetched.Capacity != 4 || fetched.Type != "cabin" {
		t.Fatalf("unexpected room: %#v", fetched)
	}
	if fetched.Description == nil || *fetched.Description != "by the lake" {
		t.Fatalf("expected description to round trip, got %v", fetched.Description)
	}
	if !fetched.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", fetched.CreatedAt, created.CreatedAt)
	}

	fetched.Name = "Cabin One"
	fetched.Description = nil
	fetched.UpdatedAt = created.UpdatedAt.Add(time.Minute)
	updated, err := repo.UpdateRoom(ctx, fetched)
	if err != nil {
		t.Fatalf("UpdateRoom failed: %v", err)
	}
	if updated.Name != "Cabin One" || updated.Description != nil {
		t.Fatalf("unexpected updated room: %#v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated_at to advance, got %v", updated.UpdatedAt)
	}
}

func TestRoomRepositoryListOrderedByID(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	empty, err := storage.Rooms().ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}

	first := createRoom(t, storage, "Zeta")
	second := createRoom(t, storage, "Alpha")

	for i := 0; i < 2; i++ {
		rooms, err := storage.Rooms().ListRooms(ctx)
		if err != nil {
			t.Fatalf("ListRooms failed: %v", err)
		}
		if len(rooms) != 2 || rooms[0].ID != first.ID || rooms[1].ID != second.ID {
			t.Fatalf("unexpected order: %#v", rooms)
		}
	}
}

func TestRoomRepositoryMissingRows(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	repo := storage.Rooms()

	if _, err := repo.GetRoom(ctx, 42); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from GetRoom, got %v", err)
	}
	if _, err := repo.UpdateRoom(ctx, persistence.Room{ID: 42, Name: "x", Capacity: 1, Type: "t"}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from UpdateRoom, got %v", err)
	}
	if err := repo.DeleteRoom(ctx, 42); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from DeleteRoom, got %v", err)
	}
}

func TestRoomRepositoryRejectsInvalidCapacity(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.Rooms().CreateRoom(context.Background(), persistence.Room{Name: "a", Capacity: 0, Type: "t"})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestRoomRepositoryEmptyNameHitsCheckConstraint(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.Rooms().CreateRoom(context.Background(), persistence.Room{Name: "", Capacity: 2, Type: "t"})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestAvailabilityRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	room := createRoom(t, storage, "Cabin 1")
	repo := storage.Availability()

	start := time.Date(2025, time.June, 1, 14, 0, 0, 0, time.UTC)
	created, err := repo.CreateAvailability(ctx, persistence.Availability{
		RoomID:    room.ID,
		StartDate: start,
		EndDate:   start.Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateAvailability failed: %v", err)
	}
	if created.Status != persistence.StatusAvailable {
		t.Fatalf("expected default status available, got %q", created.Status)
	}
	if created.Room.ID != room.ID || created.Room.Name != "Cabin 1" {
		t.Fatalf("expected embedded room, got %#v", created.Room)
	}
	if !created.StartDate.Equal(start) {
		t.Fatalf("start date mismatch: %v", created.StartDate)
	}

	created.Status = persistence.StatusMaintenance
	created.EndDate = start.Add(72 * time.Hour)
	updated, err := repo.UpdateAvailability(ctx, created)
	if err != nil {
		t.Fatalf("UpdateAvailability failed: %v", err)
	}
	if updated.Status != persistence.StatusMaintenance || !updated.EndDate.Equal(start.Add(72*time.Hour)) {
		t.Fatalf("unexpected updated window: %#v", updated)
	}

	if err := repo.DeleteAvailability(ctx, created.ID); err != nil {
		t.Fatalf("DeleteAvailability failed: %v", err)
	}
	if _, err := repo.GetAvailability(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteAvailability(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestAvailabilityRepositoryUnknownRoom(t *testing.T) {
	storage := newTestStorage(t)

	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	_, err := storage.Availability().CreateAvailability(context.Background(), persistence.Availability{
		RoomID:    999,
		StartDate: start,
		EndDate:   start.Add(time.Hour),
	})
	if !errors.Is(err, persistence.ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}
}

func TestAvailabilityRepositoryListOrderedByStartDate(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	room := createRoom(t, storage, "Cabin 1")
	repo := storage.Availability()

	base := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	offsets := []time.Duration{72 * time.Hour, 0, 24 * time.Hour}
	for _, offset := range offsets {
		if _, err := repo.CreateAvailability(ctx, persistence.Availability{
			RoomID:    room.ID,
			StartDate: base.Add(offset),
			EndDate:   base.Add(offset + time.Hour),
			Status:    persistence.StatusBooked,
		}); err != nil {
			t.Fatalf("CreateAvailability failed: %v", err)
		}
	}

	windows, err := repo.ListAvailability(ctx)
	if err != nil {
		t.Fatalf("ListAvailability failed: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	for i := 1; i < len(windows); i++ {
		if windows[i].StartDate.Before(windows[i-1].StartDate) {
			t.Fatalf("windows not ordered by start date: %#v", windows)
		}
	}
}

func TestDeleteRoomCascadesToAvailability(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	room := createRoom(t, storage, "Cabin 1")
	other := createRoom(t, storage, "Cabin 2")

	start := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []int64{room.ID, other.ID} {
		if _, err := storage.Availability().CreateAvailability(ctx, persistence.Availability{
			RoomID:    id,
			StartDate: start,
			EndDate:   start.Add(time.Hour),
		}); err != nil {
			t.Fatalf("CreateAvailability failed: %v", err)
		}
	}

	if err := storage.Rooms().DeleteRoom(ctx, room.ID); err != nil {
		t.Fatalf("DeleteRoom failed: %v", err)
	}

	windows, err := storage.Availability().ListAvailability(ctx)
	if err != nil {
		t.Fatalf("ListAvailability failed: %v", err)
	}
	if len(windows) != 1 || windows[0].RoomID != other.ID {
		t.Fatalf("expected only the other room's window to remain, got %#v", windows)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	storage := newTestStorage(t)

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	if err := storage.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "empty path", mutate: func(c *Config) { c.Path = " " }, wantErr: true},
		{name: "bad journal mode", mutate: func(c *Config) { c.JournalMode = "SIDEWAYS" }, wantErr: true},
		{name: "bad synchronous", mutate: func(c *Config) { c.Synchronous = "SOMETIMES" }, wantErr: true},
		{name: "negative busy timeout", mutate: func(c *Config) { c.BusyTimeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig("lodge.db")
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDSNEnablesForeignKeys(t *testing.T) {
	t.Parallel()

	dsn := DefaultConfig("data/lodge.db").DSN()
	if !strings.HasPrefix(dsn, "data/lodge.db?") {
		t.Fatalf("unexpected DSN prefix: %s", dsn)
	}
	for _, want := range []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(30000)", "_pragma=journal_mode(WAL)"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("expected %s in DSN %s", want, dsn)
		}
	}
}

package persistence

import "context"

// RoomRepository exposes CRUD operations for rooms.
//
// CreateRoom and UpdateRoom return the stored row so callers observe
// store-assigned identifiers and timestamps.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	// DeleteRoom removes the room together with its availability windows.
	DeleteRoom(ctx context.Context, id int64) error
}

// AvailabilityRepository exposes CRUD operations for availability windows.
// Every returned Availability carries its owning Room.
type AvailabilityRepository interface {
	CreateAvailability(ctx context.Context, availability Availability) (Availability, error)
	UpdateAvailability(ctx context.Context, availability Availability) (Availability, error)
	GetAvailability(ctx context.Context, id int64) (Availability, error)
	ListAvailability(ctx context.Context) ([]Availability, error)
	DeleteAvailability(ctx context.Context, id int64) error
}

// Store bundles the repositories offered by a backend together with its lifecycle.
type Store interface {
	Rooms() RoomRepository
	Availability() AvailabilityRepository
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

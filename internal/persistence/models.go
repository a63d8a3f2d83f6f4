package persistence

import "time"

// AvailabilityStatus enumerates the states an availability window can be in.
type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "available"
	StatusBooked      AvailabilityStatus = "booked"
	StatusMaintenance AvailabilityStatus = "maintenance"
)

// Valid reports whether the status is one of the known values.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusMaintenance:
		return true
	}
	return false
}

// Room represents a lodge room catalog entry.
type Room struct {
	ID          int64
	Name        string
	Capacity    int
	Type        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Availability represents a dated window attached to a room.
// Room is populated by read operations that join the owning room.
type Availability struct {
	ID        int64
	RoomID    int64
	StartDate time.Time
	EndDate   time.Time
	Status    AvailabilityStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	Room      Room
}

package application

import "time"

// Principal represents the authenticated caller of a service method.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

// User is the account returned from a successful login.
type User struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// LoginResult bundles the issued token with the user it was issued for.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// AvailabilityStatus enumerates the states of an availability window.
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

// Room represents a bookable lodge room.
type Room struct {
	ID          int64
	Name        string
	Capacity    int
	Type        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoomInput captures the fields required to create a room.
type RoomInput struct {
	Name        string
	Capacity    int
	Type        string
	Description *string
}

// RoomPatch captures a partial room update. Nil fields are left unchanged.
type RoomPatch struct {
	Name        *string
	Capacity    *int
	Type        *string
	Description *string
}

// Availability represents a dated window for a room, with the room embedded.
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

// AvailabilityInput captures the fields required to create a window.
// An empty Status means StatusAvailable.
type AvailabilityInput struct {
	RoomID    int64
	StartDate time.Time
	EndDate   time.Time
	Status    AvailabilityStatus
}

// AvailabilityPatch captures a partial window update. Nil fields are left unchanged.
type AvailabilityPatch struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    *AvailabilityStatus
}

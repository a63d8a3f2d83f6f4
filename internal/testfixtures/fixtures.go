// Package testfixtures builds deterministic rooms, availability windows and
// migrated SQLite stores for tests that span several packages.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/lodge-manager/internal/application"
	"github.com/example/lodge-manager/internal/persistence"
)

var roomCounter uint64

var referenceTime = time.Date(2025, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// Day returns midnight UTC of the given day offset from ReferenceTime's date.
func Day(offset int) time.Time {
	base := time.Date(referenceTime.Year(), referenceTime.Month(), referenceTime.Day(), 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room record.
type RoomFixture struct {
	Name        string
	Capacity    int
	Type        string
	Description *string
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a room fixture with a unique name.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		Name:     fmt.Sprintf("Cabin %03d", idx),
		Capacity: int(2 + idx%4),
		Type:     "cabin",
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomName overrides the generated name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomType overrides the room type.
func WithRoomType(roomType string) RoomOption {
	return func(f *RoomFixture) {
		f.Type = roomType
	}
}

// WithRoomDescription sets the description.
func WithRoomDescription(description string) RoomOption {
	return func(f *RoomFixture) {
		f.Description = &description
	}
}

// Input returns the fixture as a create request for the room service.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Name:        f.Name,
		Capacity:    f.Capacity,
		Type:        f.Type,
		Description: cloneString(f.Description),
	}
}

// Persistence returns the fixture as an unsaved persistence row.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		Name:        f.Name,
		Capacity:    f.Capacity,
		Type:        f.Type,
		Description: cloneString(f.Description),
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
}

// --------------------------- Availability fixtures ---------------------------

// AvailabilityFixture represents a window attached to a room.
type AvailabilityFixture struct {
	RoomID    int64
	StartDate time.Time
	EndDate   time.Time
	Status    application.AvailabilityStatus
}

// AvailabilityOption configures the generated availability fixture.
type AvailabilityOption func(*AvailabilityFixture)

// NewAvailabilityFixture returns a two-night available window for roomID
// starting one day after ReferenceTime.
func NewAvailabilityFixture(roomID int64, opts ...AvailabilityOption) AvailabilityFixture {
	fixture := AvailabilityFixture{
		RoomID:    roomID,
		StartDate: Day(1),
		EndDate:   Day(3),
		Status:    application.StatusAvailable,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithDates overrides the window bounds.
func WithDates(start, end time.Time) AvailabilityOption {
	return func(f *AvailabilityFixture) {
		f.StartDate = start
		f.EndDate = end
	}
}

// WithStatus overrides the status.
func WithStatus(status application.AvailabilityStatus) AvailabilityOption {
	return func(f *AvailabilityFixture) {
		f.Status = status
	}
}

// Input returns the fixture as a create request for the availability service.
func (f AvailabilityFixture) Input() application.AvailabilityInput {
	return application.AvailabilityInput{
		RoomID:    f.RoomID,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		Status:    f.Status,
	}
}

// Persistence returns the fixture as an unsaved persistence row.
func (f AvailabilityFixture) Persistence() persistence.Availability {
	return persistence.Availability{
		RoomID:    f.RoomID,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		Status:    persistence.AvailabilityStatus(f.Status),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

package validation

import "strings"

// RoomCreate is the body of POST /api/rooms.
type RoomCreate struct {
	Name        *string `json:"name" validate:"required,min=1"`
	Capacity    *int    `json:"capacity" validate:"required,gt=0"`
	Type        *string `json:"type" validate:"required,min=1"`
	Description *string `json:"description"`
}

// Normalize trims surrounding whitespace from text fields.
func (r *RoomCreate) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Type)
	trimPtr(r.Description)
}

// RoomUpdate is the body of PUT /api/rooms/:id. Absent fields stay unchanged.
type RoomUpdate struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Capacity    *int    `json:"capacity" validate:"omitempty,gt=0"`
	Type        *string `json:"type" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

// Normalize trims surrounding whitespace from text fields.
func (r *RoomUpdate) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Type)
	trimPtr(r.Description)
}

// AvailabilityCreate is the body of POST /api/availability.
type AvailabilityCreate struct {
	RoomID    *int64  `json:"roomId" validate:"required,gt=0"`
	StartDate *string `json:"startDate" validate:"required,isodate"`
	EndDate   *string `json:"endDate" validate:"required,isodate"`
	Status    *string `json:"status" validate:"omitempty,oneof=available booked maintenance"`
}

// Normalize trims the date strings.
func (a *AvailabilityCreate) Normalize() {
	trimPtr(a.StartDate)
	trimPtr(a.EndDate)
	trimPtr(a.Status)
}

// AvailabilityUpdate is the body of PUT /api/availability/:id.
type AvailabilityUpdate struct {
	StartDate *string `json:"startDate" validate:"omitempty,isodate"`
	EndDate   *string `json:"endDate" validate:"omitempty,isodate"`
	Status    *string `json:"status" validate:"omitempty,oneof=available booked maintenance"`
}

// Normalize trims the date strings.
func (a *AvailabilityUpdate) Normalize() {
	trimPtr(a.StartDate)
	trimPtr(a.EndDate)
	trimPtr(a.Status)
}

// Normalizer is implemented by schemas that clean their fields before validation.
type Normalizer interface {
	Normalize()
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// messages overrides the default issue message for a field and rule.
var messages = map[string]string{
	"name.min":           "Room name is required",
	"type.min":           "Room type is required",
	"capacity.gt":        "Capacity must be a positive number",
	"roomId.gt":          "Room ID is required",
	"endDate.date_order": "End date must be after start date",
}

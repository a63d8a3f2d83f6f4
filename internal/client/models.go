package client

import "time"

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type Room struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	Type        string    `json:"type"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Availability struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"roomId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Room      Room      `json:"room"`
}

// RoomForm is the shared create/update form. On update, nil fields are not sent.
type RoomForm struct {
	Name        *string `json:"name,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AvailabilityForm is the shared create/update form for windows. Dates accept
// RFC 3339, "2006-01-02T15:04" or "2006-01-02".
type AvailabilityForm struct {
	RoomID    *int64  `json:"roomId,omitempty"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	Status    *string `json:"status,omitempty"`
}

// AvailabilityView is everything the availability screen needs.
type AvailabilityView struct {
	Rooms        []Room
	Availability []Availability
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type healthResponse struct {
	Status string `json:"status"`
}

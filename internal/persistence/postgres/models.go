package postgres

import (
	"time"

	"github.com/example/lodge-manager/internal/persistence"
)

// RoomModel is the GORM mapping of the rooms table.
type RoomModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"not null"`
	Capacity    int       `gorm:"not null;check:chk_rooms_capacity,capacity > 0"`
	Type        string    `gorm:"not null"`
	Description *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (RoomModel) TableName() string { return "rooms" }

// AvailabilityModel is the GORM mapping of the availability table.
type AvailabilityModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	RoomID    int64     `gorm:"not null;index"`
	Room      RoomModel `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	StartDate time.Time `gorm:"not null;index"`
	EndDate   time.Time `gorm:"not null"`
	Status    string    `gorm:"not null;default:available;check:chk_availability_status,status IN ('available','booked','maintenance')"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (AvailabilityModel) TableName() string { return "availability" }

func roomToModel(r persistence.Room) RoomModel {
	return RoomModel{
		ID:          r.ID,
		Name:        r.Name,
		Capacity:    r.Capacity,
		Type:        r.Type,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func roomFromModel(m RoomModel) persistence.Room {
	return persistence.Room{
		ID:          m.ID,
		Name:        m.Name,
		Capacity:    m.Capacity,
		Type:        m.Type,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func availabilityToModel(a persistence.Availability) AvailabilityModel {
	return AvailabilityModel{
		ID:        a.ID,
		RoomID:    a.RoomID,
		StartDate: a.StartDate.UTC(),
		EndDate:   a.EndDate.UTC(),
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func availabilityFromModel(m AvailabilityModel) persistence.Availability {
	return persistence.Availability{
		ID:        m.ID,
		RoomID:    m.RoomID,
		StartDate: m.StartDate.UTC(),
		EndDate:   m.EndDate.UTC(),
		Status:    persistence.AvailabilityStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
		Room:      roomFromModel(m.Room),
	}
}

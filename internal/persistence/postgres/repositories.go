package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/lodge-manager/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository with GORM.
type RoomRepository struct {
	db *gorm.DB
}

// CreateRoom inserts a room and returns it with its generated id.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	if room.Capacity <= 0 {
		return persistence.Room{}, persistence.ErrConstraintViolation
	}
	model := roomToModel(room)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return persistence.Room{}, mapError(err)
	}
	return roomFromModel(model), nil
}

// UpdateRoom overwrites the mutable columns of an existing room.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	if room.Capacity <= 0 {
		return persistence.Room{}, persistence.ErrConstraintViolation
	}
	updatedAt := room.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).Model(&RoomModel{}).
		Where("id = ?", room.ID).
		Updates(map[string]any{
			"name":        room.Name,
			"capacity":    room.Capacity,
			"type":        room.Type,
			"description": room.Description,
			"updated_at":  updatedAt,
		})
	if result.Error != nil {
		return persistence.Room{}, mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return r.GetRoom(ctx, room.ID)
}

// GetRoom returns a room by id.
func (r *RoomRepository) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return persistence.Room{}, mapError(err)
	}
	return roomFromModel(model), nil
}

// ListRooms returns all rooms ordered by id.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	var models []RoomModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, mapError(err)
	}
	res := make([]persistence.Room, 0, len(models))
	for _, m := range models {
		res = append(res, roomFromModel(m))
	}
	return res, nil
}

// DeleteRoom removes a room; the foreign key cascades to its availability.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&RoomModel{}, "id = ?", id)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// AvailabilityRepository implements persistence.AvailabilityRepository with GORM.
type AvailabilityRepository struct {
	db *gorm.DB
}

// CreateAvailability inserts a window and returns it with its room preloaded.
func (r *AvailabilityRepository) CreateAvailability(ctx context.Context, a persistence.Availability) (persistence.Availability, error) {
	if a.Status == "" {
		a.Status = persistence.StatusAvailable
	}
	if !a.Status.Valid() || !a.StartDate.Before(a.EndDate) {
		return persistence.Availability{}, persistence.ErrConstraintViolation
	}
	model := availabilityToModel(a)
	model.ID = 0
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		return persistence.Availability{}, mapError(err)
	}
	return r.GetAvailability(ctx, model.ID)
}

// UpdateAvailability overwrites dates and status of an existing window.
func (r *AvailabilityRepository) UpdateAvailability(ctx context.Context, a persistence.Availability) (persistence.Availability, error) {
	if !a.Status.Valid() || !a.StartDate.Before(a.EndDate) {
		return persistence.Availability{}, persistence.ErrConstraintViolation
	}
	updatedAt := a.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).Model(&AvailabilityModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"start_date": a.StartDate.UTC(),
			"end_date":   a.EndDate.UTC(),
			"status":     string(a.Status),
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return persistence.Availability{}, mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return persistence.Availability{}, persistence.ErrNotFound
	}
	return r.GetAvailability(ctx, a.ID)
}

// GetAvailability returns a window by id with its room preloaded.
func (r *AvailabilityRepository) GetAvailability(ctx context.Context, id int64) (persistence.Availability, error) {
	var model AvailabilityModel
	if err := r.db.WithContext(ctx).Preload("Room").First(&model, "id = ?", id).Error; err != nil {
		return persistence.Availability{}, mapError(err)
	}
	return availabilityFromModel(model), nil
}

// ListAvailability returns every window ordered by start date, then id.
func (r *AvailabilityRepository) ListAvailability(ctx context.Context) ([]persistence.Availability, error) {
	var models []AvailabilityModel
	if err := r.db.WithContext(ctx).Preload("Room").Order("start_date ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, mapError(err)
	}
	res := make([]persistence.Availability, 0, len(models))
	for _, m := range models {
		res = append(res, availabilityFromModel(m))
	}
	return res, nil
}

// DeleteAvailability removes a window by id.
func (r *AvailabilityRepository) DeleteAvailability(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&AvailabilityModel{}, "id = ?", id)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

var (
	_ persistence.RoomRepository         = (*RoomRepository)(nil)
	_ persistence.AvailabilityRepository = (*AvailabilityRepository)(nil)
)

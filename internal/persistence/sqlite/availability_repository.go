package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/lodge-manager/internal/persistence"
)

const availabilitySelect = `
	SELECT a.id, a.room_id, a.start_date, a.end_date, a.status, a.created_at, a.updated_at,
	       r.id, r.name, r.capacity, r.type, r.description, r.created_at, r.updated_at
	FROM availability a
	JOIN rooms r ON r.id = a.room_id
`

// AvailabilityRepository implements persistence.AvailabilityRepository using SQLite.
type AvailabilityRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewAvailabilityRepository creates a new SQLite availability repository.
func NewAvailabilityRepository(pool *ConnectionPool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool, now: time.Now}
}

// CreateAvailability inserts a window and returns it joined with its room.
// A missing room yields persistence.ErrForeignKey.
func (r *AvailabilityRepository) CreateAvailability(ctx context.Context, a persistence.Availability) (persistence.Availability, error) {
	if a.Status == "" {
		a.Status = persistence.StatusAvailable
	}
	if !a.Status.Valid() || !a.StartDate.Before(a.EndDate) {
		return persistence.Availability{}, persistence.ErrConstraintViolation
	}

	now := r.now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	const query = `
		INSERT INTO availability (room_id, start_date, end_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.pool.DB().ExecContext(ctx, query,
		a.RoomID,
		formatTime(a.StartDate),
		formatTime(a.EndDate),
		string(a.Status),
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return persistence.Availability{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Availability{}, fmt.Errorf("read inserted availability id: %w", err)
	}

	return r.GetAvailability(ctx, id)
}

// UpdateAvailability overwrites the dates and status of an existing window.
func (r *AvailabilityRepository) UpdateAvailability(ctx context.Context, a persistence.Availability) (persistence.Availability, error) {
	if !a.Status.Valid() || !a.StartDate.Before(a.EndDate) {
		return persistence.Availability{}, persistence.ErrConstraintViolation
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = r.now().UTC()
	}

	const query = `
		UPDATE availability
		SET start_date = ?, end_date = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.DB().ExecContext(ctx, query,
		formatTime(a.StartDate),
		formatTime(a.EndDate),
		string(a.Status),
		formatTime(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return persistence.Availability{}, mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.Availability{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.Availability{}, persistence.ErrNotFound
	}

	return r.GetAvailability(ctx, a.ID)
}

// GetAvailability retrieves a window by id together with its room.
func (r *AvailabilityRepository) GetAvailability(ctx context.Context, id int64) (persistence.Availability, error) {
	a, err := scanAvailability(r.pool.DB().QueryRowContext(ctx, availabilitySelect+` WHERE a.id = ?`, id))
	if err != nil {
		return persistence.Availability{}, mapError(err)
	}
	return a, nil
}

// ListAvailability returns every window ordered by start date, then id.
func (r *AvailabilityRepository) ListAvailability(ctx context.Context) ([]persistence.Availability, error) {
	rows, err := r.pool.DB().QueryContext(ctx, availabilitySelect+` ORDER BY a.start_date ASC, a.id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	windows := make([]persistence.Availability, 0)
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, mapError(err)
		}
		windows = append(windows, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return windows, nil
}

// DeleteAvailability removes a window by id.
func (r *AvailabilityRepository) DeleteAvailability(ctx context.Context, id int64) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM availability WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanAvailability(row rowScanner) (persistence.Availability, error) {
	var (
		a                                persistence.Availability
		status                           string
		start, end, createdAt, updatedAt string
		roomDescription                  sql.NullString
		roomCreatedAt, roomUpdatedAt     string
	)

	if err := row.Scan(
		&a.ID,
		&a.RoomID,
		&start,
		&end,
		&status,
		&createdAt,
		&updatedAt,
		&a.Room.ID,
		&a.Room.Name,
		&a.Room.Capacity,
		&a.Room.Type,
		&roomDescription,
		&roomCreatedAt,
		&roomUpdatedAt,
	); err != nil {
		return persistence.Availability{}, err
	}

	a.Status = persistence.AvailabilityStatus(status)
	if roomDescription.Valid {
		a.Room.Description = &roomDescription.String
	}

	parsed := []struct {
		column string
		value  string
		dest   *time.Time
	}{
		{"start_date", start, &a.StartDate},
		{"end_date", end, &a.EndDate},
		{"created_at", createdAt, &a.CreatedAt},
		{"updated_at", updatedAt, &a.UpdatedAt},
		{"rooms.created_at", roomCreatedAt, &a.Room.CreatedAt},
		{"rooms.updated_at", roomUpdatedAt, &a.Room.UpdatedAt},
	}
	for _, p := range parsed {
		t, err := parseTime(p.column, p.value)
		if err != nil {
			return persistence.Availability{}, err
		}
		*p.dest = t
	}

	return a, nil
}

var _ persistence.AvailabilityRepository = (*AvailabilityRepository)(nil)

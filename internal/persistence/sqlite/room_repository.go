package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/lodge-manager/internal/persistence"
)

const roomColumns = `id, name, capacity, type, description, created_at, updated_at`

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool, now: time.Now}
}

// CreateRoom inserts a new room and returns it with its assigned id.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	if room.Capacity <= 0 {
		return persistence.Room{}, persistence.ErrConstraintViolation
	}

	now := r.now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	if room.UpdatedAt.IsZero() {
		room.UpdatedAt = room.CreatedAt
	}

	const query = `
		INSERT INTO rooms (name, capacity, type, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.pool.DB().ExecContext(ctx, query,
		room.Name,
		room.Capacity,
		room.Type,
		nullString(room.Description),
		formatTime(room.CreatedAt),
		formatTime(room.UpdatedAt),
	)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Room{}, fmt.Errorf("read inserted room id: %w", err)
	}
	room.ID = id
	room.CreatedAt = room.CreatedAt.UTC()
	room.UpdatedAt = room.UpdatedAt.UTC()

	return room, nil
}

// UpdateRoom overwrites the mutable columns of an existing room.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	if room.Capacity <= 0 {
		return persistence.Room{}, persistence.ErrConstraintViolation
	}
	if room.UpdatedAt.IsZero() {
		room.UpdatedAt = r.now().UTC()
	}

	const query = `
		UPDATE rooms
		SET name = ?, capacity = ?, type = ?, description = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.DB().ExecContext(ctx, query,
		room.Name,
		room.Capacity,
		room.Type,
		nullString(room.Description),
		formatTime(room.UpdatedAt),
		room.ID,
	)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.Room{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.Room{}, persistence.ErrNotFound
	}

	return r.GetRoom(ctx, room.ID)
}

// GetRoom retrieves a room by id.
func (r *RoomRepository) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`

	room, err := scanRoom(r.pool.DB().QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Room{}, mapError(err)
	}
	return room, nil
}

// ListRooms returns all rooms ordered by id.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY id ASC`

	rows, err := r.pool.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, mapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return rooms, nil
}

// DeleteRoom removes a room. Its availability windows go with it through ON DELETE CASCADE.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id int64) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
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
	})
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room                 persistence.Room
		description          sql.NullString
		createdAt, updatedAt string
	)

	if err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Capacity,
		&room.Type,
		&description,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Room{}, err
	}

	if description.Valid {
		room.Description = &description.String
	}

	var err error
	if room.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ persistence.RoomRepository = (*RoomRepository)(nil)

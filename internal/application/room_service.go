package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/lodge-manager/internal/persistence"
	"github.com/example/lodge-manager/internal/validation"
)

// RoomRepository captures the persistence operations needed by the room service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	ListRooms(ctx context.Context) ([]Room, error)
}

// RoomService orchestrates validation and persistence for rooms.
type RoomService struct {
	rooms  RoomRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, now func() time.Time, logger *slog.Logger) *RoomService {
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

func (s *RoomService) ready() error {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}
	return nil
}

// ListRooms returns every room ordered by id. The result is never nil.
func (s *RoomService) ListRooms(ctx context.Context) (rooms []Room, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListRooms")
	defer func() {
		if err != nil {
			logger.Log(ctx, LogLevel(err), "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).InfoContext(ctx, "rooms listed")
	}()

	rooms, err = s.rooms.ListRooms(ctx)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}
	if rooms == nil {
		rooms = []Room{}
	}
	return
}

// GetRoom returns a single room.
func (s *RoomService) GetRoom(ctx context.Context, id int64) (Room, error) {
	if err := s.ready(); err != nil {
		return Room{}, err
	}

	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		err = mapRoomRepoError(err)
		if !errors.Is(err, ErrNotFound) {
			s.loggerWith(ctx, "GetRoom", "room_id", id).
				Log(ctx, LogLevel(err), "failed to get room", "error", err, "error_kind", ErrorKind(err))
		}
		return Room{}, err
	}
	return room, nil
}

// CreateRoom validates input and persists a new room.
func (s *RoomService) CreateRoom(ctx context.Context, input RoomInput) (room Room, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom")
	defer func() {
		if err != nil {
			logger.Log(ctx, LogLevel(err), "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	candidate := Room{
		Name:        strings.TrimSpace(input.Name),
		Capacity:    input.Capacity,
		Type:        strings.TrimSpace(input.Type),
		Description: normalizeOptionalString(input.Description),
		CreatedAt:   s.now().UTC(),
	}
	candidate.UpdatedAt = candidate.CreatedAt

	if vErr := validateRoom(candidate); vErr.HasErrors() {
		err = vErr
		return
	}

	room, err = s.rooms.CreateRoom(ctx, candidate)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}
	return
}

// UpdateRoom merges the present fields of patch into the stored room.
func (s *RoomService) UpdateRoom(ctx context.Context, id int64, patch RoomPatch) (room Room, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom", "room_id", id)
	defer func() {
		if err != nil {
			logger.Log(ctx, LogLevel(err), "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	var existing Room
	existing, err = s.rooms.GetRoom(ctx, id)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	updated := existing
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Capacity != nil {
		updated.Capacity = *patch.Capacity
	}
	if patch.Type != nil {
		updated.Type = strings.TrimSpace(*patch.Type)
	}
	if patch.Description != nil {
		updated.Description = normalizeOptionalString(patch.Description)
	}
	updated.UpdatedAt = s.now().UTC()

	if vErr := validateRoom(updated); vErr.HasErrors() {
		err = vErr
		return
	}

	room, err = s.rooms.UpdateRoom(ctx, updated)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}
	return
}

// DeleteRoom removes a room together with its availability windows.
func (s *RoomService) DeleteRoom(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "DeleteRoom", "room_id", id)

	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		err = mapRoomRepoError(err)
		logger.Log(ctx, LogLevel(err), "failed to delete room", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "room deleted")
	return nil
}

func validateRoom(room Room) *ValidationError {
	vErr := &ValidationError{}

	if room.Name == "" {
		vErr.add(validation.CodeTooSmall, "name", "Room name is required")
	}
	if room.Capacity <= 0 {
		vErr.add(validation.CodeTooSmall, "capacity", "Capacity must be a positive number")
	}
	if room.Type == "" {
		vErr.add(validation.CodeTooSmall, "type", "Room type is required")
	}

	return vErr
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add(validation.CodeCustom, "", "Room violates a store constraint")
		return vErr
	}
	return err
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/lodge-manager/internal/persistence"
	"github.com/example/lodge-manager/internal/validation"
)

// AvailabilityRepository captures the persistence operations needed by the availability service.
type AvailabilityRepository interface {
	CreateAvailability(ctx context.Context, availability Availability) (Availability, error)
	GetAvailability(ctx context.Context, id int64) (Availability, error)
	UpdateAvailability(ctx context.Context, availability Availability) (Availability, error)
	DeleteAvailability(ctx context.Context, id int64) error
	ListAvailability(ctx context.Context) ([]Availability, error)
}

// RoomLookup resolves a room by id.
type RoomLookup interface {
	GetRoom(ctx context.Context, id int64) (Room, error)
}

const (
	msgRoomDoesNotExist = "Room does not exist"
	msgEndAfterStart    = "End date must be after start date"
)

// AvailabilityService orchestrates validation and persistence for availability windows.
type AvailabilityService struct {
	windows AvailabilityRepository
	rooms   RoomLookup
	now     func() time.Time
	logger  *slog.Logger
}

// NewAvailabilityService constructs an availability service with the provided dependencies.
func NewAvailabilityService(windows AvailabilityRepository, rooms RoomLookup, now func() time.Time) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(windows, rooms, now, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a specified logger.
func NewAvailabilityServiceWithLogger(windows AvailabilityRepository, rooms RoomLookup, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{windows: windows, rooms: rooms, now: now, logger: defaultLogger(logger)}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

func (s *AvailabilityService) ready() error {
	if s == nil {
		return fmt.Errorf("AvailabilityService is nil")
	}
	if s.windows == nil {
		return fmt.Errorf("availability repository not configured")
	}
	return nil
}

// ListAvailability returns every window with its room, ordered by start date then id.
func (s *AvailabilityService) ListAvailability(ctx context.Context) (windows []Availability, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListAvailability")
	defer func() {
		if err != nil {
			logger.Log(ctx, LogLevel(err), "failed to list availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(windows)).InfoContext(ctx, "availability listed")
	}()

	windows, err = s.windows.ListAvailability(ctx)
	if err != nil {
		err = mapAvailabilityRepoError(err)
		return
	}
	if windows == nil {
		windows = []Availability{}
	}
	return
}

// CreateAvailability persists a new window for an existing room.
// Overlapping windows are accepted.
func (s *AvailabilityService) CreateAvailability(ctx context.Context, input AvailabilityInput) (window Availability, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateAvailability", "room_id", input.RoomID)
	defer func() {
		if err != nil {
			logger.Log(ctx, LogLevel(err), "failed to create availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("availability_id", window.ID).InfoContext(ctx, "availability created")
	}()

	status := input.Status
	if status == "" {
		status = StatusAvailable
	}

	candidate := Availability{
		RoomID:    input.RoomID,
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate.UTC(),
		Status:    status,
		CreatedAt: s.now().UTC(),
	}
	candidate.UpdatedAt = candidate.CreatedAt

	vErr := validateWindow(candidate)
	if s.rooms != nil && candidate.RoomID > 0 {
		if _, lookupErr := s.rooms.GetRoom(ctx, candidate.RoomID); lookupErr != nil {
			if !isNotFound(lookupErr) {
				err = lookupErr
				return
			}
			vErr.add(validation.CodeCustom, "roomId", msgRoomDoesNotExist)
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	window, err = s.windows.CreateAvailability(ctx, candidate)
	if err != nil {
		err = mapAvailabilityRepoError(err)
		return
	}
	return
}

// UpdateAvailability merges patch into the stored window and re-checks the date range.
func (s *AvailabilityService) UpdateAvailability(ctx context.Context, id int64, patch AvailabilityPatch) (window Availability, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateAvailability", "availability_id", id)
	defer func() {
		if err != nil {
			logger.Log(ctx, LogLevel(err), "failed to update availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "availability updated")
	}()

	var existing Availability
	existing, err = s.windows.GetAvailability(ctx, id)
	if err != nil {
		err = mapAvailabilityRepoError(err)
		return
	}

	updated := existing
	if patch.StartDate != nil {
		updated.StartDate = patch.StartDate.UTC()
	}
	if patch.EndDate != nil {
		updated.EndDate = patch.EndDate.UTC()
	}
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	updated.UpdatedAt = s.now().UTC()

	if vErr := validateWindow(updated); vErr.HasErrors() {
		err = vErr
		return
	}

	window, err = s.windows.UpdateAvailability(ctx, updated)
	if err != nil {
		err = mapAvailabilityRepoError(err)
		return
	}
	return
}

// DeleteAvailability removes a window.
func (s *AvailabilityService) DeleteAvailability(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "DeleteAvailability", "availability_id", id)

	if err := s.windows.DeleteAvailability(ctx, id); err != nil {
		err = mapAvailabilityRepoError(err)
		logger.Log(ctx, LogLevel(err), "failed to delete availability", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "availability deleted")
	return nil
}

func validateWindow(window Availability) *ValidationError {
	vErr := &ValidationError{}

	if window.RoomID <= 0 {
		vErr.add(validation.CodeTooSmall, "roomId", "Room ID is required")
	}
	if window.StartDate.IsZero() {
		vErr.add(validation.CodeInvalidDate, "startDate", "Invalid date")
	}
	if window.EndDate.IsZero() {
		vErr.add(validation.CodeInvalidDate, "endDate", "Invalid date")
	}
	if !window.StartDate.IsZero() && !window.EndDate.IsZero() && !window.StartDate.Before(window.EndDate) {
		vErr.add(validation.CodeCustom, "endDate", msgEndAfterStart)
	}
	if !window.Status.Valid() {
		vErr.add(validation.CodeInvalidEnumValue, "status", fmt.Sprintf("Invalid enum value. Expected 'available' | 'booked' | 'maintenance', received '%s'", window.Status))
	}

	return vErr
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}

func mapAvailabilityRepoError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrForeignKey) {
		vErr := &ValidationError{}
		vErr.add(validation.CodeCustom, "roomId", msgRoomDoesNotExist)
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add(validation.CodeCustom, "", "Availability violates a store constraint")
		return vErr
	}
	return err
}

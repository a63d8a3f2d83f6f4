package main

import (
	"context"
	"time"

	"github.com/example/lodge-manager/internal/application"
	"github.com/example/lodge-manager/internal/auth"
	"github.com/example/lodge-manager/internal/persistence"
)

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	stored, err := a.repo.CreateRoom(ctx, toPersistenceRoom(room))
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id int64) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	stored, err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room))
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) DeleteRoom(ctx context.Context, id int64) error {
	return a.repo.DeleteRoom(ctx, id)
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	stored, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(stored))
	for _, room := range stored {
		rooms = append(rooms, toApplicationRoom(room))
	}
	return rooms, nil
}

type availabilityRepositoryAdapter struct {
	repo persistence.AvailabilityRepository
}

func newAvailabilityRepositoryAdapter(repo persistence.AvailabilityRepository) *availabilityRepositoryAdapter {
	return &availabilityRepositoryAdapter{repo: repo}
}

func (a *availabilityRepositoryAdapter) CreateAvailability(ctx context.Context, window application.Availability) (application.Availability, error) {
	stored, err := a.repo.CreateAvailability(ctx, toPersistenceAvailability(window))
	if err != nil {
		return application.Availability{}, err
	}
	return toApplicationAvailability(stored), nil
}

func (a *availabilityRepositoryAdapter) GetAvailability(ctx context.Context, id int64) (application.Availability, error) {
	stored, err := a.repo.GetAvailability(ctx, id)
	if err != nil {
		return application.Availability{}, err
	}
	return toApplicationAvailability(stored), nil
}

func (a *availabilityRepositoryAdapter) UpdateAvailability(ctx context.Context, window application.Availability) (application.Availability, error) {
	stored, err := a.repo.UpdateAvailability(ctx, toPersistenceAvailability(window))
	if err != nil {
		return application.Availability{}, err
	}
	return toApplicationAvailability(stored), nil
}

func (a *availabilityRepositoryAdapter) DeleteAvailability(ctx context.Context, id int64) error {
	return a.repo.DeleteAvailability(ctx, id)
}

func (a *availabilityRepositoryAdapter) ListAvailability(ctx context.Context) ([]application.Availability, error) {
	stored, err := a.repo.ListAvailability(ctx)
	if err != nil {
		return nil, err
	}
	windows := make([]application.Availability, 0, len(stored))
	for _, window := range stored {
		windows = append(windows, toApplicationAvailability(window))
	}
	return windows, nil
}

// tokenAdapter exposes an auth.Manager as the application's issuer and verifier.
type tokenAdapter struct {
	manager *auth.Manager
}

func (a tokenAdapter) IssueToken(user application.User) (string, time.Time, error) {
	return a.manager.Issue(auth.Identity{ID: user.ID, Email: user.Email, Role: user.Role})
}

func (a tokenAdapter) VerifyToken(token string) (application.Principal, error) {
	identity, err := a.manager.Verify(token)
	if err != nil {
		return application.Principal{}, err
	}
	return application.Principal{UserID: identity.ID, Email: identity.Email, Role: identity.Role}, nil
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:          model.ID,
		Name:        model.Name,
		Capacity:    model.Capacity,
		Type:        model.Type,
		Description: cloneString(model.Description),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:          room.ID,
		Name:        room.Name,
		Capacity:    room.Capacity,
		Type:        room.Type,
		Description: cloneString(room.Description),
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}
}

func toApplicationAvailability(model persistence.Availability) application.Availability {
	return application.Availability{
		ID:        model.ID,
		RoomID:    model.RoomID,
		StartDate: model.StartDate,
		EndDate:   model.EndDate,
		Status:    application.AvailabilityStatus(model.Status),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		Room:      toApplicationRoom(model.Room),
	}
}

func toPersistenceAvailability(window application.Availability) persistence.Availability {
	return persistence.Availability{
		ID:        window.ID,
		RoomID:    window.RoomID,
		StartDate: window.StartDate,
		EndDate:   window.EndDate,
		Status:    persistence.AvailabilityStatus(window.Status),
		CreatedAt: window.CreatedAt,
		UpdatedAt: window.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/lodge-manager/internal/persistence"
)

var testNow = time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// memoryStore is an in-memory stand-in for both repositories.
type memoryStore struct {
	mu      sync.Mutex
	nextID  int64
	rooms   map[int64]Room
	windows map[int64]Availability

	failWith error
	calls    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rooms: map[int64]Room{}, windows: map[int64]Availability{}}
}

func (m *memoryStore) enter() error {
	m.mu.Lock()
	m.calls++
	return m.failWith
}

func (m *memoryStore) CreateRoom(_ context.Context, room Room) (Room, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return Room{}, err
	}
	m.nextID++
	room.ID = m.nextID
	m.rooms[room.ID] = room
	return room, nil
}

func (m *memoryStore) GetRoom(_ context.Context, id int64) (Room, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return Room{}, err
	}
	room, ok := m.rooms[id]
	if !ok {
		return Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (m *memoryStore) UpdateRoom(_ context.Context, room Room) (Room, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return Room{}, err
	}
	if _, ok := m.rooms[room.ID]; !ok {
		return Room{}, persistence.ErrNotFound
	}
	m.rooms[room.ID] = room
	return room, nil
}

func (m *memoryStore) DeleteRoom(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.rooms, id)
	for wid, w := range m.windows {
		if w.RoomID == id {
			delete(m.windows, wid)
		}
	}
	return nil
}

func (m *memoryStore) ListRooms(_ context.Context) ([]Room, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	var out []Room
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) CreateAvailability(_ context.Context, a Availability) (Availability, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return Availability{}, err
	}
	room, ok := m.rooms[a.RoomID]
	if !ok {
		return Availability{}, persistence.ErrForeignKey
	}
	m.nextID++
	a.ID = m.nextID
	a.Room = room
	m.windows[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetAvailability(_ context.Context, id int64) (Availability, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return Availability{}, err
	}
	a, ok := m.windows[id]
	if !ok {
		return Availability{}, persistence.ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) UpdateAvailability(_ context.Context, a Availability) (Availability, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return Availability{}, err
	}
	if _, ok := m.windows[a.ID]; !ok {
		return Availability{}, persistence.ErrNotFound
	}
	m.windows[a.ID] = a
	return a, nil
}

func (m *memoryStore) DeleteAvailability(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.windows[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.windows, id)
	return nil
}

func (m *memoryStore) ListAvailability(_ context.Context) ([]Availability, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	var out []Availability
	for _, a := range m.windows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

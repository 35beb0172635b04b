package directory

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memRepo struct {
	mu      sync.Mutex
	rooms   map[string]Entry               // code -> entry
	members map[string]map[string]struct{} // code -> set(player)
	players map[string]string              // player -> code
}

// NewMemoryRepo keeps everything in process. TTLs are ignored.
func NewMemoryRepo() Repo {
	return &memRepo{
		rooms:   make(map[string]Entry),
		members: make(map[string]map[string]struct{}),
		players: make(map[string]string),
	}
}

func (m *memRepo) Reserve(ctx context.Context, e Entry, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[e.Code]; ok {
		return false, nil
	}
	m.rooms[e.Code] = e
	return true, nil
}

func (m *memRepo) Get(ctx context.Context, code string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rooms[code]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memRepo) Release(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := range m.members[code] {
		if m.players[p] == code {
			delete(m.players, p)
		}
	}
	delete(m.members, code)
	delete(m.rooms, code)
	return nil
}

func (m *memRepo) Bind(ctx context.Context, playerID, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.players[playerID]; ok && old != code {
		delete(m.members[old], playerID)
	}
	m.players[playerID] = code
	if _, ok := m.members[code]; !ok {
		m.members[code] = make(map[string]struct{})
	}
	m.members[code][playerID] = struct{}{}
	return nil
}

func (m *memRepo) Unbind(ctx context.Context, playerID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.players[playerID] == code {
		delete(m.players, playerID)
	}
	if s, ok := m.members[code]; ok {
		delete(s, playerID)
	}
	return nil
}

func (m *memRepo) PlayerRoom(ctx context.Context, playerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[playerID], nil
}

func (m *memRepo) Members(ctx context.Context, code string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.members[code]))
	for p := range m.members[code] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memRepo) Codes(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.rooms))
	for c := range m.rooms {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

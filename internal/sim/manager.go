package sim

import (
	"sync"

	"go.uber.org/zap"
)

// Manager owns the live rooms. Rooms share nothing; each runs its own
// goroutine.
type Manager struct {
	mu    sync.RWMutex
	cfg   Config
	log   *zap.SugaredLogger
	rooms map[string]*Room
}

func NewManager(cfg Config, log *zap.SugaredLogger) *Manager {
	return &Manager{
		cfg:   cfg.Normalized(),
		log:   log,
		rooms: make(map[string]*Room),
	}
}

// GetOrCreate returns the room, starting its goroutine on first use.
func (m *Manager) GetOrCreate(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		room = NewRoom(id, m.cfg, m.log)
		m.rooms[id] = room
		go room.Run()
		m.log.Infow("room created", "room", id)
	}
	return room
}

// Get returns an existing room without creating one.
func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

// StopAll terminates every room. Used on shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, room := range m.rooms {
		room.Stop()
		delete(m.rooms, id)
	}
}

package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quietdesk/guidechat/internal/convo"
)

var ErrNotFound = errors.New("session not found")

// Manager owns live conversation state, one entry per session, and
// serializes processing per session so exactly one user action mutates a
// conversation at a time. Different sessions run in parallel. State lives in
// memory only; nothing outlives the session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	state    *convo.State
	lastUsed time.Time
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*entry)}
}

// GetOrCreate returns the session id for id, creating a fresh conversation
// under a new id when id is empty or unknown.
func (m *Manager) GetOrCreate(id, greeting string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if e, ok := m.sessions[id]; ok {
			e.lastUsed = time.Now()
			return id
		}
	}
	id = uuid.NewString()
	m.sessions[id] = &entry{
		state:    convo.NewState(greeting),
		lastUsed: time.Now(),
	}
	return id
}

// WithSession executes fn while holding the per-session lock. Concurrent
// actions on the same session are serialized; fn sees and mutates the state
// as a consistent snapshot.
func (m *Manager) WithSession(id string, fn func(st *convo.State) error) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastUsed = time.Now()
	return fn(e.state)
}

// Cleanup removes sessions idle longer than maxAge and reports how many were
// dropped.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	dropped := 0
	for id, e := range m.sessions {
		if now.Sub(e.lastUsed) > maxAge {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

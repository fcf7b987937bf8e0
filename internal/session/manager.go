package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Manager tracks live sessions for the HTTP layer. Map access is
// guarded by the manager; each session additionally gets its own lock
// so two requests for the same session cannot interleave.
type Manager struct {
	deps     Deps
	mu       sync.RWMutex
	sessions map[uuid.UUID]*managed
}

type managed struct {
	mu      sync.Mutex
	session *Session
}

// NewManager creates an empty manager.
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps,
		sessions: make(map[uuid.UUID]*managed),
	}
}

// Create starts a new session and returns its ID.
func (m *Manager) Create() uuid.UUID {
	s := New(m.deps)

	m.mu.Lock()
	m.sessions[s.ID] = &managed{session: s}
	m.mu.Unlock()

	return s.ID
}

// Do runs fn against the named session, holding its lock.
func (m *Manager) Do(id uuid.UUID, fn func(*Session) error) error {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("unknown session: %s", id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// Delete discards a session.
func (m *Manager) Delete(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

package crisis

import (
	"sync"

	"go.uber.org/zap"
)

// SessionManager tracks live support sessions by ID. Sessions exist only in
// process memory; they end when the client discards them or the server stops.
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	completer Completer
	logger    *zap.Logger
}

func NewSessionManager(completer Completer, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		completer: completer,
		logger:    logger,
	}
}

// Start opens a new seeded session. Re-opening an existing session is Get;
// starting never re-seeds a live transcript.
func (m *SessionManager) Start(username string, checkInPending bool) *Session {
	session := NewSession(username, checkInPending, m.completer, m.logger)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session
}

func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	return session, exists
}

func (m *SessionManager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
}

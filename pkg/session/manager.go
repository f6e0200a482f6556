// Package session provides the per-browser-session store with TTL cleanup.
//
// Sessions are process-wide state keyed by an opaque cookie token; access is
// always scoped to one request via that token. A session is created on first
// landing-page visit and destroyed on logout or idle expiry.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/authfold/rolodex/pkg/auth"
)

// Manager holds sessions with TTL cleanup.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager with TTL and starts the cleanup worker.
func NewManager(ttl time.Duration) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go m.cleanupRoutine()
	return m
}

func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.CleanupExpired()
		case <-m.stopCh:
			return
		}
	}
}

// New creates a session with a fresh random token and returns it.
func (m *Manager) New() *Session {
	now := time.Now()
	s := &Session{
		id:      uuid.NewString(),
		created: now,
		updated: now,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	return s
}

// Get retrieves a session by token. Returns (session, true) if found, and
// also updates its last-access timestamp.
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	s.Touch()
	return s, true
}

// Principal resolves a session token to its authenticated principal.
// Returns false for unknown tokens and for sessions that have not completed
// login. Satisfies auth.PrincipalResolver.
func (m *Manager) Principal(token string) (*auth.Principal, bool) {
	s, ok := m.Get(token)
	if !ok {
		return nil, false
	}

	p := s.Principal()
	if p == nil {
		return nil, false
	}
	return p, true
}

// Delete removes a session by token.
func (m *Manager) Delete(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// CleanupExpired removes sessions that have not been accessed within the TTL.
func (m *Manager) CleanupExpired() {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		if s.UpdatedAt().Before(cutoff) {
			delete(m.sessions, token)
		}
	}
}

// Stop stops the cleanup worker.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Package session stores admin session tokens.
package session

import (
	"context"
	"sync"
	"time"
)

// Memory keeps sessions in process memory. Sessions are lost on restart.
type Memory struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{expires: make(map[string]time.Time), now: time.Now}
}

// Put stores token until ttl elapses. Expired tokens are swept on each Put.
func (m *Memory) Put(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for t, exp := range m.expires {
		if !now.Before(exp) {
			delete(m.expires, t)
		}
	}
	m.expires[token] = now.Add(ttl)
	return nil
}

// Exists reports whether token is stored and not expired.
func (m *Memory) Exists(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.expires[token]
	if !ok {
		return false, nil
	}
	if !m.now().Before(exp) {
		delete(m.expires, token)
		return false, nil
	}
	return true, nil
}

// Delete removes token.
func (m *Memory) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expires, token)
	return nil
}

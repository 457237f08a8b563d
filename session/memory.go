package session

import (
	"context"
	"sync"

	"taskpad/domain"
)

// Memory keeps sessions for the lifetime of the process.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]string
}

var _ domain.SessionStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{sessions: map[string]string{}}
}

func (m *Memory) Put(ctx context.Context, token, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = userID
	return nil
}

func (m *Memory) Get(ctx context.Context, token string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userID, ok := m.sessions[token]
	if !ok {
		return "", errNoSession
	}
	return userID, nil
}

func (m *Memory) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

var errNoSession = domain.NewError(domain.ErrNotFound, "session not found")

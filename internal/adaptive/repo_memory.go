package adaptive

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	states map[string]State
	now    func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{states: make(map[string]State), now: func() time.Time { return time.Now().UTC() }}
}

func (m *MemoryRepo) Get(ctx context.Context, userID string) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[userID]
	if !ok {
		return State{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryRepo) Update(ctx context.Context, userID string, fn func(*State) error) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[userID]
	if !ok {
		s = NewState(userID)
	}
	if err := fn(&s); err != nil {
		return State{}, err
	}
	s.UserID = userID
	s.UpdatedAt = m.now()
	m.states[userID] = s
	return s, nil
}

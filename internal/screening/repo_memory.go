package screening

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	results map[string][]Result
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{results: make(map[string][]Result)}
}

func (m *MemoryRepo) Create(ctx context.Context, r Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.UserID] = append(m.results[r.UserID], r)
	return nil
}

func (m *MemoryRepo) Latest(ctx context.Context, userID string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.results[userID]
	if len(rows) == 0 {
		return Result{}, ErrNotFound
	}
	latest := rows[0]
	for _, r := range rows[1:] {
		if !r.CreatedAt.Before(latest.CreatedAt) {
			latest = r
		}
	}
	return latest, nil
}

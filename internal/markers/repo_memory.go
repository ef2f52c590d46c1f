package markers

import (
	"context"
	"sort"
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

func (m *MemoryRepo) ListForUser(ctx context.Context, userID string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := append([]Result(nil), m.results[userID]...)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AssessedAt.Equal(out[j].AssessedAt) {
			return out[i].AssessedAt.After(out[j].AssessedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

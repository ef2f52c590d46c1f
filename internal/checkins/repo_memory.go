package checkins

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]CheckIn
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]CheckIn), now: func() time.Time { return time.Now().UTC() }}
}

func memoryKey(userID, date string) string {
	return userID + "|" + date
}

func (r *MemoryRepo) Upsert(ctx context.Context, c CheckIn) (CheckIn, error) {
	if err := ctx.Err(); err != nil {
		return CheckIn{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	key := memoryKey(c.UserID, c.Date)
	if existing, ok := r.items[key]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = &now
	} else {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.CreatedAt = now
		c.UpdatedAt = nil
	}
	r.items[key] = c
	return c, nil
}

func (r *MemoryRepo) GetForDate(ctx context.Context, userID, date string) (CheckIn, error) {
	if err := ctx.Err(); err != nil {
		return CheckIn{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[memoryKey(userID, date)]
	if !ok {
		return CheckIn{}, ErrNotFound
	}
	return c, nil
}

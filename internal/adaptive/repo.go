package adaptive

import "context"

// Repo stores one State row per user. Update runs fn against the current
// row, or NewState when none exists, and persists the result atomically.
type Repo interface {
	Get(ctx context.Context, userID string) (State, error)
	Update(ctx context.Context, userID string, fn func(*State) error) (State, error)
}

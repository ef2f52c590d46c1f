package checkins

import "context"

// Repo stores daily check-ins keyed by (user, date).
type Repo interface {
	// Upsert inserts or replaces the user's check-in for c.Date and returns
	// the stored row.
	Upsert(ctx context.Context, c CheckIn) (CheckIn, error)
	GetForDate(ctx context.Context, userID, date string) (CheckIn, error)
}

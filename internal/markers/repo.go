package markers

import "context"

type Repo interface {
	Create(ctx context.Context, r Result) error
	// ListForUser returns every stored result, newest assessment first.
	ListForUser(ctx context.Context, userID string) ([]Result, error)
}

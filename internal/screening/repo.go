package screening

import "context"

type Repo interface {
	Create(ctx context.Context, r Result) error
	Latest(ctx context.Context, userID string) (Result, error)
}

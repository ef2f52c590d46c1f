package checkins

import "errors"

var (
	ErrNotFound   = errors.New("check-in not found")
	ErrValidation = errors.New("invalid check-in")
)

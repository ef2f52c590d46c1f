package screening

import "errors"

var (
	ErrNotFound   = errors.New("screening not found")
	ErrValidation = errors.New("invalid screening")
)

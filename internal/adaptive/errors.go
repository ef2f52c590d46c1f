package adaptive

import "errors"

var (
	ErrNotFound   = errors.New("adaptive state not found")
	ErrValidation = errors.New("invalid adaptive request")
)

package todayplan

import "errors"

var (
	// ErrClearanceRequired means the screening gate is closed or no screening exists.
	ErrClearanceRequired = errors.New("medical clearance required")
	// ErrCheckInRequired means today's check-in has not been submitted.
	ErrCheckInRequired = errors.New("check-in required")
	ErrInvalidBase     = errors.New("invalid base variant")
)

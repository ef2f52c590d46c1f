package decision

import "errors"

var (
	// ErrMissingSafetyInput means a check-in or screening was not supplied.
	ErrMissingSafetyInput = errors.New("missing safety input")

	// ErrUnknownMarkerKind means a marker key is outside the recognised set.
	ErrUnknownMarkerKind = errors.New("unknown marker kind")

	ErrInvalidInput = errors.New("invalid input")

	// ErrNotCleared means the screening gate did not clear the user. It is
	// joined with ErrMissingSafetyInput when no screening exists.
	ErrNotCleared = errors.New("medical clearance required")
)

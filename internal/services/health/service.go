package health

import (
	"context"
	"database/sql"
	"time"
)

const defaultPingTimeout = 2 * time.Second

// Service reports whether the API can serve plans. A nil DB means the
// in-memory stores are in use and the service is always ready.
type Service struct {
	DB      *sql.DB
	Timeout time.Duration
}

// NewService constructs a new health service.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db, Timeout: defaultPingTimeout}
}

// Status is the health payload.
type Status struct {
	OK      bool   `json:"ok"`
	Storage string `json:"storage"`
	Error   string `json:"error,omitempty"`
}

// Check pings the database when one is configured.
func (s *Service) Check(ctx context.Context) Status {
	if s == nil || s.DB == nil {
		return Status{OK: true, Storage: "memory"}
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return Status{OK: false, Storage: "postgres", Error: err.Error()}
	}
	return Status{OK: true, Storage: "postgres"}
}

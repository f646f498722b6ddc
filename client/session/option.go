package session

import (
	"log/slog"
	"time"
)

type Option func(*Store)

// WithLogger sets the logger used for non-surfaced failures such as a
// failed initial fetch. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithTimeout bounds the initial session fetch. Zero means no bound beyond
// the construction context.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.timeout = timeout
	}
}

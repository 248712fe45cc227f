package convert

import (
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/transfmt/pkg/sanitizer"
	"github.com/dmitrymomot/transfmt/pkg/storage"
)

// DefaultConcurrency bounds ConvertFiles when no limit is configured.
const DefaultConcurrency = 4

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) error {
		if l == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidConfig)
		}
		s.logger = l
		return nil
	}
}

// WithSanitizer cleans every imported catalog before it is returned or converted.
func WithSanitizer(san *sanitizer.Sanitizer) Option {
	return func(s *Service) error {
		s.sanitizer = san
		return nil
	}
}

// WithStore enables Store for uploading exported files.
func WithStore(store storage.Store) Option {
	return func(s *Service) error {
		s.store = store
		return nil
	}
}

// WithConcurrency limits how many files ConvertFiles processes at once.
func WithConcurrency(n int) Option {
	return func(s *Service) error {
		if n < 1 {
			return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConfig, n)
		}
		s.concurrency = n
		return nil
	}
}

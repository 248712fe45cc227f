package formats

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat  = errors.New("formats: unsupported format")
	ErrMalformedInput     = errors.New("formats: malformed input")
	ErrMaxDepthExceeded   = errors.New("formats: max nested levels exceeded")
	ErrUnsupportedVersion = errors.New("formats: unsupported version")
	ErrExportConflict     = errors.New("formats: conflicting term paths")
	ErrInvalidConfig      = errors.New("formats: invalid configuration")
)

// malformedf returns an ErrMalformedInput error with a formatted detail message.
func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// malformed wraps a decoder error so that both it and ErrMalformedInput match errors.Is.
func malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedInput, err)
}

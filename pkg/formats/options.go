package formats

import "fmt"

// Default configuration values.
const (
	DefaultMaxNestedLevels = 100
	DefaultXLIFFVersion    = "1.2"
)

// Config holds the settings shared by the built-in codecs.
type Config struct {
	// MaxNestedLevels bounds nested formats. The root object is level 1.
	MaxNestedLevels int

	// XLIFFVersion is the version the xliff12 exporter is asked to produce.
	// Only "1.2" is supported; anything else fails at export time.
	XLIFFVersion string
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		MaxNestedLevels: DefaultMaxNestedLevels,
		XLIFFVersion:    DefaultXLIFFVersion,
	}
}

// Option configures a Registry during construction.
type Option func(*Registry) error

// WithMaxNestedLevels sets the depth limit for jsonnested, yamlnested and php.
func WithMaxNestedLevels(n int) Option {
	return func(r *Registry) error {
		if n <= 0 {
			return fmt.Errorf("%w: max nested levels must be positive, got %d", ErrInvalidConfig, n)
		}
		r.cfg.MaxNestedLevels = n
		return nil
	}
}

// WithXLIFFVersion sets the XLIFF version requested from the xliff12 exporter.
func WithXLIFFVersion(version string) Option {
	return func(r *Registry) error {
		r.cfg.XLIFFVersion = version
		return nil
	}
}

// WithConfig replaces the whole configuration. Zero fields fall back to defaults.
func WithConfig(cfg Config) Option {
	return func(r *Registry) error {
		if cfg.MaxNestedLevels < 0 {
			return fmt.Errorf("%w: max nested levels must be positive, got %d", ErrInvalidConfig, cfg.MaxNestedLevels)
		}
		if cfg.MaxNestedLevels == 0 {
			cfg.MaxNestedLevels = DefaultMaxNestedLevels
		}
		if cfg.XLIFFVersion == "" {
			cfg.XLIFFVersion = DefaultXLIFFVersion
		}
		r.cfg = cfg
		return nil
	}
}

// WithCodec registers a codec under the given format identifier.
// It replaces the built-in codec when the identifier is already known.
func WithCodec(format Format, codec Codec) Option {
	return func(r *Registry) error {
		if format == "" {
			return fmt.Errorf("%w: empty format identifier", ErrInvalidConfig)
		}
		if codec == nil {
			return fmt.Errorf("%w: nil codec for %q", ErrInvalidConfig, format)
		}
		r.codecs[format] = codec
		return nil
	}
}

// Package config loads transfmt settings.
//
// Values are layered: built-in defaults, then an optional TOML file, then
// environment variables prefixed with TRANSFMT_ (a .env file in the working
// directory is read first). The result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/transfmt/pkg/convert"
	"github.com/dmitrymomot/transfmt/pkg/formats"
	"github.com/dmitrymomot/transfmt/pkg/logger"
	"github.com/dmitrymomot/transfmt/pkg/sanitizer"
	"github.com/dmitrymomot/transfmt/pkg/storage"
)

// DefaultFile is read when no path is given and the file exists.
const DefaultFile = "transfmt.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRANSFMT_"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete transfmt configuration.
type Config struct {
	Server  ServerConfig   `toml:"server"`
	Formats FormatsConfig  `toml:"formats"`
	Convert ConvertConfig  `toml:"convert"`
	Log     logger.Config  `toml:"log"`
	Storage storage.Config `toml:"storage"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	// CORSOrigins enables CORS for the listed origins; "*" allows all.
	CORSOrigins []string `toml:"cors_origins"`
}

// FormatsConfig mirrors formats.Config.
type FormatsConfig struct {
	MaxNestedLevels int    `toml:"max_nested_levels"`
	XLIFFVersion    string `toml:"xliff_version"`
}

// ConvertConfig tunes the conversion service.
type ConvertConfig struct {
	// Concurrency bounds batch conversions.
	Concurrency int `toml:"concurrency"`
	// Sanitize is none, strict or safe.
	Sanitize string `toml:"sanitize"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    10 << 20,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Formats: FormatsConfig{
			MaxNestedLevels: formats.DefaultMaxNestedLevels,
			XLIFFVersion:    formats.DefaultXLIFFVersion,
		},
		Convert: ConvertConfig{
			Concurrency: convert.DefaultConcurrency,
			Sanitize:    string(sanitizer.ModeNone),
		},
		Log: logger.Config{
			Level:  "info",
			Format: logger.FormatJSON,
		},
		Storage: storage.Config{
			Region:    storage.DefaultRegion,
			URLExpiry: storage.DefaultURLExpiry,
		},
	}
}

// Load builds the configuration. An empty path falls back to
// TRANSFMT_CONFIG and then to DefaultFile when it exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path == "" {
		if p, ok := lookup(EnvPrefix + "CONFIG"); ok && p != "" {
			path = p
		} else if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be fixed by defaults.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Server.Addr != "", "server.addr is empty")
	check(c.Server.MaxBodyBytes > 0, "server.max_body_bytes must be positive")
	check(c.Server.ShutdownTimeout > 0, "server.shutdown_timeout must be positive")
	check(c.Formats.MaxNestedLevels > 0, "formats.max_nested_levels must be positive")
	check(c.Convert.Concurrency > 0, "convert.concurrency must be positive")

	if _, err := sanitizer.ParseMode(c.Convert.Sanitize); err != nil {
		check(false, "convert.sanitize: %v", err)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		check(false, "log.level: %v", err)
	}
	if c.Log.Sentry.MinLevel != "" {
		if _, err := logger.ParseLevel(c.Log.Sentry.MinLevel); err != nil {
			check(false, "log.sentry.min_level: %v", err)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		check(false, "log.format must be json or text, got %q", c.Log.Format)
	}

	if c.Storage.Enabled() {
		check(c.Storage.AccessKey != "", "storage.access_key is required with a bucket")
		check(c.Storage.SecretKey != "", "storage.secret_key is required with a bucket")
	}

	return errors.Join(errs...)
}

// FormatOptions converts the formats section into registry options.
func (c *Config) FormatOptions() []formats.Option {
	return []formats.Option{
		formats.WithConfig(formats.Config{
			MaxNestedLevels: c.Formats.MaxNestedLevels,
			XLIFFVersion:    c.Formats.XLIFFVersion,
		}),
	}
}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type binding struct {
	key string
	set func(string) error
}

func bindings(c *Config) []binding {
	return []binding{
		{"SERVER_ADDR", setString(&c.Server.Addr)},
		{"SERVER_MAX_BODY_BYTES", setInt64(&c.Server.MaxBodyBytes)},
		{"SERVER_READ_TIMEOUT", setDuration(&c.Server.ReadTimeout)},
		{"SERVER_WRITE_TIMEOUT", setDuration(&c.Server.WriteTimeout)},
		{"SERVER_SHUTDOWN_TIMEOUT", setDuration(&c.Server.ShutdownTimeout)},
		{"SERVER_CORS_ORIGINS", setList(&c.Server.CORSOrigins)},

		{"FORMATS_MAX_NESTED_LEVELS", setInt(&c.Formats.MaxNestedLevels)},
		{"FORMATS_XLIFF_VERSION", setString(&c.Formats.XLIFFVersion)},

		{"CONVERT_CONCURRENCY", setInt(&c.Convert.Concurrency)},
		{"CONVERT_SANITIZE", setString(&c.Convert.Sanitize)},

		{"LOG_LEVEL", setString(&c.Log.Level)},
		{"LOG_FORMAT", setString(&c.Log.Format)},
		{"SENTRY_DSN", setString(&c.Log.Sentry.DSN)},
		{"SENTRY_ENVIRONMENT", setString(&c.Log.Sentry.Environment)},
		{"SENTRY_RELEASE", setString(&c.Log.Sentry.Release)},
		{"SENTRY_MIN_LEVEL", setString(&c.Log.Sentry.MinLevel)},

		{"STORAGE_BUCKET", setString(&c.Storage.Bucket)},
		{"STORAGE_ACCESS_KEY", setString(&c.Storage.AccessKey)},
		{"STORAGE_SECRET_KEY", setString(&c.Storage.SecretKey)},
		{"STORAGE_ENDPOINT", setString(&c.Storage.Endpoint)},
		{"STORAGE_REGION", setString(&c.Storage.Region)},
		{"STORAGE_PREFIX", setString(&c.Storage.Prefix)},
		{"STORAGE_PATH_STYLE", setBool(&c.Storage.PathStyle)},
		{"STORAGE_URL_EXPIRY", setDuration(&c.Storage.URLExpiry)},
	}
}

// applyEnv overrides cfg with every TRANSFMT_* variable that is set.
// Unparsable values are errors rather than silently ignored.
func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	for _, b := range bindings(c) {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok {
			continue
		}
		if err := b.set(v); err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalid, EnvPrefix, b.key, err)
		}
	}
	return nil
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setInt64(dst *int64) func(string) error {
	return func(v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func setDuration(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

// setList splits a comma separated value and drops empty items.
func setList(dst *[]string) func(string) error {
	return func(v string) error {
		var items []string
		for item := range strings.SplitSeq(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*dst = items
		return nil
	}
}

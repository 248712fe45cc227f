package storage

import (
	"context"
	"io"
	"time"
)

// Store persists exported translation files.
type Store interface {
	// Put uploads data from a reader. The size is sent as the content length.
	Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error)

	// URL returns a pre-signed download URL for the key.
	URL(ctx context.Context, key string, opts ...URLOption) (string, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the bucket is reachable with the configured credentials.
	Ping(ctx context.Context) error
}

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `toml:"bucket"`

	// AccessKey is the AWS access key ID (required).
	AccessKey string `toml:"access_key"`

	// SecretKey is the AWS secret access key (required).
	SecretKey string `toml:"secret_key"`

	// Endpoint is a custom endpoint URL for MinIO or other S3-compatible services.
	Endpoint string `toml:"endpoint"`

	// Region is the AWS region (default: us-east-1).
	Region string `toml:"region"`

	// Prefix is prepended to every generated key.
	Prefix string `toml:"prefix"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `toml:"path_style"`

	// URLExpiry is the lifetime of pre-signed URLs (default: 15m).
	URLExpiry time.Duration `toml:"url_expiry"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// FileInfo describes an uploaded file.
type FileInfo struct {
	Key         string
	ContentType string
	Size        int64
}

// Default configuration values.
const (
	DefaultRegion      = "us-east-1"
	DefaultURLExpiry   = 15 * time.Minute
	DefaultContentType = "application/octet-stream"
)

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.URLExpiry <= 0 {
		c.URLExpiry = DefaultURLExpiry
	}
}

func (c *Config) validate() error {
	switch {
	case c.Bucket == "":
		return ErrInvalidConfig
	case c.AccessKey == "":
		return ErrInvalidConfig
	case c.SecretKey == "":
		return ErrInvalidConfig
	}
	return nil
}

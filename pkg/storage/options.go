package storage

import "time"

// Option configures Put operations.
type Option func(*putOptions)

type putOptions struct {
	key         string // explicit key, replaces the generated one
	prefix      string // path segment after the configured prefix
	extension   string // generated key suffix, e.g. ".json"
	contentType string
}

// WithKey sets an explicit storage key, replacing the generated UUID-based key.
func WithKey(key string) Option {
	return func(o *putOptions) {
		o.key = key
	}
}

// WithPrefix adds a path segment between the configured prefix and the filename.
// Example: WithPrefix("exports") results in "{config prefix}/exports/{uuid}{ext}".
func WithPrefix(prefix string) Option {
	return func(o *putOptions) {
		o.prefix = prefix
	}
}

// WithExtension sets the suffix of the generated key.
func WithExtension(ext string) Option {
	return func(o *putOptions) {
		o.extension = ext
	}
}

// WithContentType sets the Content-Type stored with the object.
func WithContentType(ct string) Option {
	return func(o *putOptions) {
		o.contentType = ct
	}
}

// URLOption configures URL generation.
type URLOption func(*urlOptions)

type urlOptions struct {
	downloadName string
	expiry       time.Duration
}

// WithDownload sets Content-Disposition to attachment with the given filename.
func WithDownload(filename string) URLOption {
	return func(o *urlOptions) {
		o.downloadName = filename
	}
}

// WithExpiry overrides the configured URL lifetime.
func WithExpiry(d time.Duration) URLOption {
	return func(o *urlOptions) {
		o.expiry = d
	}
}

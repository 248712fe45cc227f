package formats

import (
	"fmt"
	"slices"
	"strings"
)

// Codec converts between ITF and one external format.
type Codec interface {
	// Parse decodes raw file contents. It never returns a partial ITF with an error.
	Parse(data []byte) (*ITF, error)
	// Export encodes an ITF into the format's native serialization.
	Export(itf *ITF) ([]byte, error)
}

// Registry dispatches parse and serialize calls to codecs by format identifier.
// It is immutable after New and safe for concurrent use.
type Registry struct {
	codecs map[Format]Codec
	cfg    Config
}

// New creates a Registry with all built-in codecs. Options may change the
// shared configuration or add and replace codecs.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		codecs: make(map[Format]Codec),
		cfg:    DefaultConfig(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	for format, codec := range builtinCodecs(r.cfg) {
		if _, exists := r.codecs[format]; !exists {
			r.codecs[format] = codec
		}
	}

	return r, nil
}

func builtinCodecs(cfg Config) map[Format]Codec {
	return map[Format]Codec{
		CSV:        NewCSV(),
		XLIFF12:    NewXLIFF(cfg.XLIFFVersion),
		JSONFlat:   NewJSONFlat(),
		JSONNested: NewJSONNested(cfg.MaxNestedLevels),
		YAMLFlat:   NewYAMLFlat(),
		YAMLNested: NewYAMLNested(cfg.MaxNestedLevels),
		Properties: NewProperties(),
		PO:         NewPO(),
		Strings:    NewStrings(),
		PHP:        NewPHP(cfg.MaxNestedLevels),
		PHPFlat:    NewPHPFlat(),
		AndroidXML: NewAndroidXML(),
		RESX:       NewRESX(),
	}
}

// Config returns the configuration the built-in codecs were created with.
func (r *Registry) Config() Config {
	return r.cfg
}

// Codec returns the codec registered for format.
func (r *Registry) Codec(format string) (Codec, error) {
	f := Format(strings.ToLower(strings.TrimSpace(format)))
	codec, ok := r.codecs[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return codec, nil
}

// Supports reports whether a codec is registered for format.
func (r *Registry) Supports(format string) bool {
	_, err := r.Codec(format)
	return err == nil
}

// Formats returns the registered identifiers in lexical order.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.codecs))
	for f := range r.codecs {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Parse decodes data written in format.
func (r *Registry) Parse(format string, data []byte) (*ITF, error) {
	codec, err := r.Codec(format)
	if err != nil {
		return nil, err
	}

	itf, err := codec.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	return itf, nil
}

// Serialize encodes itf into format.
func (r *Registry) Serialize(format string, itf *ITF) ([]byte, error) {
	codec, err := r.Codec(format)
	if err != nil {
		return nil, err
	}
	if itf == nil {
		itf = &ITF{}
	}
	if err := itf.Validate(); err != nil {
		return nil, fmt.Errorf("serialize %s: %w", format, err)
	}

	out, err := codec.Export(itf)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", format, err)
	}
	return out, nil
}

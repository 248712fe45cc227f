package sanitizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/transfmt/pkg/formats"
)

// ErrInvalidMode is returned for an unknown sanitization mode.
var ErrInvalidMode = errors.New("sanitizer: invalid mode")

// Mode selects how translation values are cleaned.
type Mode string

const (
	// ModeNone leaves values untouched.
	ModeNone Mode = "none"
	// ModeStrict strips all markup.
	ModeStrict Mode = "strict"
	// ModeSafe keeps basic formatting tags.
	ModeSafe Mode = "safe"
)

// ParseMode parses a mode name. The empty string yields ModeNone.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeNone, nil
	case ModeNone, ModeStrict, ModeSafe:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Sanitizer cleans translation values according to its mode.
type Sanitizer struct {
	mode Mode
	fn   func(string) string
}

// New returns a Sanitizer for mode.
func New(mode Mode) (*Sanitizer, error) {
	m, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	s := &Sanitizer{mode: m}
	switch m {
	case ModeStrict:
		s.fn = StripHTML
	case ModeSafe:
		s.fn = SanitizeHTML
	}
	return s, nil
}

// Mode reports the configured mode.
func (s *Sanitizer) Mode() Mode {
	return s.mode
}

// Apply returns a copy of itf with every translation cleaned and the number
// of values that changed. Terms and order are preserved; itf is not modified.
func (s *Sanitizer) Apply(itf *formats.ITF) (*formats.ITF, int) {
	if itf == nil {
		return nil, 0
	}

	out := &formats.ITF{Iso: itf.Iso, Translations: make([]formats.Entry, len(itf.Translations))}
	copy(out.Translations, itf.Translations)
	if s.fn == nil {
		return out, 0
	}

	changed := 0
	for i, e := range out.Translations {
		clean := s.fn(e.Translation)
		if clean != e.Translation {
			out.Translations[i].Translation = clean
			changed++
		}
	}
	return out, changed
}

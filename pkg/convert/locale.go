package convert

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ValidateLocale checks that iso is empty or a well-formed BCP 47 tag.
// POSIX style underscores are accepted, so both "de-DE" and "de_DE" pass.
func ValidateLocale(iso string) error {
	if iso == "" {
		return nil
	}
	if _, err := language.Parse(strings.ReplaceAll(iso, "_", "-")); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidLocale, iso, err)
	}
	return nil
}

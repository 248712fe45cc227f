package formats

import (
	"fmt"
	"strings"
)

// Format identifies an external file format.
type Format string

// Supported format identifiers. Values are stable and used by callers as-is.
const (
	CSV        Format = "csv"
	XLIFF12    Format = "xliff12"
	JSONFlat   Format = "jsonflat"
	JSONNested Format = "jsonnested"
	YAMLFlat   Format = "yamlflat"
	YAMLNested Format = "yamlnested"
	Properties Format = "properties"
	PO         Format = "po"
	Strings    Format = "strings"
	PHP        Format = "php"
	PHPFlat    Format = "phpflat"
	AndroidXML Format = "androidxml"
	RESX       Format = "resx"
)

var extensions = map[Format]string{
	CSV:        ".csv",
	XLIFF12:    ".xliff",
	JSONFlat:   ".json",
	JSONNested: ".json",
	YAMLFlat:   ".yml",
	YAMLNested: ".yml",
	Properties: ".properties",
	PO:         ".po",
	Strings:    ".strings",
	PHP:        ".php",
	PHPFlat:    ".php",
	AndroidXML: ".xml",
	RESX:       ".resx",
}

// Extension returns the conventional file extension (with leading dot),
// or ".txt" for formats it does not know.
func (f Format) Extension() string {
	if ext, ok := extensions[f]; ok {
		return ext
	}
	return ".txt"
}

func (f Format) String() string {
	return string(f)
}

// ParseFormat validates a format identifier against the built-in formats.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := extensions[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
	return f, nil
}

package formats

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/magiconair/properties"
	"golang.org/x/text/encoding/charmap"
)

// PropertiesCodec handles Java .properties files. Output is ISO-8859-1 with
// everything outside Latin-1 written as \uXXXX escapes.
type PropertiesCodec struct{}

// NewProperties creates the properties codec.
func NewProperties() *PropertiesCodec {
	return &PropertiesCodec{}
}

// Parse accepts UTF-8 or ISO-8859-1 input. An empty file yields an empty ITF.
func (c *PropertiesCodec) Parse(data []byte) (*ITF, error) {
	data = trimBOM(data)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, malformed(err)
		}
		data = decoded
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes([]byte(joinSurrogateEscapes(string(data))))
	if err != nil {
		return nil, malformed(err)
	}

	itf := &ITF{}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		if err := itf.add(key, value); err != nil {
			return nil, err
		}
	}
	return itf, nil
}

// Export writes "key = value" lines in ITF order.
func (c *PropertiesCodec) Export(itf *ITF) ([]byte, error) {
	var b strings.Builder
	for _, e := range itf.fold() {
		b.WriteString(escapeProperty(e.Term, true))
		b.WriteString(" = ")
		b.WriteString(escapeProperty(e.Translation, false))
		b.WriteByte('\n')
	}

	out, err := charmap.ISO8859_1.NewEncoder().String(b.String())
	if err != nil {
		return nil, fmt.Errorf("encode properties as latin-1: %w", err)
	}
	return []byte(out), nil
}

func escapeProperty(s string, isKey bool) string {
	var b strings.Builder
	leading := true
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\f':
			b.WriteString(`\f`)
		case r == ' ' && (isKey || leading):
			b.WriteString(`\ `)
		case isKey && strings.ContainsRune("=:#!", r):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\u%04x`, r)
		case r > 0xff:
			if r > 0xffff {
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
			} else {
				fmt.Fprintf(&b, `\u%04x`, r)
			}
		default:
			b.WriteRune(r)
		}
		if r != ' ' {
			leading = false
		}
	}
	return b.String()
}

// joinSurrogateEscapes rewrites escaped UTF-16 surrogate pairs such as
// \uD83D\uDE00 into the literal character. The properties lexer decodes each
// \uXXXX on its own and would otherwise turn both halves into U+FFFD.
func joinSurrogateEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		// A backslash always starts an escape; an escaped backslash is copied whole.
		if i+1 < len(s) && s[i+1] != 'u' {
			b.WriteString(s[i : i+2])
			i += 2
			continue
		}
		if hi, ok := hexEscape(s, i); ok && utf16.IsSurrogate(hi) {
			if lo, ok := hexEscape(s, i+6); ok {
				if r := utf16.DecodeRune(hi, lo); r != utf8.RuneError {
					b.WriteRune(r)
					i += 12
					continue
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// hexEscape decodes a \uXXXX escape starting at s[i].
func hexEscape(s string, i int) (rune, bool) {
	if i+6 > len(s) || s[i] != '\\' || s[i+1] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i+2:i+6], 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

package formats

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// resourceEscapes are the characters Android and RESX values escape with a backslash.
const resourceEscapes = `'@"?`

// decodeXMLDocument decodes a whole XML document into v. Anything other than
// whitespace, comments or processing instructions after the root element is
// rejected.
func decodeXMLDocument(data []byte, v any) error {
	data = trimBOM(data)
	if err := requireNonBlank(data); err != nil {
		return err
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	if err := dec.Decode(v); err != nil {
		return malformed(err)
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return malformed(err)
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return malformedf("unexpected text after root element")
			}
		default:
			return malformedf("unexpected content after root element")
		}
	}
}

// unescapeResourceQuotes drops unescaped double quotes and removes the
// backslash in front of ' @ " and ?.
func unescapeResourceQuotes(s string) string {
	if !strings.ContainsAny(s, `\"`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && strings.IndexByte(resourceEscapes, s[i+1]) >= 0:
			b.WriteByte(s[i+1])
			i++
		case s[i] == '"':
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// escapeResourceQuotes prefixes ' @ " and ? with a backslash.
func escapeResourceQuotes(s string) string {
	if !strings.ContainsAny(s, resourceEscapes) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(resourceEscapes, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

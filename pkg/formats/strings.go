package formats

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// StringsCodec handles Apple .strings files ("key" = "value";).
type StringsCodec struct{}

// NewStrings creates the strings codec.
func NewStrings() *StringsCodec {
	return &StringsCodec{}
}

// Parse reads UTF-8 or BOM-prefixed UTF-16 input. Comments are skipped and an
// empty file yields an empty ITF.
func (c *StringsCodec) Parse(data []byte) (*ITF, error) {
	src, err := decodeStringsFile(data)
	if err != nil {
		return nil, err
	}

	s := &stringsScanner{src: src, line: 1}
	itf := &ITF{}
	for {
		if err := s.skipSpace(); err != nil {
			return nil, err
		}
		if s.eof() {
			return itf, nil
		}

		key, err := s.token()
		if err != nil {
			return nil, err
		}
		if err := s.expect('='); err != nil {
			return nil, err
		}
		value, err := s.token()
		if err != nil {
			return nil, err
		}
		if err := s.expect(';'); err != nil {
			return nil, err
		}
		if err := itf.add(key, value); err != nil {
			return nil, err
		}
	}
}

// Export writes one "key" = "value"; line per folded entry with no blank lines.
func (c *StringsCodec) Export(itf *ITF) ([]byte, error) {
	var b strings.Builder
	for _, e := range itf.fold() {
		b.WriteString(quoteAppleString(e.Term))
		b.WriteString(" = ")
		b.WriteString(quoteAppleString(e.Translation))
		b.WriteString(";\n")
	}
	return []byte(b.String()), nil
}

func decodeStringsFile(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", malformed(err)
		}
		return string(decoded), nil
	}
	return string(trimBOM(data)), nil
}

func quoteAppleString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

type stringsScanner struct {
	src  string
	pos  int
	line int
}

func (s *stringsScanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *stringsScanner) peek(offset int) byte {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

func (s *stringsScanner) advance() byte {
	ch := s.src[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
	}
	return ch
}

// skipSpace skips whitespace and both comment styles.
func (s *stringsScanner) skipSpace() error {
	for !s.eof() {
		switch ch := s.peek(0); {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			s.advance()
		case ch == '/' && s.peek(1) == '/':
			for !s.eof() && s.peek(0) != '\n' {
				s.advance()
			}
		case ch == '/' && s.peek(1) == '*':
			start := s.line
			s.pos += 2
			for {
				if s.eof() {
					return malformedf("line %d: unterminated comment", start)
				}
				if s.peek(0) == '*' && s.peek(1) == '/' {
					s.pos += 2
					break
				}
				s.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (s *stringsScanner) expect(ch byte) error {
	if err := s.skipSpace(); err != nil {
		return err
	}
	if s.eof() {
		return malformedf("line %d: expected %q, got end of input", s.line, ch)
	}
	if got := s.peek(0); got != ch {
		return malformedf("line %d: expected %q, got %q", s.line, ch, got)
	}
	s.advance()
	return nil
}

// token reads a quoted string or an unquoted identifier.
func (s *stringsScanner) token() (string, error) {
	if err := s.skipSpace(); err != nil {
		return "", err
	}
	if s.eof() {
		return "", malformedf("line %d: unexpected end of input", s.line)
	}
	if s.peek(0) == '"' {
		return s.quoted()
	}

	start := s.pos
	for !s.eof() && isBareStringChar(s.peek(0)) {
		s.advance()
	}
	if start == s.pos {
		return "", malformedf("line %d: unexpected character %q", s.line, s.peek(0))
	}
	return s.src[start:s.pos], nil
}

func isBareStringChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' ||
		strings.IndexByte("_.-$:/", ch) >= 0
}

func (s *stringsScanner) quoted() (string, error) {
	start := s.line
	s.advance()

	var b strings.Builder
	for {
		if s.eof() {
			return "", malformedf("line %d: unterminated string", start)
		}
		ch := s.advance()
		switch ch {
		case '"':
			return b.String(), nil
		case '\\':
			if err := s.escape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(ch)
		}
	}
}

func (s *stringsScanner) escape(b *strings.Builder) error {
	if s.eof() {
		return malformedf("line %d: unterminated escape", s.line)
	}
	switch ch := s.advance(); ch {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case 'U', 'u':
		r, err := s.unicodeEscape()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && s.peek(0) == '\\' && (s.peek(1) == 'U' || s.peek(1) == 'u') {
			save := s.pos
			s.pos += 2
			lo, err := s.unicodeEscape()
			if err == nil {
				if joined := utf16.DecodeRune(r, lo); joined != utf8.RuneError {
					b.WriteRune(joined)
					return nil
				}
			}
			s.pos = save
		}
		b.WriteRune(r)
	default:
		// \" \\ \' and any other escaped character stand for themselves.
		b.WriteByte(ch)
	}
	return nil
}

func (s *stringsScanner) unicodeEscape() (rune, error) {
	if s.pos+4 > len(s.src) {
		return 0, malformedf("line %d: short unicode escape", s.line)
	}
	v, err := strconv.ParseUint(s.src[s.pos:s.pos+4], 16, 16)
	if err != nil {
		return 0, malformedf("line %d: invalid unicode escape %q", s.line, s.src[s.pos:s.pos+4])
	}
	s.pos += 4
	return rune(v), nil
}

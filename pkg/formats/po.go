package formats

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// poHeaders are written into the header entry of every exported catalog.
var poHeaders = []string{
	"Content-Type: text/plain; charset=utf-8",
	"Content-Transfer-Encoding: 8bit",
	"MIME-Version: 1.0",
}

// POCodec handles gettext PO catalogs.
type POCodec struct{}

// NewPO creates the po codec.
func NewPO() *POCodec {
	return &POCodec{}
}

// Parse reads msgid/msgstr pairs from every context. The header entry is not
// returned as a translation; its Language field becomes the ITF locale.
// Plural entries contribute their msgstr[0]. Obsolete (#~) entries are skipped.
func (c *POCodec) Parse(data []byte) (*ITF, error) {
	p := &poParser{itf: &ITF{}}

	sc := bufio.NewScanner(bytes.NewReader(trimBOM(data)))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		p.line++
		if err := p.feed(strings.TrimSpace(sc.Text())); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, malformed(err)
	}
	if err := p.flush(); err != nil {
		return nil, err
	}
	return p.itf, nil
}

// Export writes a header entry followed by one entry per folded term.
func (c *POCodec) Export(itf *ITF) ([]byte, error) {
	headers := append([]string(nil), poHeaders...)
	if itf != nil && itf.Iso != "" {
		headers = append(headers, "Language: "+itf.Iso)
	}

	var b strings.Builder
	b.WriteString("msgid \"\"\nmsgstr \"\"\n")
	for _, h := range headers {
		b.WriteString(quotePO(h + "\n"))
		b.WriteByte('\n')
	}

	for _, e := range itf.fold() {
		b.WriteByte('\n')
		writePOField(&b, "msgid", e.Term)
		writePOField(&b, "msgstr", e.Translation)
	}
	return []byte(b.String()), nil
}

// writePOField splits values with inner newlines over several lines.
func writePOField(b *strings.Builder, keyword, value string) {
	b.WriteString(keyword)
	b.WriteByte(' ')
	if !strings.Contains(strings.TrimSuffix(value, "\n"), "\n") {
		b.WriteString(quotePO(value))
		b.WriteByte('\n')
		return
	}

	b.WriteString("\"\"\n")
	for _, part := range strings.SplitAfter(value, "\n") {
		if part == "" {
			continue
		}
		b.WriteString(quotePO(part))
		b.WriteByte('\n')
	}
}

func quotePO(s string) string {
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

type poParser struct {
	itf  *ITF
	line int

	ctx, id, str      string
	hasCtx, hasID     bool
	hasStr, hasPlural bool

	// field receives continuation lines; nil until a keyword is seen.
	field *string
}

func (p *poParser) feed(line string) error {
	switch {
	case line == "":
		return p.flush()
	case strings.HasPrefix(line, "#~"):
		return nil
	case strings.HasPrefix(line, "#"):
		if p.hasStr {
			return p.flush()
		}
		return nil
	case strings.HasPrefix(line, `"`):
		if p.field == nil {
			return malformedf("line %d: string continuation without a keyword", p.line)
		}
		s, err := p.unquote(line)
		if err != nil {
			return err
		}
		*p.field += s
		return nil
	}

	keyword, rest, _ := strings.Cut(line, " ")
	value, err := p.unquote(strings.TrimSpace(rest))
	if err != nil {
		return err
	}

	switch {
	case keyword == "msgctxt":
		if p.hasStr {
			if err := p.flush(); err != nil {
				return err
			}
		}
		if p.hasCtx || p.hasID {
			return malformedf("line %d: unexpected msgctxt", p.line)
		}
		p.ctx, p.hasCtx = value, true
		p.field = &p.ctx
	case keyword == "msgid":
		if p.hasStr {
			if err := p.flush(); err != nil {
				return err
			}
		}
		if p.hasID {
			return malformedf("line %d: msgid without msgstr", p.line)
		}
		p.id, p.hasID = value, true
		p.field = &p.id
	case keyword == "msgid_plural":
		if !p.hasID || p.hasStr || p.hasPlural {
			return malformedf("line %d: unexpected msgid_plural", p.line)
		}
		p.hasPlural = true
		p.field = new(string)
	case keyword == "msgstr":
		if !p.hasID || p.hasStr || p.hasPlural {
			return malformedf("line %d: unexpected msgstr", p.line)
		}
		p.str, p.hasStr = value, true
		p.field = &p.str
	case strings.HasPrefix(keyword, "msgstr[") && strings.HasSuffix(keyword, "]"):
		idx, err := strconv.Atoi(keyword[len("msgstr[") : len(keyword)-1])
		if err != nil || idx < 0 || !p.hasID || !p.hasPlural {
			return malformedf("line %d: unexpected %s", p.line, keyword)
		}
		p.hasStr = true
		if idx == 0 {
			p.str = value
			p.field = &p.str
		} else {
			p.field = new(string)
		}
	default:
		return malformedf("line %d: unknown keyword %q", p.line, keyword)
	}
	return nil
}

func (p *poParser) flush() error {
	defer p.reset()

	switch {
	case !p.hasCtx && !p.hasID && !p.hasStr:
		return nil
	case !p.hasID:
		return malformedf("line %d: entry without msgid", p.line)
	case !p.hasStr:
		return malformedf("line %d: msgid %q without msgstr", p.line, p.id)
	}

	if p.id == "" && !p.hasCtx {
		p.itf.Iso = poHeaderLanguage(p.str)
		return nil
	}
	if p.id == "" {
		return malformedf("line %d: empty msgid", p.line)
	}
	return p.itf.add(p.id, p.str)
}

func (p *poParser) reset() {
	itf, line := p.itf, p.line
	*p = poParser{itf: itf, line: line}
}

// unquote decodes one C-style quoted PO string.
func (p *poParser) unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", malformedf("line %d: expected a quoted string", p.line)
	}
	body := s[1 : len(s)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch == '"' {
			return "", malformedf("line %d: unescaped quote", p.line)
		}
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		if i+1 >= len(body) {
			return "", malformedf("line %d: unterminated string", p.line)
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\\', '"', '\'', '?':
			b.WriteByte(body[i])
		default:
			return "", malformedf("line %d: invalid escape \\%c", p.line, body[i])
		}
	}
	return b.String(), nil
}

func poHeaderLanguage(header string) string {
	for _, line := range strings.Split(header, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), "Language") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

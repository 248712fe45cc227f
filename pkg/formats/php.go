package formats

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const phpIndent = "    "

// PHPCodec handles "<?php return [...];" files with nested arrays and
// dot-joined terms.
type PHPCodec struct {
	maxLevels int
}

// NewPHP creates the php codec with the given depth limit.
func NewPHP(maxLevels int) *PHPCodec {
	if maxLevels <= 0 {
		maxLevels = DefaultMaxNestedLevels
	}
	return &PHPCodec{maxLevels: maxLevels}
}

// Parse reads a PHP array literal and flattens it like jsonnested.
func (c *PHPCodec) Parse(data []byte) (*ITF, error) {
	root, err := parsePHPFile(data, c.maxLevels)
	if err != nil {
		return nil, err
	}
	return flattenNested(root, c.maxLevels)
}

// Export writes nested short-syntax arrays with single-quoted strings.
func (c *PHPCodec) Export(itf *ITF) ([]byte, error) {
	root, err := buildTree(itf.fold())
	if err != nil {
		return nil, err
	}
	return encodePHP(root), nil
}

// PHPFlatCodec handles "<?php return ['term' => 'translation'];" files.
type PHPFlatCodec struct{}

// NewPHPFlat creates the phpflat codec.
func NewPHPFlat() *PHPFlatCodec {
	return &PHPFlatCodec{}
}

// Parse reads a single-level PHP array of strings.
func (c *PHPFlatCodec) Parse(data []byte) (*ITF, error) {
	root, err := parsePHPFile(data, DefaultMaxNestedLevels)
	if err != nil {
		return nil, err
	}
	return flattenFlat(root)
}

// Export writes a single-level array.
func (c *PHPFlatCodec) Export(itf *ITF) ([]byte, error) {
	return encodePHP(flatTree(itf.fold())), nil
}

func encodePHP(root *branch) []byte {
	var b strings.Builder
	b.WriteString("<?php\n\nreturn ")
	if len(root.keys) == 0 {
		b.WriteString("[];\n")
		return []byte(b.String())
	}
	writePHPArray(&b, root, 0)
	b.WriteString(";\n")
	return []byte(b.String())
}

func writePHPArray(b *strings.Builder, br *branch, depth int) {
	inner := strings.Repeat(phpIndent, depth+1)
	b.WriteString("[\n")
	for _, key := range br.keys {
		b.WriteString(inner)
		b.WriteString(quotePHPString(key))
		b.WriteString(" => ")
		switch v := br.children[key].(type) {
		case leaf:
			b.WriteString(quotePHPString(string(v)))
		case *branch:
			writePHPArray(b, v, depth+1)
		}
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat(phpIndent, depth))
	b.WriteByte(']')
}

func quotePHPString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

// phpNode is a parsed PHP value. Arrays with any unkeyed element are lists.
type phpNode struct {
	k    valueKind
	str  string
	desc string
	keys []string
	vals []*phpNode
}

func (n *phpNode) kind() valueKind  { return n.k }
func (n *phpNode) text() string     { return n.str }
func (n *phpNode) describe() string { return n.desc }

func (n *phpNode) each(fn func(key string, v nestedValue) error) error {
	for i, key := range n.keys {
		if err := fn(key, n.vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func parsePHPFile(data []byte, maxLevels int) (*phpNode, error) {
	data = trimBOM(data)
	if err := requireNonBlank(data); err != nil {
		return nil, err
	}

	p := &phpParser{src: string(data), line: 1, maxLevels: maxLevels}
	p.skipSpace()
	if !p.keyword("<?php") {
		return nil, p.errorf("expected <?php open tag")
	}
	p.skipSpace()
	if !p.keyword("return") {
		return nil, p.errorf("expected return statement")
	}

	root, err := p.value(0)
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	p.consume(";")
	p.skipSpace()
	p.consume("?>")
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected content after return statement")
	}
	return root, nil
}

type phpParser struct {
	src       string
	pos       int
	line      int
	maxLevels int
}

func (p *phpParser) errorf(format string, args ...any) error {
	return malformedf("line %d: %s", p.line, fmt.Sprintf(format, args...))
}

func (p *phpParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *phpParser) rest() string {
	return p.src[p.pos:]
}

func (p *phpParser) move(n int) {
	p.line += strings.Count(p.src[p.pos:p.pos+n], "\n")
	p.pos += n
}

func (p *phpParser) consume(tok string) bool {
	if strings.HasPrefix(p.rest(), tok) {
		p.move(len(tok))
		return true
	}
	return false
}

// keyword consumes a case-insensitive word that is not followed by an
// identifier character.
func (p *phpParser) keyword(word string) bool {
	rest := p.rest()
	if len(rest) < len(word) || !strings.EqualFold(rest[:len(word)], word) {
		return false
	}
	if len(rest) > len(word) && isPHPIdentChar(rest[len(word)]) {
		return false
	}
	p.move(len(word))
	return true
}

func isPHPIdentChar(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || ch >= 0x80
}

func (p *phpParser) skipSpace() {
	for !p.eof() {
		rest := p.rest()
		switch {
		case rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '\r':
			p.move(1)
		case strings.HasPrefix(rest, "//") || rest[0] == '#':
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				end = len(rest)
			}
			p.move(end)
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				// Left for the caller to report as trailing content.
				return
			}
			p.move(end + 4)
		default:
			return
		}
	}
}

func (p *phpParser) value(depth int) (*phpNode, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}

	switch rest := p.rest(); {
	case rest[0] == '[':
		p.move(1)
		return p.array(depth+1, "]")
	case p.keyword("array"):
		p.skipSpace()
		if !p.consume("(") {
			return nil, p.errorf("expected ( after array")
		}
		return p.array(depth+1, ")")
	case rest[0] == '\'':
		s, err := p.singleQuoted()
		if err != nil {
			return nil, err
		}
		return &phpNode{k: kindString, str: s, desc: "string"}, nil
	case rest[0] == '"':
		s, err := p.doubleQuoted()
		if err != nil {
			return nil, err
		}
		return &phpNode{k: kindString, str: s, desc: "string"}, nil
	case p.keyword("true"), p.keyword("false"):
		return &phpNode{k: kindOther, desc: "boolean"}, nil
	case p.keyword("null"):
		return &phpNode{k: kindOther, desc: "null"}, nil
	case rest[0] == '-' || rest[0] == '+' || rest[0] == '.' || rest[0] >= '0' && rest[0] <= '9':
		n := p.number()
		if n == "" {
			return nil, p.errorf("invalid number")
		}
		return &phpNode{k: kindOther, str: n, desc: "number"}, nil
	default:
		return nil, p.errorf("unexpected %q", firstRune(rest))
	}
}

func (p *phpParser) array(depth int, closer string) (*phpNode, error) {
	if depth > p.maxLevels {
		return nil, fmt.Errorf("%w: %w: array nested %d levels deep, limit is %d",
			ErrMalformedInput, ErrMaxDepthExceeded, depth, p.maxLevels)
	}

	node := &phpNode{k: kindObject, desc: "object"}
	for {
		p.skipSpace()
		if p.consume(closer) {
			return node, nil
		}

		first, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		p.skipSpace()

		if p.consume("=>") {
			if first.k != kindString {
				return nil, p.errorf("array keys must be strings, got %s", first.desc)
			}
			val, err := p.value(depth)
			if err != nil {
				return nil, err
			}
			node.keys = append(node.keys, first.str)
			node.vals = append(node.vals, val)
		} else {
			node.k, node.desc = kindOther, "array"
		}

		p.skipSpace()
		if p.consume(",") {
			continue
		}
		if p.consume(closer) {
			return node, nil
		}
		if p.eof() {
			return nil, p.errorf("unterminated array")
		}
		return nil, p.errorf("expected , or %s, got %q", closer, firstRune(p.rest()))
	}
}

func (p *phpParser) number() string {
	start := p.pos
	end := start
	for end < len(p.src) && strings.IndexByte("0123456789+-.eExXabcdefABCDEF_", p.src[end]) >= 0 {
		end++
	}
	lit := strings.ReplaceAll(p.src[start:end], "_", "")
	if _, err := strconv.ParseFloat(lit, 64); err != nil {
		if _, err := strconv.ParseInt(lit, 0, 64); err != nil {
			return ""
		}
	}
	p.move(end - start)
	return lit
}

func (p *phpParser) singleQuoted() (string, error) {
	start := p.line
	var b strings.Builder
	i := p.pos + 1
	for i < len(p.src) {
		ch := p.src[i]
		switch {
		case ch == '\'':
			p.move(i + 1 - p.pos)
			return b.String(), nil
		case ch == '\\' && i+1 < len(p.src) && (p.src[i+1] == '\'' || p.src[i+1] == '\\'):
			b.WriteByte(p.src[i+1])
			i += 2
		default:
			b.WriteByte(ch)
			i++
		}
	}
	return "", malformedf("line %d: unterminated string", start)
}

func (p *phpParser) doubleQuoted() (string, error) {
	start := p.line
	var b strings.Builder
	i := p.pos + 1
	for i < len(p.src) {
		ch := p.src[i]
		if ch == '"' {
			p.move(i + 1 - p.pos)
			return b.String(), nil
		}
		if ch != '\\' || i+1 >= len(p.src) {
			b.WriteByte(ch)
			i++
			continue
		}

		next := p.src[i+1]
		i += 2
		switch next {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'v':
			b.WriteByte('\v')
		case 'e':
			b.WriteByte(0x1b)
		case 'f':
			b.WriteByte('\f')
		case '\\', '$', '"':
			b.WriteByte(next)
		case 'x':
			n := hexPrefixLen(p.src[i:], 2)
			if n == 0 {
				b.WriteString(`\x`)
				continue
			}
			v, _ := strconv.ParseUint(p.src[i:i+n], 16, 8)
			b.WriteByte(byte(v))
			i += n
		case 'u':
			end := strings.IndexByte(p.src[i:], '}')
			if !strings.HasPrefix(p.src[i:], "{") || end < 0 {
				b.WriteString(`\u`)
				continue
			}
			v, err := strconv.ParseUint(p.src[i+1:i+end], 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				return "", malformedf("line %d: invalid unicode escape", p.line)
			}
			b.WriteRune(rune(v))
			i += end + 1
		default:
			if next >= '0' && next <= '7' {
				n := 1
				for n < 3 && i+n-1 < len(p.src) && p.src[i+n-1] >= '0' && p.src[i+n-1] <= '7' {
					n++
				}
				v, _ := strconv.ParseUint(p.src[i-1:i-1+n], 8, 16)
				b.WriteByte(byte(v))
				i += n - 1
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(next)
		}
	}
	return "", malformedf("line %d: unterminated string", start)
}

func hexPrefixLen(s string, max int) int {
	n := 0
	for n < max && n < len(s) && strings.IndexByte("0123456789abcdefABCDEF", s[n]) >= 0 {
		n++
	}
	return n
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}

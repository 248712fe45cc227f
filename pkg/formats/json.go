package formats

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// JSONFlatCodec handles {"term": "translation"} documents.
type JSONFlatCodec struct{}

// NewJSONFlat creates the jsonflat codec.
func NewJSONFlat() *JSONFlatCodec {
	return &JSONFlatCodec{}
}

// Parse reads a JSON object of strings, keeping document order.
func (c *JSONFlatCodec) Parse(data []byte) (*ITF, error) {
	root, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return flattenFlat(root)
}

// Export writes a JSON object with two-space indentation.
func (c *JSONFlatCodec) Export(itf *ITF) ([]byte, error) {
	return encodeJSON(flatTree(itf.fold()))
}

// JSONNestedCodec handles {"a": {"b": "translation"}} documents with dot-joined terms.
type JSONNestedCodec struct {
	maxLevels int
}

// NewJSONNested creates the jsonnested codec with the given depth limit.
func NewJSONNested(maxLevels int) *JSONNestedCodec {
	if maxLevels <= 0 {
		maxLevels = DefaultMaxNestedLevels
	}
	return &JSONNestedCodec{maxLevels: maxLevels}
}

// Parse walks the JSON tree and joins keys with ".".
func (c *JSONNestedCodec) Parse(data []byte) (*ITF, error) {
	root, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return flattenNested(root, c.maxLevels)
}

// Export splits terms on "." and writes the resulting tree.
func (c *JSONNestedCodec) Export(itf *ITF) ([]byte, error) {
	root, err := buildTree(itf.fold())
	if err != nil {
		return nil, err
	}
	return encodeJSON(root)
}

func decodeJSON(data []byte) (jsonValue, error) {
	data = trimBOM(data)
	if err := requireNonBlank(data); err != nil {
		return jsonValue{}, err
	}
	if !gjson.ValidBytes(data) {
		return jsonValue{}, malformedf("invalid JSON")
	}
	return jsonValue{r: gjson.ParseBytes(data)}, nil
}

// jsonValue adapts a gjson result to the nested traversal.
type jsonValue struct {
	r gjson.Result
}

func (v jsonValue) kind() valueKind {
	switch {
	case v.r.Type == gjson.String:
		return kindString
	case v.r.IsObject():
		return kindObject
	default:
		return kindOther
	}
}

func (v jsonValue) text() string {
	return v.r.String()
}

func (v jsonValue) describe() string {
	switch v.r.Type {
	case gjson.Null:
		return "null"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	default:
		if v.r.IsArray() {
			return "array"
		}
		return "object"
	}
}

func (v jsonValue) each(fn func(key string, v nestedValue) error) error {
	var err error
	v.r.ForEach(func(key, value gjson.Result) bool {
		err = fn(key.String(), jsonValue{r: value})
		return err == nil
	})
	return err
}

// encodeJSON writes a branch as indented JSON, preserving key order and
// leaving <, > and & unescaped.
func encodeJSON(root *branch) ([]byte, error) {
	var compact bytes.Buffer
	if err := writeJSONObject(&compact, root); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indent json: %w", err)
	}
	return out.Bytes(), nil
}

func writeJSONObject(buf *bytes.Buffer, b *branch) error {
	buf.WriteByte('{')
	for i, key := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')

		switch v := b.children[key].(type) {
		case leaf:
			if err := writeJSONString(buf, string(v)); err != nil {
				return err
			}
		case *branch:
			if err := writeJSONObject(buf, v); err != nil {
				return err
			}
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode json string: %w", err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

package formats

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	yamlStrTag   = "!!str"
	yamlMapTag   = "!!map"
	yamlIndent   = 2
	yamlMaxAlias = 64

	// Alias expansion may visit at most yamlAliasRatio times the decoded
	// node count, and never less than yamlMinBudget nodes.
	yamlAliasRatio = 10
	yamlMinBudget  = 4096
)

// YAMLFlatCodec handles single-level YAML mappings of strings.
type YAMLFlatCodec struct{}

// NewYAMLFlat creates the yamlflat codec.
func NewYAMLFlat() *YAMLFlatCodec {
	return &YAMLFlatCodec{}
}

// Parse reads a YAML mapping of string keys to string values in document order.
func (c *YAMLFlatCodec) Parse(data []byte) (*ITF, error) {
	root, err := decodeYAML(data)
	if err != nil {
		return nil, err
	}
	return flattenFlat(root)
}

// Export writes a single-level mapping.
func (c *YAMLFlatCodec) Export(itf *ITF) ([]byte, error) {
	return encodeYAML(flatTree(itf.fold()))
}

// YAMLNestedCodec handles nested YAML mappings with dot-joined terms.
type YAMLNestedCodec struct {
	maxLevels int
}

// NewYAMLNested creates the yamlnested codec with the given depth limit.
func NewYAMLNested(maxLevels int) *YAMLNestedCodec {
	if maxLevels <= 0 {
		maxLevels = DefaultMaxNestedLevels
	}
	return &YAMLNestedCodec{maxLevels: maxLevels}
}

// Parse walks the YAML mapping tree and joins keys with ".".
func (c *YAMLNestedCodec) Parse(data []byte) (*ITF, error) {
	root, err := decodeYAML(data)
	if err != nil {
		return nil, err
	}
	return flattenNested(root, c.maxLevels)
}

// Export splits terms on "." and writes nested mappings.
func (c *YAMLNestedCodec) Export(itf *ITF) ([]byte, error) {
	root, err := buildTree(itf.fold())
	if err != nil {
		return nil, err
	}
	return encodeYAML(root)
}

func decodeYAML(data []byte) (yamlValue, error) {
	data = trimBOM(data)
	if err := requireNonBlank(data); err != nil {
		return yamlValue{}, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return yamlValue{}, malformed(err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return yamlValue{}, malformedf("empty YAML document")
	}
	root := doc.Content[0]
	budget := &yamlBudget{left: max(countYAMLNodes(root)*yamlAliasRatio, yamlMinBudget)}
	return yamlValue{n: root, budget: budget}, nil
}

func countYAMLNodes(n *yaml.Node) int {
	count := 1
	for _, c := range n.Content {
		count += countYAMLNodes(c)
	}
	return count
}

// yamlBudget bounds how many nodes a traversal may visit, so that
// anchors reused through aliases cannot expand a small document without limit.
type yamlBudget struct {
	left int
}

func (b *yamlBudget) spend(n int) error {
	b.left -= n
	if b.left < 0 {
		return malformedf("document expands too much through aliases")
	}
	return nil
}

// yamlValue adapts a yaml.v3 node to the nested traversal.
type yamlValue struct {
	n      *yaml.Node
	budget *yamlBudget
}

// node follows aliases to the anchored node.
func (v yamlValue) node() *yaml.Node {
	n := v.n
	for i := 0; n.Kind == yaml.AliasNode && n.Alias != nil && i < yamlMaxAlias; i++ {
		n = n.Alias
	}
	return n
}

func (v yamlValue) kind() valueKind {
	n := v.node()
	switch {
	case n.Kind == yaml.MappingNode:
		return kindObject
	case n.Kind == yaml.ScalarNode && n.ShortTag() == yamlStrTag:
		return kindString
	default:
		return kindOther
	}
}

func (v yamlValue) text() string {
	return v.node().Value
}

func (v yamlValue) describe() string {
	n := v.node()
	switch n.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "array"
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return "null"
		case "!!bool":
			return "boolean"
		case "!!int", "!!float":
			return "number"
		case yamlStrTag:
			return "string"
		default:
			return n.ShortTag()
		}
	default:
		return "unknown node"
	}
}

func (v yamlValue) each(fn func(key string, v nestedValue) error) error {
	n := v.node()
	if err := v.budget.spend(len(n.Content)); err != nil {
		return err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := yamlValue{n: n.Content[i], budget: v.budget}
		if key.kind() != kindString {
			return malformedf("line %d: keys must be strings, got %s", n.Content[i].Line, key.describe())
		}
		if err := fn(key.text(), yamlValue{n: n.Content[i+1], budget: v.budget}); err != nil {
			return err
		}
	}
	return nil
}

func encodeYAML(root *branch) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(yamlMapping(root)); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func yamlMapping(b *branch) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: yamlMapTag}
	for _, key := range b.keys {
		n.Content = append(n.Content, yamlString(key))
		switch v := b.children[key].(type) {
		case leaf:
			n.Content = append(n.Content, yamlString(string(v)))
		case *branch:
			n.Content = append(n.Content, yamlMapping(v))
		}
	}
	return n
}

func yamlString(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlStrTag, Value: s}
	// Block scalars lose values made only of whitespace and line breaks.
	if strings.Contains(s, "\n") && strings.TrimSpace(s) == "" {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

package formats

import (
	"fmt"
	"strings"
)

// pathSeparator joins the keys of a nested document into a term.
const pathSeparator = "."

// tree is the exported shape of a nested document: either a leaf or a *branch.
type tree interface {
	isTree()
}

// leaf is a translation at the end of a path.
type leaf string

func (leaf) isTree() {}

// branch is an object node. Keys keep insertion order so exports are deterministic.
type branch struct {
	children map[string]tree
	keys     []string
}

func (*branch) isTree() {}

func newBranch() *branch {
	return &branch{children: make(map[string]tree)}
}

func (b *branch) set(key string, t tree) {
	if _, exists := b.children[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.children[key] = t
}

// flatTree builds a single-level branch, folding duplicate terms.
func flatTree(entries []Entry) *branch {
	root := newBranch()
	for _, e := range entries {
		root.set(e.Term, leaf(e.Translation))
	}
	return root
}

// buildTree splits every term on "." and assigns its translation at the end
// of the path. A term that needs to pass through an existing leaf, or a leaf
// that would replace an existing branch, fails with ErrExportConflict.
func buildTree(entries []Entry) (*branch, error) {
	root := newBranch()
	for _, e := range entries {
		segments := strings.Split(e.Term, pathSeparator)
		cur := root
		for i, seg := range segments[:len(segments)-1] {
			switch next := cur.children[seg].(type) {
			case nil:
				b := newBranch()
				cur.set(seg, b)
				cur = b
			case *branch:
				cur = next
			case leaf:
				return nil, fmt.Errorf("%w: term %q passes through value %q",
					ErrExportConflict, e.Term, strings.Join(segments[:i+1], pathSeparator))
			}
		}

		last := segments[len(segments)-1]
		if _, isBranch := cur.children[last].(*branch); isBranch {
			return nil, fmt.Errorf("%w: term %q is already a parent of other terms", ErrExportConflict, e.Term)
		}
		cur.set(last, leaf(e.Translation))
	}
	return root, nil
}

// valueKind classifies a decoded value of a nested document.
type valueKind int

const (
	kindOther valueKind = iota
	kindString
	kindObject
)

// nestedValue is a decoded value of a nested document, independent of the
// library that decoded it.
type nestedValue interface {
	kind() valueKind
	text() string
	// describe names the value type for error messages ("number", "array", ...).
	describe() string
	// each visits object members in document order and stops at the first error.
	each(fn func(key string, v nestedValue) error) error
}

// flattenNested walks a decoded nested document and returns its entries.
// The root must be an object. Leaves must be strings; objects deeper than
// maxLevels fail with ErrMaxDepthExceeded. Paths that would collide on export
// are rejected too, so a parsed ITF can always be written back.
func flattenNested(root nestedValue, maxLevels int) (*ITF, error) {
	if root.kind() != kindObject {
		return nil, malformedf("top-level value must be an object, got %s", root.describe())
	}

	itf := &ITF{}
	if err := walkNested(itf, root, "", 1, maxLevels); err != nil {
		return nil, err
	}

	if _, err := buildTree(itf.Translations); err != nil {
		return nil, malformed(err)
	}
	return itf, nil
}

func walkNested(itf *ITF, node nestedValue, prefix string, level, maxLevels int) error {
	if level > maxLevels {
		return fmt.Errorf("%w: %w: level %d at %q, limit is %d",
			ErrMalformedInput, ErrMaxDepthExceeded, level, prefix, maxLevels)
	}

	return node.each(func(key string, v nestedValue) error {
		path := key
		if level > 1 {
			path = prefix + pathSeparator + key
		}

		switch v.kind() {
		case kindString:
			return itf.add(path, v.text())
		case kindObject:
			return walkNested(itf, v, path, level+1, maxLevels)
		default:
			return malformedf("nested values must be object or string, %q is %s", path, v.describe())
		}
	})
}

// flattenFlat reads a single-level object whose values must all be strings.
func flattenFlat(root nestedValue) (*ITF, error) {
	if root.kind() != kindObject {
		return nil, malformedf("top-level value must be an object, got %s", root.describe())
	}

	itf := &ITF{}
	err := root.each(func(key string, v nestedValue) error {
		if v.kind() != kindString {
			return malformedf("value of %q must be a string, got %s", key, v.describe())
		}
		return itf.add(key, v.text())
	})
	if err != nil {
		return nil, err
	}
	return itf, nil
}

package formats

import (
	"bytes"
	"fmt"
)

// Entry is a single term with its translation.
// An empty Translation means "not translated yet" and is exported as such.
type Entry struct {
	Term        string `json:"term"`
	Translation string `json:"translation"`
}

// ITF is the intermediate translation format: an ordered list of entries plus
// an optional locale. Iso is only populated by formats that carry a language
// (PO, XLIFF).
type ITF struct {
	Iso          string  `json:"iso,omitempty"`
	Translations []Entry `json:"translations"`
}

// Len returns the number of entries.
func (t *ITF) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Translations)
}

// Validate reports an ErrMalformedInput error for the first entry with an empty term.
func (t *ITF) Validate() error {
	if t == nil {
		return nil
	}
	for i, e := range t.Translations {
		if e.Term == "" {
			return malformedf("entry %d has an empty term", i)
		}
	}
	return nil
}

// add appends an entry. Parsers use it so an empty term never reaches the caller.
func (t *ITF) add(term, translation string) error {
	if term == "" {
		return malformedf("empty term at entry %d", len(t.Translations))
	}
	t.Translations = append(t.Translations, Entry{Term: term, Translation: translation})
	return nil
}

// fold collapses duplicate terms the way a key/value map would:
// the first occurrence keeps its position and the last value wins.
func (t *ITF) fold() []Entry {
	if t == nil {
		return nil
	}
	index := make(map[string]int, len(t.Translations))
	out := make([]Entry, 0, len(t.Translations))
	for _, e := range t.Translations {
		if i, ok := index[e.Term]; ok {
			out[i].Translation = e.Translation
			continue
		}
		index[e.Term] = len(out)
		out = append(out, e)
	}
	return out
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func trimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

func requireNonBlank(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty input", ErrMalformedInput)
	}
	return nil
}

package formats

import (
	"encoding/xml"
	"fmt"
)

// AndroidXMLCodec handles Android string resources
// (<resources><string name="term">translation</string></resources>).
// Plurals and string arrays are not supported.
type AndroidXMLCodec struct{}

// NewAndroidXML creates the androidxml codec.
func NewAndroidXML() *AndroidXMLCodec {
	return &AndroidXMLCodec{}
}

type androidResources struct {
	XMLName xml.Name        `xml:"resources"`
	Strings []androidString `xml:"string"`
}

type androidString struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Parse reads every named <string> element. Other resource types are ignored.
func (c *AndroidXMLCodec) Parse(data []byte) (*ITF, error) {
	var doc androidResources
	if err := decodeXMLDocument(data, &doc); err != nil {
		return nil, err
	}

	itf := &ITF{}
	for _, s := range doc.Strings {
		if s.Name == "" {
			continue
		}
		if err := itf.add(s.Name, unescapeResourceQuotes(s.Value)); err != nil {
			return nil, err
		}
	}
	return itf, nil
}

// Export writes one <string> element per folded entry.
func (c *AndroidXMLCodec) Export(itf *ITF) ([]byte, error) {
	entries := itf.fold()
	doc := androidResources{Strings: make([]androidString, 0, len(entries))}
	for _, e := range entries {
		doc.Strings = append(doc.Strings, androidString{Name: e.Term, Value: escapeResourceQuotes(e.Translation)})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode android resources: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

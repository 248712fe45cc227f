package formats

import (
	_ "embed"
	"encoding/xml"
	"strings"
)

// resxPreamble is the schema block and resheader metadata .NET tooling
// expects at the top of every .resx file. It leaves <root> open.
//
//go:embed resx_preamble.xml
var resxPreamble string

// RESXCodec handles .NET resource files.
type RESXCodec struct{}

// NewRESX creates the resx codec.
func NewRESX() *RESXCodec {
	return &RESXCodec{}
}

type resxRoot struct {
	XMLName xml.Name   `xml:"root"`
	Data    []resxData `xml:"data"`
}

type resxData struct {
	Name     string `xml:"name,attr"`
	Type     string `xml:"type,attr"`
	MimeType string `xml:"mimetype,attr"`
	Value    string `xml:"value"`
}

// Parse reads string <data> entries. Entries with a type or mimetype hold
// binary or typed resources and are skipped.
func (c *RESXCodec) Parse(data []byte) (*ITF, error) {
	var doc resxRoot
	if err := decodeXMLDocument(data, &doc); err != nil {
		return nil, err
	}

	itf := &ITF{}
	for i, d := range doc.Data {
		if d.Type != "" || d.MimeType != "" {
			continue
		}
		if d.Name == "" {
			return nil, malformedf("data element %d has no name", i)
		}
		if err := itf.add(d.Name, unescapeResourceQuotes(d.Value)); err != nil {
			return nil, err
		}
	}
	return itf, nil
}

// Export writes the fixed preamble followed by one <data> element per folded entry.
func (c *RESXCodec) Export(itf *ITF) ([]byte, error) {
	var b strings.Builder
	b.WriteString(resxPreamble)
	for _, e := range itf.fold() {
		b.WriteString(`  <data name="`)
		b.WriteString(xmlEscape(e.Term))
		b.WriteString("\" xml:space=\"preserve\">\n    <value>")
		b.WriteString(xmlEscape(escapeResourceQuotes(e.Translation)))
		b.WriteString("</value>\n  </data>\n")
	}
	b.WriteString("</root>\n")
	return []byte(b.String()), nil
}

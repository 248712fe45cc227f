package formats

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	xliffNamespace = "urn:oasis:names:tc:xliff:document:1.2"
	xliffProlog    = `<?xml version="1.0" encoding="UTF-8" ?>` + "\n"
)

// XLIFFCodec handles XLIFF 1.2 documents. Terms are trans-unit ids.
type XLIFFCodec struct {
	version string
}

// NewXLIFF creates the xliff12 codec. Export fails unless version is "1.2".
func NewXLIFF(version string) *XLIFFCodec {
	if version == "" {
		version = DefaultXLIFFVersion
	}
	return &XLIFFCodec{version: version}
}

// Parse reads every trans-unit, including those inside groups, in document
// order. The target is used when the file declares a target language,
// otherwise the source. The first file's source language becomes the ITF locale.
func (c *XLIFFCodec) Parse(data []byte) (*ITF, error) {
	var doc xliffDocument
	if err := decodeXMLDocument(data, &doc); err != nil {
		return nil, err
	}
	if doc.Version != "" && !strings.HasPrefix(doc.Version, "1.") {
		return nil, fmt.Errorf("%w: %w: xliff %q", ErrMalformedInput, ErrUnsupportedVersion, doc.Version)
	}

	itf := &ITF{}
	for i, file := range doc.Files {
		if i == 0 {
			itf.Iso = file.SourceLanguage
		}
		for _, unit := range file.Body.units {
			if unit.ID == "" {
				return nil, malformedf("trans-unit without id in file %q", file.Original)
			}
			text := unit.Source.text
			if file.TargetLanguage != "" && unit.Target != nil {
				text = unit.Target.text
			}
			if err := itf.add(unit.ID, text); err != nil {
				return nil, err
			}
		}
	}
	return itf, nil
}

// Export writes an XLIFF document in the configured version.
func (c *XLIFFCodec) Export(itf *ITF) ([]byte, error) {
	return c.ExportVersion(itf, c.version)
}

// ExportVersion writes an XLIFF document in the given version. Only "1.2" is
// supported; any other version fails before anything is generated.
func (c *XLIFFCodec) ExportVersion(itf *ITF, version string) ([]byte, error) {
	if version != DefaultXLIFFVersion {
		return nil, fmt.Errorf("%w: xliff %q, only %s is supported", ErrUnsupportedVersion, version, DefaultXLIFFVersion)
	}

	var iso string
	if itf != nil {
		iso = itf.Iso
	}
	entries := itf.fold()
	doc := xliffOutput{
		Xmlns:   xliffNamespace,
		Version: version,
		File: xliffOutputFile{
			Original:       "translations",
			Datatype:       "plaintext",
			SourceLanguage: iso,
			TargetLanguage: iso,
			Units:          make([]xliffOutputUnit, 0, len(entries)),
		},
	}
	for _, e := range entries {
		doc.File.Units = append(doc.File.Units, xliffOutputUnit{ID: e.Term, Source: e.Translation, Target: e.Translation})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode xliff: %w", err)
	}
	return append(append([]byte(xliffProlog), out...), '\n'), nil
}

type xliffDocument struct {
	XMLName xml.Name    `xml:"xliff"`
	Version string      `xml:"version,attr"`
	Files   []xliffFile `xml:"file"`
}

type xliffFile struct {
	Original       string        `xml:"original,attr"`
	SourceLanguage string        `xml:"source-language,attr"`
	TargetLanguage string        `xml:"target-language,attr"`
	Body           xliffUnitList `xml:"body"`
}

type xliffUnit struct {
	ID     string      `xml:"id,attr"`
	Source inlineText  `xml:"source"`
	Target *inlineText `xml:"target"`
}

// xliffUnitList collects trans-units from a body and its nested groups in
// document order.
type xliffUnitList struct {
	units []xliffUnit
}

func (l *xliffUnitList) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "trans-unit":
				var u xliffUnit
				if err := d.DecodeElement(&u, &t); err != nil {
					return err
				}
				l.units = append(l.units, u)
			case "group":
				if err := l.UnmarshalXML(d, t); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// inlineText is the flattened content of a source or target element.
// <x> placeholders become their equiv-text; other inline elements are dropped.
type inlineText struct {
	text string
}

func (t *inlineText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.CharData:
			b.Write(el)
		case xml.StartElement:
			if el.Name.Local == "x" {
				for _, attr := range el.Attr {
					if attr.Name.Local == "equiv-text" {
						b.WriteString(attr.Value)
					}
				}
			}
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			t.text = b.String()
			return nil
		}
	}
}

type xliffOutput struct {
	XMLName xml.Name        `xml:"xliff"`
	Xmlns   string          `xml:"xmlns,attr"`
	Version string          `xml:"version,attr"`
	File    xliffOutputFile `xml:"file"`
}

type xliffOutputFile struct {
	Original       string            `xml:"original,attr"`
	Datatype       string            `xml:"datatype,attr"`
	SourceLanguage string            `xml:"source-language,attr,omitempty"`
	TargetLanguage string            `xml:"target-language,attr,omitempty"`
	Units          []xliffOutputUnit `xml:"body>trans-unit"`
}

type xliffOutputUnit struct {
	ID     string `xml:"id,attr"`
	Source string `xml:"source"`
	Target string `xml:"target"`
}

package convert

import "github.com/dmitrymomot/transfmt/pkg/formats"

var contentTypes = map[formats.Format]string{
	formats.CSV:        "text/csv; charset=utf-8",
	formats.XLIFF12:    "application/xliff+xml",
	formats.JSONFlat:   "application/json",
	formats.JSONNested: "application/json",
	formats.YAMLFlat:   "application/yaml",
	formats.YAMLNested: "application/yaml",
	formats.Properties: "text/x-java-properties; charset=iso-8859-1",
	formats.PO:         "text/x-gettext-translation; charset=utf-8",
	formats.Strings:    "text/plain; charset=utf-8",
	formats.PHP:        "application/x-httpd-php",
	formats.PHPFlat:    "application/x-httpd-php",
	formats.AndroidXML: "application/xml",
	formats.RESX:       "application/xml",
}

// ContentType returns the MIME type used when serving or storing f.
// Unknown formats are served as application/octet-stream.
func ContentType(f formats.Format) string {
	if ct, ok := contentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

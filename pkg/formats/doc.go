// Package formats converts translation files between external localization
// formats and a single canonical representation, the intermediate
// translation format ([ITF]).
//
// Every supported format is a [Codec]: a parser from raw bytes to ITF and an
// exporter from ITF back to bytes. A [Registry] maps format identifiers to
// codecs and is the only entry point callers need.
//
// # Basic Usage
//
//	reg, err := formats.New()
//	if err != nil {
//		return err
//	}
//
//	itf, err := reg.Parse("jsonflat", []byte(`{"hello": "Hallo"}`))
//	if err != nil {
//		return err // errors.Is(err, formats.ErrMalformedInput)
//	}
//
//	out, err := reg.Serialize("po", itf)
//
// # Supported Formats
//
// Flat key/value: csv, jsonflat, yamlflat, properties, strings, phpflat.
// Nested (dot-joined term paths): jsonnested, yamlnested, php.
// Markup: androidxml, resx, po, xliff12.
//
// # Nested Formats
//
// Nested formats map a term such as "buttons.save" to a tree:
//
//	{"buttons": {"save": "Save"}}
//
// Parsing walks the tree and joins keys with ".". Empty segments are kept, so
// "a..b" survives a round trip. The root object is level 1; documents nested
// deeper than the configured maximum (default 100) fail with
// [ErrMaxDepthExceeded]. Exporting a term that is both a value and a prefix of
// another term fails with [ErrExportConflict].
//
// # Errors
//
// All failures are returned synchronously and are distinguishable with
// errors.Is: [ErrUnsupportedFormat], [ErrMalformedInput],
// [ErrMaxDepthExceeded], [ErrUnsupportedVersion], [ErrExportConflict].
// No partial result is ever returned alongside an error.
//
// # Thread Safety
//
// Codecs hold no mutable state and the Registry is immutable after New, so
// both are safe for concurrent use.
package formats

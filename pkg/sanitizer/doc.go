// Package sanitizer removes unsafe HTML from translation values.
//
// Imported catalogs can carry markup in their values. A [Sanitizer] in
// [ModeStrict] reduces every value to plain text, while [ModeSafe] keeps a
// small set of formatting tags and drops scripts, event handlers and
// javascript: URLs. Both are backed by bluemonday policies.
//
//	s, _ := sanitizer.New(sanitizer.ModeStrict)
//	clean, changed := s.Apply(itf)
package sanitizer

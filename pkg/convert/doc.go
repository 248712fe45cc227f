// Package convert is the application layer of transfmt.
//
// A [Service] wraps a formats.Registry and adds what the CLI and the HTTP
// API share: logging, optional HTML sanitization of imported values,
// locale validation on export, bounded batch conversion and uploading of
// exported files to object storage.
//
//	reg, _ := formats.New()
//	svc, _ := convert.New(reg, convert.WithLogger(log))
//
//	out, err := svc.Convert(ctx, "po", "jsonnested", data, "")
//
//	results, err := svc.ConvertFiles(ctx, []convert.FileJob{
//		{Name: "de.po", From: "po", To: "xliff12", Data: de},
//		{Name: "fr.po", From: "po", To: "xliff12", Data: fr},
//	})
package convert

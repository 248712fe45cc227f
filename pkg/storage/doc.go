// Package storage uploads exported translation files to S3-compatible
// object storage and hands out pre-signed download URLs for them.
//
// # Basic Usage
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "translations",
//		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
//		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//		Prefix:    "exports",
//	})
//	if err != nil {
//		return err
//	}
//
//	info, err := store.Put(ctx, bytes.NewReader(out), int64(len(out)),
//		storage.WithExtension(".po"),
//		storage.WithContentType("text/x-gettext-translation"),
//	)
//	// Key: exports/{uuid}.po
//
//	url, err := store.URL(ctx, info.Key, storage.WithDownload("messages.po"))
//
// Errors are normalized to the sentinels in this package, so callers
// check them with errors.Is:
//
//	if errors.Is(err, storage.ErrAccessDenied) { ... }
package storage

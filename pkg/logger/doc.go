// Package logger builds the structured slog.Logger used across transfmt.
//
// Loggers write JSON (or text) to any io.Writer, pick up request-scoped
// attributes from the context, and optionally forward records to Sentry.
//
//	log, err := logger.New(os.Stderr, logger.Config{Level: "debug"})
//	if err != nil {
//		return err
//	}
//
//	ctx = logger.WithAttrs(ctx, slog.String("request_id", id))
//	log.InfoContext(ctx, "parsed", slog.String("format", "po"))
//	// {"level":"INFO","msg":"parsed","format":"po","request_id":"..."}
//
// # Sentry
//
// Setting Config.Sentry.DSN adds a Sentry handler next to the writer.
// Error records create Sentry issues, and records at or above
// SentryConfig.MinLevel (default warn) are stored as Sentry logs.
// Call Flush before the process exits so buffered events are sent.
//
// # Extractors
//
// A ContextExtractor pulls a single attribute out of a context and runs on
// every log call:
//
//	traceID := func(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(traceKey{}).(string)
//		return slog.String("trace_id", id), ok
//	}
//	log, _ := logger.New(os.Stdout, cfg, traceID)
package logger

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/transfmt/pkg/formats"
	"github.com/dmitrymomot/transfmt/pkg/logger"
	"github.com/dmitrymomot/transfmt/pkg/sanitizer"
	"github.com/dmitrymomot/transfmt/pkg/storage"
)

// Service runs imports, exports and conversions on top of a format registry.
// It is safe for concurrent use.
type Service struct {
	registry    *formats.Registry
	logger      *slog.Logger
	sanitizer   *sanitizer.Sanitizer
	store       storage.Store
	concurrency int
}

// New creates a Service backed by reg.
func New(reg *formats.Registry, opts ...Option) (*Service, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: nil registry", ErrInvalidConfig)
	}

	s := &Service{
		registry:    reg,
		logger:      logger.NewNope(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return s, nil
}

// Formats lists the registered format identifiers.
func (s *Service) Formats() []formats.Format {
	return s.registry.Formats()
}

// Supports reports whether format is registered.
func (s *Service) Supports(format string) bool {
	return s.registry.Supports(format)
}

// Import parses data in the given format. With a sanitizer configured,
// translation values are cleaned before they are returned.
func (s *Service) Import(ctx context.Context, format string, data []byte) (*formats.ITF, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	itf, err := s.registry.Parse(format, data)
	if err != nil {
		s.logger.DebugContext(ctx, "import failed",
			slog.String("format", format),
			slog.Int("bytes", len(data)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if s.sanitizer != nil {
		var changed int
		itf, changed = s.sanitizer.Apply(itf)
		if changed > 0 {
			s.logger.InfoContext(ctx, "sanitized translations",
				slog.String("format", format),
				slog.String("mode", string(s.sanitizer.Mode())),
				slog.Int("changed", changed),
			)
		}
	}

	s.logger.DebugContext(ctx, "imported",
		slog.String("format", format),
		slog.Int("entries", itf.Len()),
		slog.Duration("took", time.Since(start)),
	)
	return itf, nil
}

// Export serializes itf into the given format.
// A non-empty Iso must be a valid language tag.
func (s *Service) Export(ctx context.Context, format string, itf *formats.ITF) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if itf != nil {
		if err := ValidateLocale(itf.Iso); err != nil {
			return nil, err
		}
	}

	out, err := s.registry.Serialize(format, itf)
	if err != nil {
		s.logger.DebugContext(ctx, "export failed",
			slog.String("format", format),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.DebugContext(ctx, "exported",
		slog.String("format", format),
		slog.Int("entries", itf.Len()),
		slog.Int("bytes", len(out)),
	)
	return out, nil
}

// Convert imports data from one format and exports it into another.
// The locale travels with the catalog; a non-empty locale overrides it.
func (s *Service) Convert(ctx context.Context, from, to string, data []byte, locale string) ([]byte, error) {
	if !s.registry.Supports(to) {
		return nil, fmt.Errorf("%w: %q", formats.ErrUnsupportedFormat, to)
	}

	itf, err := s.Import(ctx, from, data)
	if err != nil {
		return nil, err
	}
	if locale != "" {
		itf.Iso = locale
	}
	return s.Export(ctx, to, itf)
}

// FileJob is one conversion in a batch.
type FileJob struct {
	Name   string
	From   string
	To     string
	Locale string
	Data   []byte
}

// FileResult is the outcome of a FileJob. Output is nil when Err is set.
type FileResult struct {
	Name   string
	Output []byte
	Err    error
}

// ConvertFiles converts jobs concurrently, bounded by the configured
// concurrency. Results keep the order of jobs. The returned error joins
// every failure, each prefixed with its job name. A failing job does not
// stop the others; cancelling ctx does.
func (s *Service) ConvertFiles(ctx context.Context, jobs []FileJob) ([]FileResult, error) {
	results := make([]FileResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, job := range jobs {
		results[i].Name = job.Name
		g.Go(func() error {
			out, err := s.Convert(gctx, job.From, job.To, job.Data, job.Locale)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Output = out
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}
	if len(errs) > 0 {
		s.logger.WarnContext(ctx, "batch conversion finished with errors",
			slog.Int("files", len(jobs)),
			slog.Int("failed", len(errs)),
		)
	}
	return results, errors.Join(errs...)
}

// Artifact is an exported file uploaded to storage.
type Artifact struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Store uploads an exported file and returns a pre-signed download URL.
// The download name is "translations" plus the format extension.
func (s *Service) Store(ctx context.Context, format string, data []byte) (*Artifact, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: nothing to store for %q", ErrEmptyExport, format)
	}

	f, err := formats.ParseFormat(format)
	if err != nil {
		f = formats.Format(format)
	}
	ext := f.Extension()

	info, err := s.store.Put(ctx, bytes.NewReader(data), int64(len(data)),
		storage.WithPrefix(f.String()),
		storage.WithExtension(ext),
		storage.WithContentType(ContentType(f)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := s.store.URL(ctx, info.Key, storage.WithDownload("translations"+ext))
	if err != nil {
		return nil, fmt.Errorf("failed to sign export url: %w", err)
	}

	s.logger.InfoContext(ctx, "stored export",
		slog.String("format", f.String()),
		slog.String("key", info.Key),
		slog.Int64("size", info.Size),
	)
	return &Artifact{Key: info.Key, URL: url, Size: info.Size}, nil
}

// selfTestITF covers the value shapes every codec must carry.
var selfTestITF = &formats.ITF{Translations: []formats.Entry{
	{Term: "transfmt.ready", Translation: `I'm a "ready" check & <ok>`},
	{Term: "transfmt.empty", Translation: ""},
}}

// SelfTest exports and re-imports a small catalog through every registered
// format. It backs the readiness probe.
func (s *Service) SelfTest(ctx context.Context) error {
	var errs []error
	for _, f := range s.registry.Formats() {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := s.registry.Serialize(f.String(), selfTestITF)
		if err == nil {
			_, err = s.registry.Parse(f.String(), out)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrSelfTestFailed, errors.Join(errs...))
	}
	return nil
}

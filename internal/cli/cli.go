// Package cli implements the transfmt command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/transfmt/internal/config"
	"github.com/dmitrymomot/transfmt/pkg/convert"
	"github.com/dmitrymomot/transfmt/pkg/formats"
	"github.com/dmitrymomot/transfmt/pkg/logger"
	"github.com/dmitrymomot/transfmt/pkg/sanitizer"
	"github.com/dmitrymomot/transfmt/pkg/storage"
)

// app holds dependencies built once per invocation from the loaded config.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *convert.Service
	store  *storage.S3Storage
}

type rootFlags struct {
	configPath string
	logLevel   string
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree. Streams are injected for tests.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	a := &app{}

	root := &cobra.Command{
		Use:           "transfmt",
		Short:         "Convert translation files between localization formats",
		Long:          "transfmt parses translation catalogs (JSON, YAML, PO, XLIFF, Android XML, RESX, ...) into a common form and exports them to any other supported format.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(flags, stderr)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.cfg != nil && a.cfg.Log.Sentry.DSN != "" {
				logger.Flush(2 * time.Second)
			}
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a TOML config file (default: $TRANSFMT_CONFIG or ./transfmt.toml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		formatsCmd(a),
		parseCmd(a),
		exportCmd(a),
		convertCmd(a),
		serveCmd(a),
	)
	return root
}

func (a *app) init(flags *rootFlags, stderr io.Writer) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	log, err := logger.New(stderr, cfg.Log)
	if err != nil {
		return err
	}

	reg, err := formats.New(cfg.FormatOptions()...)
	if err != nil {
		return err
	}

	san, err := sanitizer.New(sanitizer.Mode(cfg.Convert.Sanitize))
	if err != nil {
		return err
	}

	opts := []convert.Option{
		convert.WithLogger(log),
		convert.WithSanitizer(san),
		convert.WithConcurrency(cfg.Convert.Concurrency),
	}
	if cfg.Storage.Enabled() {
		store, err := storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		a.store = store
		opts = append(opts, convert.WithStore(store))
	}

	svc, err := convert.New(reg, opts...)
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.svc = cfg, log, svc
	return nil
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// writeOutput writes to a file, or stdout for "" and "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/transfmt/internal/server"
	"github.com/dmitrymomot/transfmt/pkg/convert"
	"github.com/dmitrymomot/transfmt/pkg/formats"
	"github.com/dmitrymomot/transfmt/pkg/health"
)

func formatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported format identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, f := range a.svc.Formats() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", f, f.Extension(), convert.ContentType(f))
			}
			return tw.Flush()
		},
	}
}

func parseCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse --format F <file|->",
		Short: "Parse a translation file and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			itf, err := a.svc.Import(cmd.Context(), format, data)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(itf)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format identifier")
	_ = cmd.MarkFlagRequired("format")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
		store  bool
	)

	cmd := &cobra.Command{
		Use:   "export --format F <file.json|->",
		Short: "Export a JSON translation document into a format",
		Long:  `Reads {"iso": "...", "translations": [{"term": "...", "translation": "..."}]} and writes it in the requested format.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var itf formats.ITF
			if err := json.Unmarshal(data, &itf); err != nil {
				return fmt.Errorf("invalid translation document: %w", err)
			}

			exported, err := a.svc.Export(cmd.Context(), format, &itf)
			if err != nil {
				return err
			}

			if store {
				art, err := a.svc.Store(cmd.Context(), format, exported)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), art.URL)
				return nil
			}
			return writeOutput(cmd, out, exported)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format identifier")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&store, "store", false, "upload to the configured bucket and print a download URL")
	_ = cmd.MarkFlagRequired("format")
	return cmd
}

func convertCmd(a *app) *cobra.Command {
	var (
		from, to string
		outDir   string
		locale   string
	)

	cmd := &cobra.Command{
		Use:   "convert --from F --to G [--out DIR] <files...>",
		Short: "Convert translation files between formats",
		Long:  "Converts every file concurrently. A single \"-\" converts stdin to stdout. Output files are named after the input with the target extension.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] == "-" {
				data, err := readInput(cmd, "-")
				if err != nil {
					return err
				}
				out, err := a.svc.Convert(cmd.Context(), from, to, data, locale)
				if err != nil {
					return err
				}
				return writeOutput(cmd, "", out)
			}

			if !a.svc.Supports(to) {
				return fmt.Errorf("%w: %q", formats.ErrUnsupportedFormat, to)
			}
			ext := formats.Format(strings.ToLower(strings.TrimSpace(to))).Extension()

			jobs := make([]convert.FileJob, 0, len(args))
			for _, path := range args {
				data, err := readInput(cmd, path)
				if err != nil {
					return err
				}
				jobs = append(jobs, convert.FileJob{Name: path, From: from, To: to, Locale: locale, Data: data})
			}

			results, convErr := a.svc.ConvertFiles(cmd.Context(), jobs)

			var writeErrs []error
			written := 0
			claimed := make(map[string]string, len(results))
			for _, r := range results {
				if r.Err != nil {
					continue
				}
				dst := outputPath(r.Name, outDir, ext)
				if filepath.Clean(dst) == filepath.Clean(r.Name) {
					writeErrs = append(writeErrs, fmt.Errorf("%s: output would overwrite the input, set --out", r.Name))
					continue
				}
				if prev, ok := claimed[filepath.Clean(dst)]; ok {
					writeErrs = append(writeErrs, fmt.Errorf("%s: output %s is already written for %s", r.Name, dst, prev))
					continue
				}
				claimed[filepath.Clean(dst)] = r.Name
				if err := writeOutput(cmd, dst, r.Output); err != nil {
					writeErrs = append(writeErrs, fmt.Errorf("%s: %w", r.Name, err))
					continue
				}
				written++
				fmt.Fprintln(cmd.OutOrStdout(), dst)
			}

			a.logger.InfoContext(cmd.Context(), "conversion finished",
				slog.Int("files", len(jobs)),
				slog.Int("written", written),
			)
			return errors.Join(convErr, errors.Join(writeErrs...))
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "input format identifier")
	cmd.Flags().StringVar(&to, "to", "", "output format identifier")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: next to each input)")
	cmd.Flags().StringVar(&locale, "locale", "", "override the catalog locale")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// outputPath swaps the extension of name and moves it into dir when set.
func outputPath(name, dir, ext string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)) + ext
	if dir == "" {
		dir = filepath.Dir(name)
	}
	return filepath.Join(dir, base)
}

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}

			opts := []server.Option{server.WithLogger(a.logger)}
			if a.store != nil {
				opts = append(opts, server.WithHealthCheck("storage", health.PingCheck(a.store)))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, a.svc, opts...).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"djvuget/internal/assemble"
	"djvuget/internal/config"
	"djvuget/internal/describe"
	"djvuget/internal/mets"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "djvuget METS-FILE...",
		Short: "Download DjVu books described by METS manifests",
		Long: `djvuget reconstructs multi-page DjVu documents from the METS manifests
published by digitized-library systems (Kramerius), and prints a
Wikimedia Commons {{Book}} description block derived from the embedded
MARC and Dublin Core cataloging records.

Merging pages and attaching text layers is delegated to the DjVuLibre
djvm and djvused tools, which must be installed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			return runBatch(opts)
		},
	}

	cmd.Flags().StringP("config", "c", "", "Path to the TOML configuration file")
	cmd.Flags().StringP("output-dir", "o", "", "Directory for merged output files (default: working directory)")
	cmd.Flags().String("delay", "", "Override the configured page fetch delay (e.g. 500ms)")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().String("log-format", "text", "Log format: text, json")
	return cmd
}

// cliOptions is the resolved run configuration for one invocation.
type cliOptions struct {
	Config    *config.Config
	OutputDir string
	Inputs    []string
	Logger    *slog.Logger
}

func readCLIOptions(cmd *cobra.Command, args []string) (*cliOptions, error) {
	configPath, _ := cmd.Flags().GetString("config")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	delay, _ := cmd.Flags().GetString("delay")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFormat, _ := cmd.Flags().GetString("log-format")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if delay != "" {
		cfg.PageDelay = delay
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("--delay: %w", err)
		}
	}

	switch strings.ToLower(logLevel) {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("--log-level must be one of debug, info, warn, error; got %q", logLevel)
	}
	switch strings.ToLower(logFormat) {
	case "text", "json":
	default:
		return nil, fmt.Errorf("--log-format must be text or json; got %q", logFormat)
	}

	return &cliOptions{
		Config:    cfg,
		OutputDir: outputDir,
		Inputs:    args,
		Logger:    buildLogger(os.Stderr, logLevel, logFormat),
	}, nil
}

func buildLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// runBatch processes the input manifests in argument order. Each file
// runs inside a fault boundary: a failure is logged and the batch moves
// on. The shared scratch directory is cleared between files and removed
// unconditionally at the end.
func runBatch(opts *cliOptions) error {
	scratch, err := os.MkdirTemp("", "djvuget-")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	for _, path := range opts.Inputs {
		if err := processFile(opts, scratch, path); err != nil {
			opts.Logger.Error("processing failed", "file", path, "error", err)
		}
		if err := clearScratch(scratch); err != nil {
			return err
		}
	}
	return nil
}

// processFile runs the whole pipeline for one manifest: parse, page
// pairing, description mapping, page retrieval and merge. On success
// the output filename and the description block go to stdout.
func processFile(opts *cliOptions, scratch, path string) error {
	cfg := opts.Config

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := mets.Parse(data, cfg.ImageMIME, cfg.TextMIME)
	if err != nil {
		return err
	}

	if len(doc.Images.Order) == 0 {
		opts.Logger.Info("no DjVu pages found", "file", path)
		return nil
	}

	pages, err := doc.PageEntries()
	if err != nil {
		return err
	}
	rec, err := doc.Record()
	if err != nil {
		return err
	}
	langs, err := doc.Languages()
	if err != nil {
		return err
	}
	fields, err := describe.BuildFields(rec, langs, doc.ObjectID)
	if err != nil {
		return err
	}

	outFile := outputPath(opts.OutputDir, path)
	opts.Logger.Info("downloading pages", "file", path, "pages", len(pages), "output", outFile)

	pipeline := assemble.New(cfg, scratch)
	if err := pipeline.Assemble(pages, outFile); err != nil {
		return err
	}

	fmt.Println(outFile)
	fmt.Println(describe.Render(fields))
	fmt.Println()
	return nil
}

// outputPath derives the merged document path from the input filename's
// stem.
func outputPath(dir, input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+".djvu")
}

// clearScratch removes the per-page artifacts of the previous file but
// keeps the directory itself for the rest of the batch.
func clearScratch(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to clear scratch directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to clear scratch directory: %w", err)
		}
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main implements the reflectcsv CLI, which converts a reflection
// export into one CSV file per reflection type.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reflectcsv/internal/anonymize"
	"github.com/fyrsmithlabs/reflectcsv/internal/config"
	"github.com/fyrsmithlabs/reflectcsv/internal/converter"
	"github.com/fyrsmithlabs/reflectcsv/internal/csvout"
	"github.com/fyrsmithlabs/reflectcsv/internal/logging"
	"github.com/fyrsmithlabs/reflectcsv/internal/metrics"
	"github.com/fyrsmithlabs/reflectcsv/internal/reflection"
	"github.com/fyrsmithlabs/reflectcsv/internal/summary"
)

// version information
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// flags holds the parsed command line.
type flags struct {
	reflections []string
	optionsFile string
	anonymize   bool
	nan         bool
	dryRun      bool
	metricsFile string
	quiet       bool
	logLevel    string
	logFormat   string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "reflectcsv <path_to_json_file> <output_directory> [-r NAME [NAME ...]]",
		Short: "Convert a reflection export to one CSV file per reflection type",
		Long: `reflectcsv reads a JSON document of reflection records, groups them by
reflection type and writes one CSV file per type into the output directory.

Each file has a header of every metric name seen for that type, in first-seen
order, and one row per record. Missing metrics are empty cells.

Examples:
  # Convert everything
  reflectcsv export.json out/

  # Only some reflection types
  reflectcsv export.json out/ -r Mood Sleep

  # Share without revealing names or notes
  reflectcsv export.json out/ --anonymize

  # Parsing options from a file
  reflectcsv export.json out/ -o options.yaml`,
		Version:      version,
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	fs := cmd.Flags()
	fs.StringArrayVarP(&f.reflections, "reflections", "r", nil,
		"only convert this reflection type, matched exactly (repeatable; extra arguments are also names)")
	fs.StringVarP(&f.optionsFile, "options-file", "o", "", "YAML or TOML file with parsing options")
	fs.BoolVarP(&f.anonymize, "anonymize", "a", false, "replace names and text values with stable pseudonyms")
	fs.BoolVarP(&f.nan, "nan", "n", false, "with --anonymize, replace every value except dates with NaN")
	fs.BoolVar(&f.dryRun, "dry-run", false, "show which files would be written without writing them")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write run metrics in Prometheus textfile format to this path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "do not print the summary table")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console or json")

	return cmd
}

func run(cmd *cobra.Command, f *flags, args []string) error {
	filter, err := buildFilter(cmd, f, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(&cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("version", version))

	ctx := logging.WithLogger(cmd.Context(), logger)
	ctx = logging.WithRunID(ctx, uuid.NewString())

	req, err := buildRequest(cfg, f, args, filter)
	if err != nil {
		return err
	}

	report, runErr := converter.Run(ctx, req)
	if runErr != nil {
		logger.Error(logging.WithInput(ctx, req.Input), "conversion failed", zap.Error(runErr))
	}

	if f.metricsFile != "" {
		if err := req.Metrics.WriteTextfile(f.metricsFile); err != nil {
			if runErr != nil {
				logger.Warn(ctx, "failed to write metrics file", zap.Error(err))
				return runErr
			}
			return err
		}
		logger.Debug(ctx, "wrote metrics file", zap.String("path", f.metricsFile))
	}

	if runErr != nil {
		return runErr
	}
	if f.quiet {
		return nil
	}
	return summary.Print(cmd.OutOrStdout(), report)
}

// buildFilter returns nil when -r is absent. With -r, arguments after the input
// and output paths are more reflection names.
func buildFilter(cmd *cobra.Command, f *flags, args []string) (reflection.Filter, error) {
	extra := args[2:]
	if !cmd.Flags().Changed("reflections") {
		if len(extra) > 0 {
			return nil, fmt.Errorf("unexpected arguments %q: reflection names follow -r", extra)
		}
		return nil, nil
	}
	names := append(append([]string(nil), f.reflections...), extra...)
	return reflection.NewFilter(names), nil
}

// loadConfig loads the options file and environment, then applies flags.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.optionsFile)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("anonymize") {
		cfg.Anonymize.Enabled = f.anonymize
	}
	if fs.Changed("nan") {
		cfg.Anonymize.NaN = f.nan
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		if cfg.Anonymize.NaN && !cfg.Anonymize.Enabled {
			return nil, errors.New("--nan requires --anonymize")
		}
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func buildRequest(cfg *config.Config, f *flags, args []string, filter reflection.Filter) (converter.Request, error) {
	opts, err := cfg.ParseOptions()
	if err != nil {
		return converter.Request{}, err
	}
	comma, err := cfg.Output.Comma()
	if err != nil {
		return converter.Request{}, err
	}

	req := converter.Request{
		Input:     args[0],
		OutputDir: args[1],
		Filter:    filter,
		Parse:     opts,
		CSV:       csvout.Options{Comma: comma, UseCRLF: cfg.Output.CRLF},
		DryRun:    f.dryRun,
		Metrics:   metrics.New(),
	}
	if cfg.Anonymize.Enabled {
		req.Anonymize = &anonymize.Options{Salt: cfg.Anonymize.Salt, NaN: cfg.Anonymize.NaN}
	}
	return req, nil
}

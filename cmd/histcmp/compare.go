package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/histcmp/histcmp/internal/checks"
	"github.com/histcmp/histcmp/internal/compare"
	"github.com/histcmp/histcmp/internal/config"
	"github.com/histcmp/histcmp/internal/database"
	"github.com/histcmp/histcmp/internal/log"
	"github.com/histcmp/histcmp/internal/plot"
	"github.com/histcmp/histcmp/internal/report"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <monitored.root> <reference.root>",
		Short: "Compare the histograms of two ROOT files",
		Long: `Compare runs statistical compatibility checks on every histogram pair
common to the two files and reports the outcome.

The exit code is 0 only when every compared histogram passes and both
files contain the same keys; any failed check, missing key or type
mismatch exits with code 1 so the command can gate CI pipelines.

Examples:
  # Compare two files with the default checks
  histcmp compare new.root reference.root

  # Only compare histograms under the track/ directory
  histcmp compare -f '^track/' new.root reference.root

  # Read key patterns from a file, one per line
  histcmp compare -f @patterns.txt new.root reference.root

  # Write a self-contained HTML report with plots
  histcmp compare -o report.html new.root reference.root

  # Write one plot file per histogram
  histcmp compare -p plots/ --format png new.root reference.root

  # Machine-readable output
  histcmp compare --json new.root reference.root

Configuration file (.histcmp) example:
  checks:
    "*":
      Chi2Test:
        threshold: 0.01
      KolmogorovTest:
        threshold: 0.68
    "track/*":
      Chi2Test:
        threshold: 0.001
      IntegralCheck: null   # disabled for these keys`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .histcmp in current or home directory)")

	// Key selection
	cmd.Flags().StringArrayP("filter", "f", nil,
		"Regular expression selecting keys to compare; prefix with @ to read patterns from a file (repeatable)")

	// Report flags
	cmd.Flags().StringP("output", "o", "",
		"Write a self-contained HTML report to the specified file")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report to stdout (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report to stdout (mutually exclusive with --json)")

	// Plot flags
	cmd.Flags().StringP("plots", "p", "",
		"Write one plot file per compared histogram into this directory")
	cmd.Flags().String("format", config.DefaultPlotFormat,
		"Plot file format: svg, png or pdf")

	// Presentation flags
	cmd.Flags().String("label-monitored", config.DefaultLabelMonitored,
		"Name of the monitored file in plots and reports")
	cmd.Flags().String("label-reference", config.DefaultLabelReference,
		"Name of the reference file in plots and reports")
	cmd.Flags().String("title", config.DefaultTitle,
		"Report title")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this run in the history database")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCompare(ctx, cmd, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	cfg.Monitored = args[0]
	cfg.Reference = args[1]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.OutputHTML, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.PlotsDir, err = cmd.Flags().GetString("plots")
	if err != nil {
		return nil, err
	}

	cfg.PlotFormat, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	cfg.LabelMonitored, err = cmd.Flags().GetString("label-monitored")
	if err != nil {
		return nil, err
	}

	cfg.LabelReference, err = cmd.Flags().GetString("label-reference")
	if err != nil {
		return nil, err
	}

	cfg.Title, err = cmd.Flags().GetString("title")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	filters, err := cmd.Flags().GetStringArray("filter")
	if err != nil {
		return nil, err
	}
	cfg.Filters, err = expandFilters(filters)
	if err != nil {
		return nil, err
	}

	// Load check rules and run options from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use the defaults if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	return cfg, nil
}

// expandFilters resolves @file entries to their contents, one pattern
// per line. Blank lines and lines starting with # are ignored.
func expandFilters(filters []string) ([]string, error) {
	var out []string
	for _, f := range filters {
		if !strings.HasPrefix(f, "@") {
			out = append(out, f)
			continue
		}

		path := strings.TrimPrefix(f, "@")
		file, err := os.Open(path) //nolint:gosec // User-provided pattern file is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to read filter file: %w", err)
		}

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			out = append(out, line)
		}
		err = scanner.Err()
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read filter file: %w", err)
		}
	}
	return out, nil
}

// runCompare executes the comparison and writes all requested outputs.
func runCompare(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	engine, err := compare.NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	comp, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	if err := writeReports(cmd, cfg, comp); err != nil {
		return err
	}

	if cfg.PlotsDir != "" {
		if err := writePlots(cfg, comp); err != nil {
			return err
		}
	}

	if cfg.SaveToDB {
		if err := saveRun(ctx, cfg, comp, logger); err != nil {
			// History is a convenience; a broken database should not
			// mask the comparison result.
			logger.Warn("failed to record run in history database", "error", err)
		}
	}

	if comp.Status != checks.StatusSuccess {
		return fmt.Errorf("comparison finished with status %s", comp.Status)
	}
	return nil
}

// writeReports writes the stdout report and the optional HTML file.
func writeReports(cmd *cobra.Command, cfg *config.Config, comp *compare.Comparison) error {
	var stdout report.Writer
	switch {
	case cfg.JSONReport:
		stdout = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		stdout = report.NewMarkdownWriter(cmd.OutOrStdout())
	default:
		stdout = report.NewTextWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose))
	}

	if _, err := stdout.Write(comp); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.OutputHTML == "" {
		return nil
	}

	if dir := filepath.Dir(cfg.OutputHTML); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(cfg.OutputHTML) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create HTML report: %w", err)
	}

	renderer := plot.NewRenderer(plot.Options{
		LabelMonitored: cfg.LabelMonitored,
		LabelReference: cfg.LabelReference,
	})
	_, err = report.NewHTMLWriter(f, report.WithPlots(renderer)).Write(comp)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	return nil
}

// writePlots renders one plot file per compared histogram pair.
func writePlots(cfg *config.Config, comp *compare.Comparison) error {
	if err := os.MkdirAll(cfg.PlotsDir, 0750); err != nil {
		return fmt.Errorf("failed to create plots directory: %w", err)
	}

	renderer := plot.NewRenderer(plot.Options{
		LabelMonitored: cfg.LabelMonitored,
		LabelReference: cfg.LabelReference,
	})

	for _, item := range comp.Items {
		if item.Monitored == nil || item.Reference == nil {
			continue
		}

		path := filepath.Join(cfg.PlotsDir, plotFileName(item.Key, cfg.PlotFormat))
		f, err := os.Create(path) //nolint:gosec // Path is derived from the user-provided plot directory
		if err != nil {
			return fmt.Errorf("failed to create plot file: %w", err)
		}

		err = renderer.Write(f, item.Monitored, item.Reference, cfg.PlotFormat)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to render plot for %s: %w", item.Key, err)
		}
	}
	return nil
}

// plotFileName derives a file name from a histogram key.
// ROOT directory separators become underscores so every plot lands
// directly in the plots directory.
func plotFileName(key, format string) string {
	r := strings.NewReplacer("/", "_", " ", "_")
	return r.Replace(key) + "." + format
}

// saveRun records the comparison in the history database.
func saveRun(ctx context.Context, cfg *config.Config, comp *compare.Comparison, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, comp)
	if err != nil {
		return err
	}

	logger.Info("run recorded", "id", id, "db", db.Path())
	return nil
}

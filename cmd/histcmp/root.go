// Package main provides the entry point for the histcmp CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for histcmp.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "histcmp",
		Short: "Compare histograms in two ROOT files",
		Long: `histcmp compares the histograms stored in two ROOT files - a monitored
file with new results and a reference file with a known-good baseline.

Each common histogram pair is run through a configurable set of statistical
compatibility checks (chi-squared, Kolmogorov-Smirnov, integral, residual
and ratio pulls). Results are printed as a terminal summary and can be
written as HTML, Markdown or JSON reports with overlay and ratio plots.

Runs are recorded in a local history database so regressions can be
tracked over time with 'histcmp history'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

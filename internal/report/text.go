package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/histcmp/histcmp/internal/checks"
	"github.com/histcmp/histcmp/internal/compare"
)

// TextWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables per-check detail for every item, not only for
	// failed ones.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-check detail for all items.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the comparison in human-readable format.
func (w *TextWriter) Write(comp *compare.Comparison) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, comp)
	w.writeSummary(&sb, comp)
	w.writeItems(&sb, comp)
	w.writeExclusive(&sb, comp)
	w.writeSkipped(&sb, comp)
	w.writeFooter(&sb, comp)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *TextWriter) writeHeader(sb *strings.Builder, comp *compare.Comparison) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(center(strings.ToUpper(comp.Title), 70))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("%-12s %s (%s)\n", comp.LabelMonitored+":", comp.MonitoredPath, shortHash(comp.MonitoredHash)))
	sb.WriteString(fmt.Sprintf("%-12s %s (%s)\n", comp.LabelReference+":", comp.ReferencePath, shortHash(comp.ReferenceHash)))
	sb.WriteString(fmt.Sprintf("%-12s %s\n", "Date:", comp.Timestamp.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("%-12s %s %s\n", "Status:", comp.Status.Icon(), comp.Status))
	sb.WriteString("\n")
}

// writeSummary writes the pass/fail/inconclusive counts.
func (w *TextWriter) writeSummary(sb *strings.Builder, comp *compare.Comparison) {
	passed, failed, inconclusive := comp.Counts()

	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Compared:       %d\n", len(comp.Items)))
	sb.WriteString(fmt.Sprintf("  Passed:         %d\n", passed))
	sb.WriteString(fmt.Sprintf("  Failed:         %d\n", failed))
	sb.WriteString(fmt.Sprintf("  Inconclusive:   %d\n", inconclusive))
	sb.WriteString(fmt.Sprintf("  %s only: %d\n", comp.LabelMonitored, len(comp.MonitoredOnly)))
	sb.WriteString(fmt.Sprintf("  %s only: %d\n", comp.LabelReference, len(comp.ReferenceOnly)))
	if len(comp.Skipped) > 0 || w.showEmpty {
		sb.WriteString(fmt.Sprintf("  Skipped:        %d\n", len(comp.Skipped)))
	}
	sb.WriteString("\n")
}

// writeItems writes per-item results. Failed items always show their
// check detail; passing items only do in verbose mode.
func (w *TextWriter) writeItems(sb *strings.Builder, comp *compare.Comparison) {
	if len(comp.Items) == 0 {
		if w.showEmpty {
			sb.WriteString("RESULTS\n")
			sb.WriteString(strings.Repeat("-", 70))
			sb.WriteString("\nNo common histograms compared.\n\n")
		}
		return
	}

	sb.WriteString("RESULTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, item := range comp.Items {
		sb.WriteString(fmt.Sprintf("%s %s\n", item.Status.Icon(), item.Key))
		if w.verbose || item.Status != checks.StatusSuccess {
			for _, c := range item.Checks {
				sb.WriteString(fmt.Sprintf("    %s %-14s %s\n", c.Status.Icon(), c.Name, c.Label))
			}
		}
	}
	sb.WriteString("\n")
}

// writeExclusive lists keys present in only one of the two files.
func (w *TextWriter) writeExclusive(sb *strings.Builder, comp *compare.Comparison) {
	w.writeKeyList(sb, fmt.Sprintf("ONLY IN %s", strings.ToUpper(comp.LabelMonitored)), comp.MonitoredOnly)
	w.writeKeyList(sb, fmt.Sprintf("ONLY IN %s", strings.ToUpper(comp.LabelReference)), comp.ReferenceOnly)
}

func (w *TextWriter) writeKeyList(sb *strings.Builder, title string, keys []compare.KeyInfo) {
	if len(keys) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	if len(keys) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %s (%s)\n", k.Name, k.Class))
	}
	sb.WriteString("\n")
}

// writeSkipped lists keys whose object class is not comparable.
func (w *TextWriter) writeSkipped(sb *strings.Builder, comp *compare.Comparison) {
	if len(comp.Skipped) == 0 {
		return
	}

	sb.WriteString("SKIPPED\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for _, k := range comp.Skipped {
		sb.WriteString(fmt.Sprintf("  %s (%s)\n", k.Name, k.Class))
	}
	sb.WriteString("\n")
}

// writeFooter writes the closing status line.
func (w *TextWriter) writeFooter(sb *strings.Builder, comp *compare.Comparison) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Overall: %s %s\n", comp.Status.Icon(), comp.Status))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// center pads a string with spaces so it is centered within width runes.
func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s
}

// shortHash abbreviates a hex digest for display.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

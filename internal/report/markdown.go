package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/histcmp/histcmp/internal/checks"
	"github.com/histcmp/histcmp/internal/compare"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// titleCaser converts status words like "FAILURE" to "Failure" for
	// section prose.
	titleCaser cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titleCaser: cases.Title(language.English),
	}
}

// Write outputs the comparison in Markdown format.
func (w *MarkdownWriter) Write(comp *compare.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, comp)
	w.writeSummary(md, comp)
	w.writeResults(md, comp)
	w.writeExclusive(md, comp)
	w.writeSkipped(md, comp)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, comp *compare.Comparison) {
	md.H1(comp.Title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{w.titleCaser.String(comp.LabelMonitored), "`" + comp.MonitoredPath + "`"},
			{w.titleCaser.String(comp.LabelReference), "`" + comp.ReferencePath + "`"},
			{"Date", comp.Timestamp.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.statusText(comp.Status)},
		},
	})
	md.PlainText("")
}

// statusText returns the status with its marker, in title case.
func (w *MarkdownWriter) statusText(s checks.Status) string {
	return s.Icon() + " " + w.titleCaser.String(s.String())
}

// writeSummary writes the outcome summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, comp *compare.Comparison) {
	passed, failed, inconclusive := comp.Counts()

	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"✅ Passed", strconv.Itoa(passed)},
			{"🔴 Failed", strconv.Itoa(failed)},
			{"🟡 Inconclusive", strconv.Itoa(inconclusive)},
			{"Only in " + comp.LabelMonitored, strconv.Itoa(len(comp.MonitoredOnly))},
			{"Only in " + comp.LabelReference, strconv.Itoa(len(comp.ReferenceOnly))},
			{"**Total compared**", "**" + strconv.Itoa(len(comp.Items)) + "**"},
		},
	})
	md.PlainText("")

	if len(comp.Items) > 0 {
		w.writePieChart(md, passed, failed, inconclusive)
	}

	w.writeAlert(md, comp, failed, inconclusive)
}

// writePieChart writes a mermaid pie chart for the outcome distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, passed, failed, inconclusive int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Comparison Outcomes"),
		piechart.WithShowData(true),
	)

	if passed > 0 {
		chart.LabelAndIntValue("Passed", uint64(passed))
	}
	if failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(failed))
	}
	if inconclusive > 0 {
		chart.LabelAndIntValue("Inconclusive", uint64(inconclusive))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the overall outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, comp *compare.Comparison, failed, inconclusive int) {
	switch {
	case failed > 0:
		md.Cautionf("%d histogram(s) failed their compatibility checks. Review the failed items below.", failed)
	case len(comp.MonitoredOnly) > 0 || len(comp.ReferenceOnly) > 0:
		md.Warningf("The two files do not contain the same histogram keys. See the exclusive key lists below.")
	case inconclusive > 0:
		md.Note(fmt.Sprintf("%d histogram(s) could not be conclusively checked.", inconclusive))
	default:
		md.Tip("All compared histograms are compatible.")
	}
	md.PlainText("")
}

// writeResults writes the per-histogram result table. Failed and
// inconclusive items get a detail section with their individual checks.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, comp *compare.Comparison) {
	if len(comp.Items) == 0 {
		return
	}

	md.H2("Results")
	md.PlainText("")

	rows := make([][]string, 0, len(comp.Items))
	for _, item := range comp.Items {
		rows = append(rows, []string{
			item.Status.Icon(),
			"`" + item.Key + "`",
			item.Class,
			checkSummary(item.Checks),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"", "Key", "Class", "Checks"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, item := range comp.Items {
		if item.Status == checks.StatusSuccess {
			continue
		}
		w.writeItemDetail(md, item)
	}
}

// writeItemDetail writes the per-check breakdown for one histogram.
func (w *MarkdownWriter) writeItemDetail(md *markdown.Markdown, item compare.Item) {
	md.H2(item.Status.Icon() + " " + item.Key)
	md.PlainText("")

	rows := make([][]string, 0, len(item.Checks))
	for _, c := range item.Checks {
		rows = append(rows, []string{
			c.Status.Icon(),
			c.Name,
			c.Label,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"", "Check", "Result"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeExclusive lists keys present in only one of the two files.
func (w *MarkdownWriter) writeExclusive(md *markdown.Markdown, comp *compare.Comparison) {
	w.writeKeyList(md, "Only in "+comp.LabelMonitored, comp.MonitoredOnly)
	w.writeKeyList(md, "Only in "+comp.LabelReference, comp.ReferenceOnly)
}

func (w *MarkdownWriter) writeKeyList(md *markdown.Markdown, title string, keys []compare.KeyInfo) {
	if len(keys) == 0 {
		return
	}

	md.H2(title)
	md.PlainText("")

	items := make([]string, 0, len(keys))
	for _, k := range keys {
		items = append(items, "`"+k.Name+"` ("+k.Class+")")
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeSkipped lists keys whose object class is not comparable.
func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, comp *compare.Comparison) {
	if len(comp.Skipped) == 0 {
		return
	}

	md.H2("Skipped")
	md.PlainText("")

	items := make([]string, 0, len(comp.Skipped))
	for _, k := range comp.Skipped {
		items = append(items, "`"+k.Name+"` ("+k.Class+")")
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("Generated by histcmp")
}

// checkSummary condenses check results to a one-cell overview like
// "Chi2Test ✅, KolmogorovTest 🔴".
func checkSummary(results []checks.Result) string {
	if len(results) == 0 {
		return "(no checks)"
	}
	s := ""
	for i, c := range results {
		if i > 0 {
			s += ", "
		}
		s += c.Name + " " + c.Status.Icon()
	}
	return s
}

package report

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/histcmp/histcmp/internal/checks"
	"github.com/histcmp/histcmp/internal/compare"
	"github.com/histcmp/histcmp/internal/plot"
)

//go:embed templates/report.html.tmpl
var htmlTemplateFS embed.FS

// HTMLWriter outputs a self-contained HTML report.
// Plots are embedded as SVG data URIs so the report is a single file
// that can be mailed or archived without auxiliary assets.
//
// Design decision: We use html/template from the standard library rather
// than a web framework because the report is a static document. The
// template is embedded in the binary so no runtime file lookup is needed.
type HTMLWriter struct {
	baseWriter

	// renderer draws the overlay and ratio plots. When nil the report
	// contains tables only.
	renderer *plot.Renderer
}

// HTMLWriterOption configures an HTMLWriter.
type HTMLWriterOption func(*HTMLWriter)

// WithPlots configures the writer to embed plots rendered by r.
func WithPlots(r *plot.Renderer) HTMLWriterOption {
	return func(w *HTMLWriter) {
		w.renderer = r
	}
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, opts ...HTMLWriterOption) *HTMLWriter {
	w := &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// htmlItem is the template view of one compared histogram.
type htmlItem struct {
	Key     string
	Class   string
	Status  checks.Status
	Checks  []checks.Result
	Anchor  string
	PlotURI template.URL
}

// htmlData is the root template context.
type htmlData struct {
	Comp         *compare.Comparison
	Items        []htmlItem
	Passed       int
	Failed       int
	Inconclusive int
}

// Write outputs the comparison as a standalone HTML document.
func (w *HTMLWriter) Write(comp *compare.Comparison) (int, error) {
	tmpl, err := template.New("report.html.tmpl").ParseFS(htmlTemplateFS, "templates/report.html.tmpl")
	if err != nil {
		return 0, err
	}

	data, err := w.buildData(comp)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return 0, err
	}

	n, err := buf.WriteTo(w.output)
	return int(n), err
}

// buildData assembles the template context, rendering one plot per item
// when a renderer is configured.
func (w *HTMLWriter) buildData(comp *compare.Comparison) (*htmlData, error) {
	data := &htmlData{Comp: comp}
	data.Passed, data.Failed, data.Inconclusive = comp.Counts()

	data.Items = make([]htmlItem, 0, len(comp.Items))
	for _, item := range comp.Items {
		hi := htmlItem{
			Key:    item.Key,
			Class:  item.Class,
			Status: item.Status,
			Checks: item.Checks,
			Anchor: anchorFor(item.Key),
		}
		if w.renderer != nil && item.Monitored != nil && item.Reference != nil {
			uri, err := w.renderer.DataURI(item.Monitored, item.Reference)
			if err != nil {
				return nil, err
			}
			hi.PlotURI = template.URL(uri)
		}
		data.Items = append(data.Items, hi)
	}
	return data, nil
}

// anchorFor derives an HTML fragment identifier from a histogram key.
func anchorFor(key string) string {
	r := strings.NewReplacer("/", "-", " ", "-", "#", "-")
	return "h-" + r.Replace(key)
}

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/histcmp/histcmp/internal/checks"
	"github.com/histcmp/histcmp/internal/compare"
	"github.com/histcmp/histcmp/internal/histogram"
	"github.com/histcmp/histcmp/internal/plot"
	"github.com/histcmp/histcmp/internal/rootfile"
)

func testComparison(t *testing.T) *compare.Comparison {
	t.Helper()

	mon, err := histogram.New("pt", []float64{0, 1, 2, 3}, []float64{10, 20, 30})
	if err != nil {
		t.Fatal(err)
	}
	ref, err := histogram.New("pt", []float64{0, 1, 2, 3}, []float64{12, 18, 31})
	if err != nil {
		t.Fatal(err)
	}

	return &compare.Comparison{
		Title:          "Histogram comparison",
		MonitoredPath:  "new.root",
		ReferencePath:  "old.root",
		MonitoredHash:  "aaaa1111bbbb2222",
		ReferenceHash:  "cccc3333dddd4444",
		LabelMonitored: "monitored",
		LabelReference: "reference",
		Timestamp:      time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
		Items: []compare.Item{
			{
				Key:    "pt",
				Class:  "TH1D",
				Status: checks.StatusSuccess,
				Checks: []checks.Result{
					{Name: "Chi2Test", Status: checks.StatusSuccess, Score: 0.82, Threshold: 0.01, Label: "0.82 > 0.01"},
				},
				Monitored: mon,
				Reference: ref,
			},
			{
				Key:    "eta",
				Class:  "TH1D",
				Status: checks.StatusFailure,
				Checks: []checks.Result{
					{Name: "Chi2Test", Status: checks.StatusFailure, Score: 0.002, Threshold: 0.01, Label: "! 0.002 > 0.01"},
					{Name: "KolmogorovTest", Status: checks.StatusSuccess, Score: 0.91, Threshold: 0.68, Label: "0.91 > 0.68"},
				},
				Monitored: mon,
				Reference: ref,
			},
		},
		MonitoredOnly: []compare.KeyInfo{{Name: "phi", Class: "TH1F"}},
		Skipped:       []rootfile.SkippedKey{{Name: "scan_2d", Class: "TH2D"}},
		Status:        checks.StatusFailure,
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("contains run information and counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		comp := testComparison(t)
		n, err := w.Write(comp)
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if n != buf.Len() {
			t.Errorf("Write() returned %d bytes, buffer has %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"HISTOGRAM COMPARISON",
			"new.root",
			"old.root",
			"Passed:         1",
			"Failed:         1",
			"FAILURE",
			"eta",
			"! 0.002 > 0.01",
			"phi",
			"scan_2d",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("passing items hide check detail unless verbose", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		comp := testComparison(t)

		if _, err := NewTextWriter(&quiet).Write(comp); err != nil {
			t.Fatal(err)
		}
		if _, err := NewTextWriter(&verbose, WithVerbose(true)).Write(comp); err != nil {
			t.Fatal(err)
		}

		if strings.Contains(quiet.String(), "0.82 > 0.01") {
			t.Error("quiet output should not contain checks of passing items")
		}
		if !strings.Contains(verbose.String(), "0.82 > 0.01") {
			t.Error("verbose output should contain checks of passing items")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(testComparison(t)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		var got compare.Comparison
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.Status != checks.StatusFailure {
			t.Errorf("Status = %v, want %v", got.Status, checks.StatusFailure)
		}
		if len(got.Items) != 2 {
			t.Errorf("len(Items) = %d, want 2", len(got.Items))
		}
	})

	t.Run("histograms are not serialized", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(testComparison(t)); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "Edges") || strings.Contains(buf.String(), "edges") {
			t.Error("histogram payload leaked into JSON output")
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(testComparison(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  \"") {
			t.Error("pretty printed output is not indented")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(testComparison(t)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Histogram comparison",
		"## Summary",
		"## Results",
		"`eta`",
		"mermaid",
		"Only in monitored",
		"## Skipped",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	if strings.Contains(out, "# pt\n") {
		t.Error("passing item should not get a detail section")
	}
}

func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	t.Run("without plots", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewHTMLWriter(&buf).Write(testComparison(t)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"<!DOCTYPE html>",
			"Histogram comparison",
			"new.root",
			"status-FAILURE",
			"eta",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
		if strings.Contains(out, "data:image/svg+xml") {
			t.Error("plots embedded without a renderer")
		}
	})

	t.Run("with plots", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewHTMLWriter(&buf, WithPlots(plot.NewRenderer(plot.Options{})))
		if _, err := w.Write(testComparison(t)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		if !strings.Contains(buf.String(), "data:image/svg+xml;base64,") {
			t.Error("output missing embedded plot data URI")
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewTextWriter(&a), NewJSONWriter(&b))

		n, err := mw.Write(testComparison(t))
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if n != a.Len()+b.Len() {
			t.Errorf("Write() returned %d bytes, want %d", n, a.Len()+b.Len())
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("one of the writers received no output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("sink closed")
		mw := NewMultiWriter(&failingWriter{err: wantErr}, NewTextWriter(&bytes.Buffer{}))

		if _, err := mw.Write(testComparison(t)); !errors.Is(err, wantErr) {
			t.Errorf("Write() error = %v, want %v", err, wantErr)
		}
	})
}

type failingWriter struct {
	err error
}

func (f *failingWriter) Write(*compare.Comparison) (int, error) {
	return 0, f.err
}

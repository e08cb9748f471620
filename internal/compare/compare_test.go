package compare

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/histcmp/histcmp/internal/checks"
	"github.com/histcmp/histcmp/internal/config"
	"github.com/histcmp/histcmp/internal/histogram"
	"github.com/histcmp/histcmp/internal/rootfile"
)

func mustH1(t *testing.T, edges, contents []float64) *histogram.H1 {
	t.Helper()
	h, err := histogram.New("h", edges, contents)
	if err != nil {
		t.Fatalf("histogram.New() failed: %v", err)
	}
	return h
}

func testEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return e
}

func TestNewEngineInvalidFilter(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Filters = []string{"("}
	if _, err := NewEngine(cfg, nil); err == nil {
		t.Error("NewEngine() with invalid regexp should fail")
	}
}

func TestEngineMatch(t *testing.T) {
	t.Parallel()

	t.Run("no filters match everything", func(t *testing.T) {
		t.Parallel()
		e := testEngine(t, config.NewConfig())
		if !e.match("anything") {
			t.Error("empty filter list should match all keys")
		}
	})

	t.Run("any filter may match", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.Filters = []string{"^trackeff_", "^fakerate_"}
		e := testEngine(t, cfg)
		if !e.match("trackeff_vs_eta") || !e.match("fakerate_vs_pT") {
			t.Error("keys matching a filter should be selected")
		}
		if e.match("duplication_vs_eta") {
			t.Error("keys matching no filter should be dropped")
		}
	})
}

func TestItemStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		results []checks.Result
		want    checks.Status
	}{
		{
			name: "no checks is inconclusive",
			want: checks.StatusInconclusive,
		},
		{
			name: "all inconclusive is inconclusive",
			results: []checks.Result{
				{Status: checks.StatusInconclusive},
				{Status: checks.StatusInconclusive},
			},
			want: checks.StatusInconclusive,
		},
		{
			name: "one pass is enough",
			results: []checks.Result{
				{Status: checks.StatusInconclusive},
				{Status: checks.StatusSuccess},
			},
			want: checks.StatusSuccess,
		},
		{
			name: "any failure wins",
			results: []checks.Result{
				{Status: checks.StatusSuccess},
				{Status: checks.StatusFailure},
			},
			want: checks.StatusFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := itemStatus(tt.results); got != tt.want {
				t.Errorf("itemStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartition(t *testing.T) {
	t.Parallel()

	mon := &rootfile.Contents{
		Hists: map[string]*histogram.H1{
			"common": nil,
		},
		Classes: map[string]string{
			"common":     "TH1D",
			"mismatched": "TH1D",
			"added":      "TH1F",
			"twodee":     "TH2D",
		},
	}
	ref := &rootfile.Contents{
		Hists: map[string]*histogram.H1{},
		Classes: map[string]string{
			"common":     "TH1D",
			"mismatched": "TH2D",
			"removed":    "TH1F",
			"twodee":     "TH2D",
		},
	}
	mon.Hists["common"] = mustH1(t, []float64{0, 1}, []float64{1})

	e := testEngine(t, config.NewConfig())
	comp := &Comparison{}
	common := e.partition(comp, mon, ref)

	if len(common) != 1 || common[0] != "common" {
		t.Errorf("common = %v, want [common]", common)
	}

	// "added" plus the type-mismatched key.
	if len(comp.MonitoredOnly) != 2 {
		t.Errorf("monitored-only = %v, want 2 entries", comp.MonitoredOnly)
	}
	// "removed" plus the type-mismatched key.
	if len(comp.ReferenceOnly) != 2 {
		t.Errorf("reference-only = %v, want 2 entries", comp.ReferenceOnly)
	}
	// "twodee" is present in both but not comparable.
	if len(comp.Skipped) != 1 || comp.Skipped[0].Name != "twodee" {
		t.Errorf("skipped = %v, want [twodee]", comp.Skipped)
	}
}

func TestCompareItem(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	e := testEngine(t, cfg)

	t.Run("identical histograms pass", func(t *testing.T) {
		t.Parallel()
		h := mustH1(t, []float64{0, 1, 2, 3}, []float64{50, 100, 50})
		item := e.compareItem("h", "TH1D", h, h.Clone())
		if item.Status != checks.StatusSuccess {
			t.Errorf("status = %v, want SUCCESS (checks %+v)", item.Status, item.Checks)
		}
		if len(item.Checks) != 5 {
			t.Errorf("checks run = %d, want 5", len(item.Checks))
		}
	})

	t.Run("very different histograms fail", func(t *testing.T) {
		t.Parallel()
		a := mustH1(t, []float64{0, 1, 2}, []float64{1000, 10})
		b := mustH1(t, []float64{0, 1, 2}, []float64{10, 1000})
		item := e.compareItem("h", "TH1D", a, b)
		if item.Status != checks.StatusFailure {
			t.Errorf("status = %v, want FAILURE", item.Status)
		}
	})

	t.Run("empty histograms are inconclusive", func(t *testing.T) {
		t.Parallel()
		a := mustH1(t, []float64{0, 1, 2}, []float64{0, 0})
		b := mustH1(t, []float64{0, 1, 2}, []float64{0, 0})
		item := e.compareItem("h", "TH1D", a, b)
		if item.Status != checks.StatusInconclusive {
			t.Errorf("status = %v, want INCONCLUSIVE (checks %+v)", item.Status, item.Checks)
		}
	})
}

func TestOverallStatus(t *testing.T) {
	t.Parallel()

	e := testEngine(t, config.NewConfig())

	t.Run("clean run succeeds", func(t *testing.T) {
		t.Parallel()
		comp := &Comparison{Items: []Item{{Status: checks.StatusSuccess}}}
		if got := e.overallStatus(comp); got != checks.StatusSuccess {
			t.Errorf("status = %v, want SUCCESS", got)
		}
	})

	t.Run("exclusive keys fail the run", func(t *testing.T) {
		t.Parallel()
		comp := &Comparison{
			Items:         []Item{{Status: checks.StatusSuccess}},
			MonitoredOnly: []KeyInfo{{Name: "new_hist"}},
		}
		if got := e.overallStatus(comp); got != checks.StatusFailure {
			t.Errorf("status = %v, want FAILURE", got)
		}
	})

	t.Run("inconclusive item downgrades", func(t *testing.T) {
		t.Parallel()
		comp := &Comparison{Items: []Item{
			{Status: checks.StatusSuccess},
			{Status: checks.StatusInconclusive},
		}}
		if got := e.overallStatus(comp); got != checks.StatusInconclusive {
			t.Errorf("status = %v, want INCONCLUSIVE", got)
		}
	})
}

func TestCounts(t *testing.T) {
	t.Parallel()

	comp := &Comparison{Items: []Item{
		{Status: checks.StatusSuccess},
		{Status: checks.StatusSuccess},
		{Status: checks.StatusFailure},
		{Status: checks.StatusInconclusive},
	}}
	passed, failed, inconclusive := comp.Counts()
	if passed != 2 || failed != 1 || inconclusive != 1 {
		t.Errorf("Counts() = %d/%d/%d, want 2/1/1", passed, failed, inconclusive)
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "input.root")
	if err := os.WriteFile(path, []byte("payload"), 0600); err != nil {
		t.Fatal(err)
	}

	h1, err := Fingerprint(path)
	if err != nil {
		t.Fatalf("Fingerprint() failed: %v", err)
	}
	if len(h1) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(h1))
	}

	h2, err := Fingerprint(path)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Error("fingerprint should be deterministic")
	}

	if _, err := Fingerprint(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("fingerprint of a missing file should fail")
	}
}

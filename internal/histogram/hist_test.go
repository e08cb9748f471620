package histogram

import (
	"errors"
	"math"
	"testing"
)

func mustH1(t *testing.T, name string, edges, contents []float64) *H1 {
	t.Helper()
	h, err := New(name, edges, contents)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", name, err)
	}
	return h
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		edges    []float64
		contents []float64
		wantErr  error
	}{
		{
			name:     "valid",
			edges:    []float64{0, 1, 2, 3},
			contents: []float64{1, 2, 3},
		},
		{
			name:     "no bins",
			edges:    []float64{0},
			contents: nil,
			wantErr:  ErrEmptyHistogram,
		},
		{
			name:     "edge count mismatch",
			edges:    []float64{0, 1, 2},
			contents: []float64{1, 2, 3},
			wantErr:  ErrInvalidEdges,
		},
		{
			name:     "non-increasing edges",
			edges:    []float64{0, 2, 1, 3},
			contents: []float64{1, 2, 3},
			wantErr:  ErrInvalidEdges,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New("h", tt.edges, tt.contents)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestH1IntegralAndError(t *testing.T) {
	t.Parallel()

	t.Run("unweighted uses poisson errors", func(t *testing.T) {
		t.Parallel()
		h := mustH1(t, "h", []float64{0, 1, 2}, []float64{9, 16})
		integral, err := h.IntegralAndError()
		if integral != 25 {
			t.Errorf("integral = %v, want 25", integral)
		}
		// err = sqrt(9 + 16) = 5
		if math.Abs(err-5) > 1e-12 {
			t.Errorf("error = %v, want 5", err)
		}
	})

	t.Run("weighted uses sumw2", func(t *testing.T) {
		t.Parallel()
		h := mustH1(t, "h", []float64{0, 1, 2}, []float64{1, 1})
		h.SumW2 = []float64{4, 0}
		_, err := h.IntegralAndError()
		if math.Abs(err-2) > 1e-12 {
			t.Errorf("error = %v, want 2", err)
		}
	})
}

func TestH1EffectiveEntries(t *testing.T) {
	t.Parallel()

	h := mustH1(t, "h", []float64{0, 1, 2}, []float64{10, 10})
	if got := h.EffectiveEntries(); got != 20 {
		t.Errorf("unweighted effective entries = %v, want 20", got)
	}

	h.SumW2 = []float64{40, 40} // weights of 4 -> neff = 400/80 = 5
	h.Contents = []float64{10, 10}
	if got := h.EffectiveEntries(); math.Abs(got-5) > 1e-12 {
		t.Errorf("weighted effective entries = %v, want 5", got)
	}
}

func TestH1Residual(t *testing.T) {
	t.Parallel()

	a := mustH1(t, "a", []float64{0, 1, 2}, []float64{10, 20})
	b := mustH1(t, "b", []float64{0, 1, 2}, []float64{8, 25})

	res, err := a.Residual(b)
	if err != nil {
		t.Fatalf("Residual() failed: %v", err)
	}
	if res.Contents[0] != 2 || res.Contents[1] != -5 {
		t.Errorf("residual contents = %v, want [2 -5]", res.Contents)
	}
	// err^2 = 10+8 and 20+25
	if math.Abs(res.SumW2[0]-18) > 1e-12 || math.Abs(res.SumW2[1]-45) > 1e-12 {
		t.Errorf("residual sumw2 = %v, want [18 45]", res.SumW2)
	}
}

func TestH1Ratio(t *testing.T) {
	t.Parallel()

	a := mustH1(t, "a", []float64{0, 1, 2, 3}, []float64{10, 0, 5})
	b := mustH1(t, "b", []float64{0, 1, 2, 3}, []float64{5, 4, 0})

	r, err := a.Ratio(b)
	if err != nil {
		t.Fatalf("Ratio() failed: %v", err)
	}
	if r.Contents[0] != 2 {
		t.Errorf("ratio bin 0 = %v, want 2", r.Contents[0])
	}
	if r.Contents[1] != 0 {
		t.Errorf("ratio bin 1 = %v, want 0", r.Contents[1])
	}
	if !math.IsNaN(r.Contents[2]) {
		t.Errorf("ratio bin with zero denominator = %v, want NaN", r.Contents[2])
	}
}

func TestH1BinningMismatch(t *testing.T) {
	t.Parallel()

	a := mustH1(t, "a", []float64{0, 1, 2}, []float64{1, 2})
	b := mustH1(t, "b", []float64{0, 2, 4}, []float64{1, 2})

	if _, err := a.Residual(b); !errors.Is(err, ErrBinningMismatch) {
		t.Errorf("Residual() error = %v, want ErrBinningMismatch", err)
	}
	if _, err := a.Ratio(b); !errors.Is(err, ErrBinningMismatch) {
		t.Errorf("Ratio() error = %v, want ErrBinningMismatch", err)
	}
	if a.SameBinning(b) {
		t.Error("SameBinning() = true for different edges")
	}
}

func TestH1Clone(t *testing.T) {
	t.Parallel()

	h := mustH1(t, "h", []float64{0, 1, 2}, []float64{1, 2})
	h.SumW2 = []float64{1, 4}

	c := h.Clone()
	c.Contents[0] = 99
	c.SumW2[0] = 99
	if h.Contents[0] == 99 || h.SumW2[0] == 99 {
		t.Error("Clone() shares storage with original")
	}
}

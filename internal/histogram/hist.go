package histogram

import (
	"math"
	"slices"
)

// H1 is a one-dimensional binned histogram.
//
// Contents holds the sum of weights per bin. SumW2 holds the sum of squared
// weights per bin; it is nil for unweighted histograms, in which case the
// bin error is the Poisson sqrt(content). This mirrors the ROOT convention
// where Sumw2 storage is optional.
//
// Under- and overflow are not tracked: the ROOT reader exposes regular bins
// only, and every check operates on the regular range.
type H1 struct {
	// Name identifies the histogram within its file (the ROOT key name).
	Name string

	// Title is the human-readable histogram title, used as plot title.
	Title string

	// Edges are the nbins+1 bin boundaries in strictly increasing order.
	Edges []float64

	// Contents is the sum of weights in each bin.
	Contents []float64

	// SumW2 is the sum of squared weights in each bin, nil if the
	// histogram is unweighted.
	SumW2 []float64

	// Entries is the raw number of fill operations.
	Entries float64
}

// New creates an H1 and validates its binning.
func New(name string, edges, contents []float64) (*H1, error) {
	h := &H1{Name: name, Edges: edges, Contents: contents}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *H1) validate() error {
	if len(h.Contents) == 0 {
		return ErrEmptyHistogram
	}
	if len(h.Edges) != len(h.Contents)+1 {
		return ErrInvalidEdges
	}
	for i := 1; i < len(h.Edges); i++ {
		if h.Edges[i] <= h.Edges[i-1] {
			return ErrInvalidEdges
		}
	}
	if h.SumW2 != nil && len(h.SumW2) != len(h.Contents) {
		return ErrInvalidEdges
	}
	return nil
}

// Nbins returns the number of regular bins.
func (h *H1) Nbins() int { return len(h.Contents) }

// IsWeighted reports whether the histogram carries explicit sum-of-squared
// weights. Unweighted histograms use Poisson errors.
func (h *H1) IsWeighted() bool { return h.SumW2 != nil }

// BinError returns the uncertainty of bin i.
func (h *H1) BinError(i int) float64 {
	if h.SumW2 != nil {
		return math.Sqrt(h.SumW2[i])
	}
	return math.Sqrt(math.Abs(h.Contents[i]))
}

// BinCenter returns the center of bin i.
func (h *H1) BinCenter(i int) float64 {
	return 0.5 * (h.Edges[i] + h.Edges[i+1])
}

// BinWidth returns the width of bin i.
func (h *H1) BinWidth(i int) float64 {
	return h.Edges[i+1] - h.Edges[i]
}

// Integral returns the sum of all bin contents.
func (h *H1) Integral() float64 {
	var sum float64
	for _, c := range h.Contents {
		sum += c
	}
	return sum
}

// IntegralAndError returns the integral and its uncertainty,
// sqrt(sum of squared bin errors).
func (h *H1) IntegralAndError() (integral, err float64) {
	var sum, sumw2 float64
	for i, c := range h.Contents {
		sum += c
		e := h.BinError(i)
		sumw2 += e * e
	}
	return sum, math.Sqrt(sumw2)
}

// EffectiveEntries returns (sum of weights)^2 / (sum of squared weights),
// the equivalent number of unweighted entries. For an unweighted histogram
// this equals the integral.
func (h *H1) EffectiveEntries() float64 {
	if h.SumW2 == nil {
		return h.Integral()
	}
	var sw, sw2 float64
	for i, c := range h.Contents {
		sw += c
		sw2 += h.SumW2[i]
	}
	if sw2 == 0 {
		return 0
	}
	return sw * sw / sw2
}

// SameBinning reports whether both histograms have identical bin edges.
func (h *H1) SameBinning(o *H1) bool {
	return slices.Equal(h.Edges, o.Edges)
}

// Clone returns a deep copy of the histogram.
func (h *H1) Clone() *H1 {
	c := &H1{
		Name:     h.Name,
		Title:    h.Title,
		Edges:    slices.Clone(h.Edges),
		Contents: slices.Clone(h.Contents),
		Entries:  h.Entries,
	}
	if h.SumW2 != nil {
		c.SumW2 = slices.Clone(h.SumW2)
	}
	return c
}

// sumW2At returns the squared bin error, regardless of weighting.
func (h *H1) sumW2At(i int) float64 {
	if h.SumW2 != nil {
		return h.SumW2[i]
	}
	return math.Abs(h.Contents[i])
}

// Residual returns the bin-wise difference h - o with quadratic error
// propagation. Both histograms must share the same binning.
func (h *H1) Residual(o *H1) (*H1, error) {
	if !h.SameBinning(o) {
		return nil, ErrBinningMismatch
	}
	res := &H1{
		Name:     h.Name,
		Title:    h.Title,
		Edges:    slices.Clone(h.Edges),
		Contents: make([]float64, h.Nbins()),
		SumW2:    make([]float64, h.Nbins()),
	}
	for i := range h.Contents {
		res.Contents[i] = h.Contents[i] - o.Contents[i]
		res.SumW2[i] = h.sumW2At(i) + o.sumW2At(i)
	}
	return res, nil
}

// Ratio returns the bin-wise quotient h / o with uncorrelated error
// propagation. Bins where the denominator is zero are set to NaN and get
// zero error; callers are expected to skip them.
func (h *H1) Ratio(o *H1) (*H1, error) {
	if !h.SameBinning(o) {
		return nil, ErrBinningMismatch
	}
	res := &H1{
		Name:     h.Name,
		Title:    h.Title,
		Edges:    slices.Clone(h.Edges),
		Contents: make([]float64, h.Nbins()),
		SumW2:    make([]float64, h.Nbins()),
	}
	for i := range h.Contents {
		a, b := h.Contents[i], o.Contents[i]
		if b == 0 {
			res.Contents[i] = math.NaN()
			continue
		}
		r := a / b
		res.Contents[i] = r
		// sigma_r^2 = r^2 * (sa^2/a^2 + sb^2/b^2); the a==0 case
		// degenerates to sa^2/b^2.
		sa2, sb2 := h.sumW2At(i), o.sumW2At(i)
		if a == 0 {
			res.SumW2[i] = sa2 / (b * b)
			continue
		}
		res.SumW2[i] = r * r * (sa2/(a*a) + sb2/(b*b))
	}
	return res, nil
}

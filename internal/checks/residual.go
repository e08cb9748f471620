package checks

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"

	"github.com/histcmp/histcmp/internal/histogram"
)

// DefaultResidualThreshold is the largest per-bin pull tolerated by the
// residual check.
const DefaultResidualThreshold = 1

// PullSummary condenses a set of per-bin pulls for reporting.
type PullSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Max    float64 `json:"max"`
}

// ResidualCheck subtracts the reference from the monitored histogram and
// requires every bin residual to stay within threshold standard deviations
// of zero. Bins with zero uncertainty are skipped.
type ResidualCheck struct {
	monitored, reference *histogram.H1
	threshold            float64

	// summary of the pull distribution, populated by Evaluate for the
	// report writers.
	summary PullSummary
}

// NewResidualCheck builds the residual check. A NaN threshold selects
// DefaultResidualThreshold.
func NewResidualCheck(monitored, reference *histogram.H1, threshold float64) Check {
	if math.IsNaN(threshold) {
		threshold = DefaultResidualThreshold
	}
	return &ResidualCheck{monitored: monitored, reference: reference, threshold: threshold}
}

// Name implements Check.
func (c *ResidualCheck) Name() string { return "ResidualCheck" }

// Summary returns the pull distribution summary. Valid after Evaluate.
func (c *ResidualCheck) Summary() PullSummary { return c.summary }

// Evaluate implements Check.
func (c *ResidualCheck) Evaluate() Result {
	residual, err := c.monitored.Residual(c.reference)
	if err != nil {
		return inconclusive(c.Name(), c.threshold, "binning mismatch")
	}

	pulls := collectPulls(residual, 0)
	if len(pulls) == 0 {
		return inconclusive(c.Name(), c.threshold, "no bins with uncertainty")
	}
	c.summary = summarizePulls(pulls)

	res := scoreResult(c.Name(), c.summary.Max, c.threshold, opLess)
	res.Label = fmt.Sprintf("max pull %.3g %s %g", c.summary.Max, opLess, c.threshold)
	if res.Status == StatusFailure {
		res.Label = "! " + res.Label
	}
	return res
}

// collectPulls returns |content - center|/error for every bin with a
// non-zero error, dropping NaN bins.
func collectPulls(h *histogram.H1, center float64) []float64 {
	var pulls []float64
	for i := range h.Contents {
		v := h.Contents[i]
		if math.IsNaN(v) {
			continue
		}
		e := h.BinError(i)
		if e <= 0 {
			continue
		}
		pulls = append(pulls, math.Abs(v-center)/e)
	}
	return pulls
}

// summarizePulls computes the pull distribution summary with
// go-moremath's sample statistics.
func summarizePulls(pulls []float64) PullSummary {
	samp := stats.Sample{Xs: pulls}
	_, max := samp.Bounds()
	return PullSummary{
		Mean:   samp.Mean(),
		StdDev: samp.StdDev(),
		Max:    max,
	}
}

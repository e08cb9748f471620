package checks

import (
	"fmt"
	"math"

	"github.com/histcmp/histcmp/internal/histogram"
)

// DefaultRatioThreshold is the largest deviation of the per-bin ratio from
// unity, in standard deviations, tolerated by the ratio check.
const DefaultRatioThreshold = 3

// RatioCheck divides the monitored histogram by the reference and requires
// every bin ratio to be compatible with one within threshold standard
// deviations. Bins with a zero reference content carry no information
// about the ratio and are skipped.
type RatioCheck struct {
	monitored, reference *histogram.H1
	threshold            float64
	summary              PullSummary
}

// NewRatioCheck builds the ratio check. A NaN threshold selects
// DefaultRatioThreshold.
func NewRatioCheck(monitored, reference *histogram.H1, threshold float64) Check {
	if math.IsNaN(threshold) {
		threshold = DefaultRatioThreshold
	}
	return &RatioCheck{monitored: monitored, reference: reference, threshold: threshold}
}

// Name implements Check.
func (c *RatioCheck) Name() string { return "RatioCheck" }

// Summary returns the ratio pull summary. Valid after Evaluate.
func (c *RatioCheck) Summary() PullSummary { return c.summary }

// Evaluate implements Check.
func (c *RatioCheck) Evaluate() Result {
	ratio, err := c.monitored.Ratio(c.reference)
	if err != nil {
		return inconclusive(c.Name(), c.threshold, "binning mismatch")
	}

	pulls := collectPulls(ratio, 1)
	if len(pulls) == 0 {
		return inconclusive(c.Name(), c.threshold, "no ratio bins with uncertainty")
	}
	c.summary = summarizePulls(pulls)

	res := scoreResult(c.Name(), c.summary.Max, c.threshold, opLess)
	res.Label = fmt.Sprintf("max ratio pull %.3g %s %g", c.summary.Max, opLess, c.threshold)
	if res.Status == StatusFailure {
		res.Label = "! " + res.Label
	}
	return res
}

package checks

import (
	"errors"
	"math"

	"github.com/histcmp/histcmp/internal/histogram"
	"github.com/histcmp/histcmp/internal/stats"
)

// DefaultChi2Threshold is the p-value below which the chi-square check
// fails. 0.01 tolerates the statistical fluctuations expected across many
// histograms in one comparison while still catching genuine shape changes.
const DefaultChi2Threshold = 0.01

// Chi2Test checks the chi-square compatibility of two histograms.
// It passes when the p-value exceeds the threshold.
type Chi2Test struct {
	monitored, reference *histogram.H1
	threshold            float64
}

// NewChi2Test builds the chi-square check. A NaN threshold selects
// DefaultChi2Threshold.
func NewChi2Test(monitored, reference *histogram.H1, threshold float64) Check {
	if math.IsNaN(threshold) {
		threshold = DefaultChi2Threshold
	}
	return &Chi2Test{monitored: monitored, reference: reference, threshold: threshold}
}

// Name implements Check.
func (c *Chi2Test) Name() string { return "Chi2Test" }

// Evaluate implements Check.
func (c *Chi2Test) Evaluate() Result {
	res, err := stats.Chi2Test(c.monitored, c.reference)
	switch {
	case errors.Is(err, stats.ErrChi2Binning):
		return inconclusive(c.Name(), c.threshold, "binning mismatch")
	case errors.Is(err, stats.ErrChi2Empty):
		return inconclusive(c.Name(), c.threshold, "empty histogram")
	case errors.Is(err, stats.ErrChi2NDF):
		return inconclusive(c.Name(), c.threshold, "no degrees of freedom")
	case err != nil:
		return inconclusive(c.Name(), c.threshold, err.Error())
	}
	return scoreResult(c.Name(), res.Prob, c.threshold, opGreater)
}

package checks

import (
	"math"

	"github.com/histcmp/histcmp/internal/histogram"
)

// DefaultIntegralThreshold is the number of standard deviations the two
// integrals may differ by before the check fails.
const DefaultIntegralThreshold = 3

// IntegralCheck compares the total event counts of the two histograms.
// The score is |∫monitored - ∫reference| in units of the monitored
// integral's uncertainty; the check passes while the score stays below the
// threshold.
type IntegralCheck struct {
	threshold float64
	sigma     float64
}

// NewIntegralCheck builds the integral check. A NaN threshold selects
// DefaultIntegralThreshold.
func NewIntegralCheck(monitored, reference *histogram.H1, threshold float64) Check {
	if math.IsNaN(threshold) {
		threshold = DefaultIntegralThreshold
	}
	intM, errM := monitored.IntegralAndError()
	intR, _ := reference.IntegralAndError()

	sigma := math.Inf(1)
	if errM > 0 {
		sigma = math.Abs(intM-intR) / errM
	}
	return &IntegralCheck{threshold: threshold, sigma: sigma}
}

// Name implements Check.
func (c *IntegralCheck) Name() string { return "IntegralCheck" }

// Evaluate implements Check.
func (c *IntegralCheck) Evaluate() Result {
	if math.IsInf(c.sigma, 1) {
		return inconclusive(c.Name(), c.threshold, "zero integral uncertainty")
	}
	return scoreResult(c.Name(), c.sigma, c.threshold, opLess)
}

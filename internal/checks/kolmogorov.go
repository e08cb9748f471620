package checks

import (
	"errors"
	"math"

	"github.com/histcmp/histcmp/internal/histogram"
	"github.com/histcmp/histcmp/internal/stats"
)

// DefaultKolmogorovThreshold is the KS probability below which the check
// fails.
const DefaultKolmogorovThreshold = 0.68

// KolmogorovTest checks shape compatibility with the binned
// Kolmogorov-Smirnov test. It passes when the KS probability exceeds the
// threshold.
type KolmogorovTest struct {
	monitored, reference *histogram.H1
	threshold            float64
}

// NewKolmogorovTest builds the KS check. A NaN threshold selects
// DefaultKolmogorovThreshold.
func NewKolmogorovTest(monitored, reference *histogram.H1, threshold float64) Check {
	if math.IsNaN(threshold) {
		threshold = DefaultKolmogorovThreshold
	}
	return &KolmogorovTest{monitored: monitored, reference: reference, threshold: threshold}
}

// Name implements Check.
func (c *KolmogorovTest) Name() string { return "KolmogorovTest" }

// Evaluate implements Check.
func (c *KolmogorovTest) Evaluate() Result {
	res, err := stats.KolmogorovTest(c.monitored, c.reference)
	switch {
	case errors.Is(err, stats.ErrKolmogorovBinning):
		return inconclusive(c.Name(), c.threshold, "binning mismatch")
	case errors.Is(err, stats.ErrKolmogorovEmpty):
		return inconclusive(c.Name(), c.threshold, "empty histogram")
	case err != nil:
		return inconclusive(c.Name(), c.threshold, err.Error())
	}
	return scoreResult(c.Name(), res.Prob, c.threshold, opGreater)
}

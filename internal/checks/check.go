package checks

import (
	"fmt"
	"math"

	"github.com/histcmp/histcmp/internal/histogram"
)

func nan() float64 { return math.NaN() }

// Status represents the outcome of a check or of an aggregated comparison.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Status int

const (
	// StatusSuccess means the check ran and the histograms are compatible.
	StatusSuccess Status = iota

	// StatusFailure means the check ran and found the histograms
	// incompatible.
	StatusFailure

	// StatusInconclusive means the check could not be applied, for
	// example because a histogram is empty or the binnings differ.
	StatusInconclusive
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailure:
		return "FAILURE"
	case StatusInconclusive:
		return "INCONCLUSIVE"
	default:
		return "UNKNOWN"
	}
}

// Icon returns the marker used in terminal and report output.
func (s Status) Icon() string {
	switch s {
	case StatusSuccess:
		return "✅"
	case StatusFailure:
		return "🔴"
	case StatusInconclusive:
		return "🟡"
	default:
		return "❓"
	}
}

// Result is the evaluated outcome of a single check on one histogram pair.
type Result struct {
	// Name is the check name as used in configuration (e.g. "Chi2Test").
	Name string `json:"name"`

	// Status is the check outcome.
	Status Status `json:"status"`

	// Score is the check's scalar score (p-value, pull, sigma); NaN when
	// the check has no meaningful score.
	Score float64 `json:"score"`

	// Threshold the score was compared against.
	Threshold float64 `json:"threshold"`

	// Label is a short human-readable description of the outcome, e.g.
	// "0.032 > 0.01".
	Label string `json:"label"`
}

// Check is a single compatibility check between a monitored and a
// reference histogram.
//
// Design decision: Checks are constructed per histogram pair and evaluated
// once, rather than being stateless functions, because several checks
// derive intermediate histograms (residuals, ratios) that the report also
// wants to show. Construction never fails; inapplicability is part of the
// evaluated Result.
type Check interface {
	// Name returns the configuration name of the check.
	Name() string

	// Evaluate runs the check against the pair it was built for.
	Evaluate() Result
}

// Constructor builds a check for a histogram pair with the given
// threshold. A NaN threshold selects the check's default.
type Constructor func(monitored, reference *histogram.H1, threshold float64) Check

// comparison operators for score-threshold checks.
type op int

const (
	opGreater op = iota
	opLess
)

func (o op) String() string {
	if o == opGreater {
		return ">"
	}
	return "<"
}

func (o op) holds(score, threshold float64) bool {
	if o == opGreater {
		return score > threshold
	}
	return score < threshold
}

// scoreResult assembles a Result for a score-vs-threshold check.
func scoreResult(name string, score, threshold float64, o op) Result {
	r := Result{
		Name:      name,
		Score:     score,
		Threshold: threshold,
		Label:     fmt.Sprintf("%.4g %s %g", score, o, threshold),
	}
	if o.holds(score, threshold) {
		r.Status = StatusSuccess
	} else {
		r.Status = StatusFailure
		r.Label = "! " + r.Label
	}
	return r
}

// inconclusive assembles a Result for a check that could not run.
func inconclusive(name string, threshold float64, reason string) Result {
	return Result{
		Name:      name,
		Status:    StatusInconclusive,
		Score:     nan(),
		Threshold: threshold,
		Label:     reason,
	}
}

package histogram

import "errors"

// Errors returned by histogram construction and bin-wise arithmetic.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each call site. This allows callers to
// use errors.Is(). The comparison engine treats ErrBinningMismatch as
// "check not applicable" rather than a fatal condition.
var (
	// ErrBinningMismatch is returned by bin-wise operations when the two
	// histograms do not share the same bin edges.
	ErrBinningMismatch = errors.New("histograms have different binning")

	// ErrEmptyHistogram is returned when a histogram has no bins.
	ErrEmptyHistogram = errors.New("histogram has no bins")

	// ErrInvalidEdges is returned when bin edges are not strictly increasing
	// or their length does not match the number of bins.
	ErrInvalidEdges = errors.New("bin edges must be strictly increasing with len(edges) == nbins+1")
)

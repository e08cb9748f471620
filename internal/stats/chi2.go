package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/histcmp/histcmp/internal/histogram"
)

// Chi2 validation errors.
var (
	// ErrChi2Binning is returned when the histograms cannot be compared
	// bin by bin.
	ErrChi2Binning = errors.New("chi2: histograms have different binning")

	// ErrChi2Empty is returned when either histogram has a zero integral.
	ErrChi2Empty = errors.New("chi2: histogram integral is zero")

	// ErrChi2NDF is returned when every bin is empty in both histograms,
	// leaving no degrees of freedom.
	ErrChi2NDF = errors.New("chi2: no degrees of freedom")
)

// Chi2Result holds the outcome of the two-histogram chi-square test.
type Chi2Result struct {
	// Prob is the p-value, the upper tail probability of Chi2 for NDF
	// degrees of freedom.
	Prob float64

	// Chi2 is the test statistic.
	Chi2 float64

	// NDF is the number of degrees of freedom after removing jointly
	// empty bins.
	NDF int

	// IGood counts bins with low statistics (expected content below one
	// effective entry). A non-zero value means Prob may be unreliable.
	IGood int

	// Residuals are the per-bin normalized residuals.
	Residuals []float64

	// Weighted reports which variant ran: false for the unweighted (UU)
	// statistic, true for the weighted (WW) one.
	Weighted bool
}

// Chi2Test compares two histograms with the chi-square test for binned
// data (N.D. Gagunashvili, "Comparison of weighted and unweighted
// histograms"). The unweighted variant is used when neither histogram
// carries sum-of-squared-weights storage, the weighted variant otherwise.
func Chi2Test(a, b *histogram.H1) (Chi2Result, error) {
	if !a.SameBinning(b) {
		return Chi2Result{}, ErrChi2Binning
	}
	if a.Integral() == 0 || b.Integral() == 0 {
		return Chi2Result{}, ErrChi2Empty
	}
	if a.IsWeighted() || b.IsWeighted() {
		return chi2WW(a, b)
	}
	return chi2UU(a, b)
}

// chi2UU is the unweighted-unweighted statistic:
//
//	chi2 = 1/(N1*N2) * sum( (N2*n1 - N1*n2)^2 / (n1 + n2) )
//
// over bins where n1+n2 > 0.
func chi2UU(a, b *histogram.H1) (Chi2Result, error) {
	sum1, sum2 := a.Integral(), b.Integral()
	res := Chi2Result{
		NDF:       a.Nbins() - 1,
		Residuals: make([]float64, a.Nbins()),
	}
	for i := 0; i < a.Nbins(); i++ {
		n1, n2 := a.Contents[i], b.Contents[i]
		if n1+n2 == 0 {
			res.NDF--
			continue
		}
		// Expected contents under the shared-shape hypothesis.
		e1 := sum1 * (n1 + n2) / (sum1 + sum2)
		e2 := sum2 * (n1 + n2) / (sum1 + sum2)
		if e1 < 1 || e2 < 1 {
			res.IGood++
		}
		delta := sum2*n1 - sum1*n2
		res.Chi2 += delta * delta / (n1 + n2)
		res.Residuals[i] = normalizedResidual(n1, e1)
	}
	res.Chi2 /= sum1 * sum2
	if res.NDF <= 0 {
		return res, ErrChi2NDF
	}
	res.Prob = chi2Prob(res.Chi2, res.NDF)
	return res, nil
}

// chi2WW is the weighted-weighted statistic:
//
//	chi2 = sum( (W2*w1 - W1*w2)^2 / (W1^2*s2^2 + W2^2*s1^2) )
//
// over bins where either squared error is non-zero.
func chi2WW(a, b *histogram.H1) (Chi2Result, error) {
	sum1, sum2 := a.Integral(), b.Integral()
	res := Chi2Result{
		NDF:       a.Nbins() - 1,
		Residuals: make([]float64, a.Nbins()),
		Weighted:  true,
	}
	for i := 0; i < a.Nbins(); i++ {
		w1, w2 := a.Contents[i], b.Contents[i]
		e1, e2 := a.BinError(i), b.BinError(i)
		s1sq, s2sq := e1*e1, e2*e2
		if s1sq == 0 && s2sq == 0 {
			res.NDF--
			continue
		}
		if s1sq > 0 && w1*w1/s1sq < 1 {
			res.IGood++
		} else if s2sq > 0 && w2*w2/s2sq < 1 {
			res.IGood++
		}
		sigma := sum1*sum1*s2sq + sum2*sum2*s1sq
		delta := sum2*w1 - sum1*w2
		res.Chi2 += delta * delta / sigma
		res.Residuals[i] = normalizedResidual(w1, sum1*(w1+w2)/(sum1+sum2))
	}
	if res.NDF <= 0 {
		return res, ErrChi2NDF
	}
	res.Prob = chi2Prob(res.Chi2, res.NDF)
	return res, nil
}

// normalizedResidual is (observed - expected)/sqrt(expected), zero when the
// expectation vanishes.
func normalizedResidual(obs, exp float64) float64 {
	if exp <= 0 {
		return 0
	}
	return (obs - exp) / math.Sqrt(exp)
}

// chi2Prob returns the upper tail probability of the chi-squared
// distribution with ndf degrees of freedom.
func chi2Prob(chi2 float64, ndf int) float64 {
	dist := distuv.ChiSquared{K: float64(ndf)}
	return dist.Survival(chi2)
}

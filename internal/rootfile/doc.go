// Package rootfile reads histograms from ROOT files via go-hep's groot
// package and converts them into the histcmp histogram model.
//
// Only one-dimensional histograms (TH1D, TH1F, TH1I) are handled; other
// object classes are listed as skipped so the comparison can report them
// instead of silently dropping keys.
package rootfile

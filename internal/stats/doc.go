// Package stats implements the two-histogram compatibility tests used by
// the checks package: the Gagunashvili chi-square test and the
// Kolmogorov-Smirnov test for binned data. Both follow the ROOT reference
// semantics (TH1::Chi2TestX, TH1::KolmogorovTest) so results are directly
// comparable with analyses done in ROOT.
package stats

// Package checks defines the compatibility checks that decide whether a
// monitored histogram agrees with its reference, and the Status type used
// to aggregate their outcomes.
//
// A check can be inapplicable (for example a chi-square test on an empty
// histogram); inapplicable checks are reported but do not count as
// failures. This three-state model is what makes a whole comparison
// "inconclusive" rather than silently green when no check could run.
package checks

// Package compare implements the comparison engine: it matches the
// histogram keys of the monitored and reference files, evaluates the
// configured checks for every common key, and aggregates the outcomes
// into a Comparison that the report writers and the history database
// consume.
package compare

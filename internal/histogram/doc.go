// Package histogram defines the binned histogram model used throughout
// histcmp. It is deliberately decoupled from the on-disk ROOT format so
// that checks and plots operate on plain slices of bin data.
package histogram

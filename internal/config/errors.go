package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoMonitoredFile is returned when the monitored input file is missing.
	ErrNoMonitoredFile = errors.New("no monitored file specified")

	// ErrNoReferenceFile is returned when the reference input file is missing.
	ErrNoReferenceFile = errors.New("no reference file specified")

	// ErrInvalidJobs is returned when the job count is not positive.
	// Zero concurrent workers would mean no comparison at all.
	ErrInvalidJobs = errors.New("invalid jobs: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one terminal format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidPlotFormat is returned when the plot format is not one of
	// the formats gonum/plot can save.
	ErrInvalidPlotFormat = errors.New("invalid plot format: must be svg, png or pdf")

	// ErrUnknownCheck is returned when the checks section names a check
	// that is not registered.
	ErrUnknownCheck = errors.New("unknown check name in configuration")
)

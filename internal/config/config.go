package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultJobs is the number of histogram pairs checked concurrently.
	// Checks are cheap; plot rendering is not. Ten workers keeps plot
	// generation busy on common machines without exhausting memory on
	// files with thousands of histograms.
	DefaultJobs = 10

	// DefaultPlotFormat is the output format for plot files.
	// SVG is also the only format that can be inlined into the HTML report.
	DefaultPlotFormat = "svg"

	// DefaultLabelMonitored and DefaultLabelReference are the legend and
	// axis labels used when the user does not name the inputs.
	DefaultLabelMonitored = "monitored"
	DefaultLabelReference = "reference"

	// DefaultTitle is the report title.
	DefaultTitle = "Histogram comparison"

	// AppName is the application name used for XDG directory paths.
	AppName = "histcmp"
)

// Config holds all configuration options for a comparison run.
// This struct is populated from CLI flags and the optional YAML file and
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// Monitored is the path of the ROOT file under test.
	Monitored string

	// Reference is the path of the known-good ROOT file.
	Reference string

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .histcmp in the current directory and then in the
	// user's home directory.
	ConfigFilePath string

	// Rules are the per-histogram check rules, from the config file or
	// DefaultRules.
	Rules Rules

	// Filters are regular expressions selecting which histogram keys to
	// compare. Empty means compare everything.
	Filters []string

	// OutputHTML is the path of the HTML report. Empty disables it.
	OutputHTML string

	// PlotsDir, when set, receives one plot file per compared histogram.
	PlotsDir string

	// PlotFormat is the plot file format: svg, png or pdf.
	PlotFormat string

	// LabelMonitored and LabelReference name the inputs in plots and
	// reports.
	LabelMonitored string
	LabelReference string

	// Title is the report title.
	Title string

	// Jobs is the number of histogram pairs evaluated concurrently.
	Jobs int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport writes the comparison to stdout as JSON instead of the
	// human-readable summary. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes the comparison to stdout as Markdown.
	MarkdownReport bool

	// SaveToDB controls whether the run is recorded in the history
	// database under DBDir.
	SaveToDB bool

	// DBDir is the directory holding the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults; callers override specific
// values from CLI flags afterwards.
func NewConfig() *Config {
	return &Config{
		Rules:          DefaultRules(),
		PlotFormat:     DefaultPlotFormat,
		LabelMonitored: DefaultLabelMonitored,
		LabelReference: DefaultLabelReference,
		Title:          DefaultTitle,
		Jobs:           DefaultJobs,
		SaveToDB:       true,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for histcmp, where the run
// history database lives.
// On Linux: ~/.local/share/histcmp
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for histcmp.
// On Linux: ~/.config/histcmp
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found; fixing one error often makes others
// irrelevant.
func (c *Config) Validate() error {
	if c.Monitored == "" {
		return ErrNoMonitoredFile
	}
	if c.Reference == "" {
		return ErrNoReferenceFile
	}
	if c.Jobs <= 0 {
		return ErrInvalidJobs
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	switch c.PlotFormat {
	case "svg", "png", "pdf":
	default:
		return ErrInvalidPlotFormat
	}
	return c.Rules.Validate()
}

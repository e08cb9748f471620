package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".histcmp"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .histcmp configuration file.
type File struct {
	// Rules holds the `checks:` section.
	Rules Rules `yaml:",inline"`

	// Labels optionally renames the inputs in plots and reports.
	Labels struct {
		Monitored string `yaml:"monitored,omitempty"`
		Reference string `yaml:"reference,omitempty"`
	} `yaml:"labels,omitempty"`

	// Title overrides the report title.
	Title string `yaml:"title,omitempty"`

	// Jobs overrides the comparison concurrency.
	Jobs int `yaml:"jobs,omitempty"`
}

// LoadConfigFile loads check rules and run options from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should handle this error depending on whether the path was explicitly
// specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Rules.Patterns == nil {
		cf.Rules = DefaultRules()
	}

	return &cf, nil
}

// Apply merges the file's settings into the runtime configuration.
// CLI flags already stored in cfg win over file values.
func (cf *File) Apply(cfg *Config) {
	cfg.Rules = cf.Rules
	if cf.Labels.Monitored != "" && cfg.LabelMonitored == DefaultLabelMonitored {
		cfg.LabelMonitored = cf.Labels.Monitored
	}
	if cf.Labels.Reference != "" && cfg.LabelReference == DefaultLabelReference {
		cfg.LabelReference = cf.Labels.Reference
	}
	if cf.Title != "" && cfg.Title == DefaultTitle {
		cfg.Title = cf.Title
	}
	if cf.Jobs > 0 && cfg.Jobs == DefaultJobs {
		cfg.Jobs = cf.Jobs
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .histcmp in the current directory
// 3. Look for .histcmp in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Package config provides configuration structures and utilities for
// histcmp. It defines the runtime options of a comparison run and the
// per-histogram check rules loaded from the YAML configuration file.
package config

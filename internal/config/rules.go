package config

import (
	"fmt"
	"math"
	"path"
	"sort"

	"github.com/histcmp/histcmp/internal/checks"
)

// CheckParams configures a single check within a rule. A nil *CheckParams
// in the YAML (an explicit `null`) disables the check for matching keys.
type CheckParams struct {
	// Threshold overrides the check's default threshold when set.
	Threshold *float64 `yaml:"threshold,omitempty"`
}

// Rules maps histogram key glob patterns to the checks enabled for the
// matching keys. This is the `checks:` section of the configuration file:
//
//	checks:
//	  "*":
//	    Chi2Test: {threshold: 0.01}
//	  "tracksummary_*":
//	    Chi2Test: null        # disable for these keys
type Rules struct {
	// Patterns maps a glob pattern (path.Match syntax) to per-check
	// parameters.
	Patterns map[string]map[string]*CheckParams `yaml:"checks"`
}

// DefaultRules enables all registered checks for every histogram with
// their default thresholds.
func DefaultRules() Rules {
	all := make(map[string]*CheckParams, len(checks.Names()))
	for _, name := range checks.Names() {
		all[name] = &CheckParams{}
	}
	return Rules{Patterns: map[string]map[string]*CheckParams{"*": all}}
}

// Validate checks that every referenced check exists and every pattern is
// a valid glob.
func (r Rules) Validate() error {
	for pattern, rule := range r.Patterns {
		if _, err := path.Match(pattern, "x"); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for name := range rule {
			if _, err := checks.Lookup(name); err != nil {
				return fmt.Errorf("%w: %q in pattern %q", ErrUnknownCheck, name, pattern)
			}
		}
	}
	return nil
}

// EnabledCheck names a check to run with its resolved threshold
// (NaN when the check's default applies).
type EnabledCheck struct {
	Name      string
	Threshold float64
}

// For resolves the checks enabled for a histogram key.
//
// Matching patterns are applied from least to most specific (the catch-all
// "*" first, longer patterns later), so a specific rule can tighten,
// loosen or disable what a broader one enabled. YAML mappings carry no
// reliable order, which is why specificity rather than file order decides.
func (r Rules) For(key string) []EnabledCheck {
	patterns := make([]string, 0, len(r.Patterns))
	for p := range r.Patterns {
		if ok, _ := path.Match(p, key); ok {
			patterns = append(patterns, p)
		}
	}
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) < len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})

	resolved := make(map[string]*float64) // name -> threshold override, absent = disabled
	for _, p := range patterns {
		for name, params := range r.Patterns[p] {
			if params == nil {
				delete(resolved, name)
				continue
			}
			resolved[name] = params.Threshold
		}
	}

	enabled := make([]EnabledCheck, 0, len(resolved))
	for name, thr := range resolved {
		ec := EnabledCheck{Name: name, Threshold: math.NaN()}
		if thr != nil {
			ec.Threshold = *thr
		}
		enabled = append(enabled, ec)
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Name < enabled[j].Name })
	return enabled
}

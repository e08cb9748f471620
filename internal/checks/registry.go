package checks

import (
	"fmt"
	"sort"
)

// registry maps configuration names to check constructors.
// The names are the ones accepted in the `checks:` section of the
// configuration file.
var registry = map[string]Constructor{
	"Chi2Test":       NewChi2Test,
	"KolmogorovTest": NewKolmogorovTest,
	"IntegralCheck":  NewIntegralCheck,
	"ResidualCheck":  NewResidualCheck,
	"RatioCheck":     NewRatioCheck,
}

// Lookup returns the constructor registered under name.
func Lookup(name string) (Constructor, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown check %q (known: %v)", name, Names())
	}
	return c, nil
}

// Names returns the registered check names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

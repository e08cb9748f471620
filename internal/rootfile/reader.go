package rootfile

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/groot"

	"github.com/histcmp/histcmp/internal/histogram"
)

// SkippedKey records a file key that was not converted, with the ROOT
// class that caused it to be skipped.
type SkippedKey struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

// Contents is everything histcmp extracts from one ROOT file.
type Contents struct {
	// Hists maps key names to the converted 1D histograms.
	Hists map[string]*histogram.H1

	// Classes maps every key name to its ROOT class name, including keys
	// that were skipped. The comparison uses it to detect type mismatches
	// between the two files.
	Classes map[string]string

	// Skipped lists the keys whose class is not handled.
	Skipped []SkippedKey
}

// h1Source is the subset of groot's rhist 1D histogram API the converter
// needs. Keeping this interface local lets tests feed synthetic
// histograms without constructing ROOT objects.
type h1Source interface {
	Name() string
	Title() string
	Entries() float64
	NbinsX() int
	XBinContent(int) float64
	XBinError(int) float64
	XBinLowEdge(int) float64
	XBinWidth(int) float64
}

// Read opens a ROOT file and converts every 1D histogram in it.
func Read(path string) (*Contents, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ROOT file %s: %w", path, err)
	}
	defer f.Close()

	out := &Contents{
		Hists:   make(map[string]*histogram.H1),
		Classes: make(map[string]string),
	}

	for _, key := range f.Keys() {
		name, class := key.Name(), key.ClassName()
		out.Classes[name] = class

		if !is1D(class) {
			out.Skipped = append(out.Skipped, SkippedKey{Name: name, Class: class})
			continue
		}

		obj, err := key.Object()
		if err != nil {
			return nil, fmt.Errorf("failed to read key %q from %s: %w", name, path, err)
		}
		src, ok := obj.(h1Source)
		if !ok {
			out.Skipped = append(out.Skipped, SkippedKey{Name: name, Class: class})
			continue
		}
		h, err := convert(src)
		if err != nil {
			return nil, fmt.Errorf("failed to convert histogram %q from %s: %w", name, path, err)
		}
		h.Name = name // the key name, not the in-object name, identifies it
		out.Hists[name] = h
	}

	return out, nil
}

// is1D reports whether the ROOT class is a plain 1D histogram.
// TH2/TH3/TProfile inherit TH1 in ROOT but are not comparable bin ranges
// here, so matching is on the exact class prefix.
func is1D(class string) bool {
	switch class {
	case "TH1D", "TH1F", "TH1I", "TH1S", "TH1C":
		return true
	default:
		return false
	}
}

// convert maps a groot 1D histogram onto the histcmp model.
//
// groot exposes bin errors rather than raw Sumw2 storage. When every bin
// error equals the Poisson expectation sqrt(content) the histogram is
// treated as unweighted and SumW2 is left nil; otherwise the squared
// errors are stored as SumW2.
func convert(src h1Source) (*histogram.H1, error) {
	n := src.NbinsX()
	edges := make([]float64, n+1)
	contents := make([]float64, n)
	sumw2 := make([]float64, n)

	weighted := false
	for i := 0; i < n; i++ {
		edges[i] = src.XBinLowEdge(i)
		c := src.XBinContent(i)
		e := src.XBinError(i)
		contents[i] = c
		sumw2[i] = e * e
		if math.Abs(e*e-math.Abs(c)) > 1e-9*math.Max(1, math.Abs(c)) {
			weighted = true
		}
	}
	edges[n] = src.XBinLowEdge(n-1) + src.XBinWidth(n-1)

	h, err := histogram.New(src.Name(), edges, contents)
	if err != nil {
		return nil, err
	}
	h.Title = src.Title()
	h.Entries = src.Entries()
	if weighted {
		h.SumW2 = sumw2
	}
	return h, nil
}

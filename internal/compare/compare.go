package compare

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/histcmp/histcmp/internal/checks"
	"github.com/histcmp/histcmp/internal/config"
	"github.com/histcmp/histcmp/internal/histogram"
	"github.com/histcmp/histcmp/internal/rootfile"
)

// KeyInfo identifies a histogram key with its ROOT class.
type KeyInfo struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

// Item is the comparison outcome for one common histogram key.
type Item struct {
	// Key is the histogram key name.
	Key string `json:"key"`

	// Class is the ROOT class of the object in the monitored file.
	Class string `json:"class"`

	// Status aggregates the check outcomes: any failed check makes the
	// item a failure, otherwise at least one passed check makes it a
	// success, otherwise it is inconclusive.
	Status checks.Status `json:"status"`

	// Checks are the individual check results.
	Checks []checks.Result `json:"checks"`

	// Monitored and Reference are the compared histograms, kept for plot
	// rendering. They are not serialized.
	Monitored *histogram.H1 `json:"-"`
	Reference *histogram.H1 `json:"-"`
}

// Comparison is the full outcome of comparing two ROOT files.
type Comparison struct {
	// Title is the report title.
	Title string `json:"title"`

	// MonitoredPath and ReferencePath are the input file paths.
	MonitoredPath string `json:"monitored_path"`
	ReferencePath string `json:"reference_path"`

	// MonitoredHash and ReferenceHash are SHA3-256 fingerprints of the
	// input files, hex encoded. They identify a run in the history
	// database independent of file paths.
	MonitoredHash string `json:"monitored_hash"`
	ReferenceHash string `json:"reference_hash"`

	// LabelMonitored and LabelReference name the inputs in output.
	LabelMonitored string `json:"label_monitored"`
	LabelReference string `json:"label_reference"`

	// Timestamp is when the comparison ran.
	Timestamp time.Time `json:"timestamp"`

	// Items are the per-key results for all compared keys, sorted by key.
	Items []Item `json:"items"`

	// MonitoredOnly and ReferenceOnly list keys present in only one file.
	// A common key whose class differs between the files appears in both.
	MonitoredOnly []KeyInfo `json:"monitored_only,omitempty"`
	ReferenceOnly []KeyInfo `json:"reference_only,omitempty"`

	// Skipped lists keys whose object class is not comparable.
	Skipped []rootfile.SkippedKey `json:"skipped,omitempty"`

	// Status is the overall outcome.
	Status checks.Status `json:"status"`
}

// Counts returns how many items passed, failed, and were inconclusive.
func (c *Comparison) Counts() (passed, failed, inconclusive int) {
	for _, item := range c.Items {
		switch item.Status {
		case checks.StatusSuccess:
			passed++
		case checks.StatusFailure:
			failed++
		case checks.StatusInconclusive:
			inconclusive++
		}
	}
	return passed, failed, inconclusive
}

// Engine runs comparisons according to a configuration.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger

	// filters are the compiled key filters; nil means compare every key.
	filters []*regexp.Regexp
}

// NewEngine creates a comparison engine. The filter expressions from the
// configuration are compiled eagerly so an invalid pattern fails before
// any file is opened.
func NewEngine(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{cfg: cfg, logger: logger}
	for _, expr := range cfg.Filters {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
		}
		e.filters = append(e.filters, re)
	}
	return e, nil
}

// match reports whether a key passes the filters.
func (e *Engine) match(key string) bool {
	if len(e.filters) == 0 {
		return true
	}
	for _, re := range e.filters {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// Run loads both files and compares them.
//
// Items are evaluated concurrently: a single check is cheap, but large
// performance files carry thousands of histogram pairs. The worker limit
// comes from the configuration.
func (e *Engine) Run(ctx context.Context) (*Comparison, error) {
	cfg := e.cfg

	monitored, err := rootfile.Read(cfg.Monitored)
	if err != nil {
		return nil, err
	}
	reference, err := rootfile.Read(cfg.Reference)
	if err != nil {
		return nil, err
	}

	hashM, err := Fingerprint(cfg.Monitored)
	if err != nil {
		return nil, err
	}
	hashR, err := Fingerprint(cfg.Reference)
	if err != nil {
		return nil, err
	}

	comp := &Comparison{
		Title:          cfg.Title,
		MonitoredPath:  cfg.Monitored,
		ReferencePath:  cfg.Reference,
		MonitoredHash:  hashM,
		ReferenceHash:  hashR,
		LabelMonitored: cfg.LabelMonitored,
		LabelReference: cfg.LabelReference,
		Timestamp:      time.Now(),
	}

	common := e.partition(comp, monitored, reference)
	e.logger.Info("comparing histograms",
		"common", len(common),
		"monitored_only", len(comp.MonitoredOnly),
		"reference_only", len(comp.ReferenceOnly),
		"skipped", len(comp.Skipped),
	)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for _, key := range common {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := e.compareItem(key, monitored.Classes[key], monitored.Hists[key], reference.Hists[key])
			mu.Lock()
			comp.Items = append(comp.Items, item)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Concurrent collection scrambles the order; reports want it stable.
	sort.Slice(comp.Items, func(i, j int) bool { return comp.Items[i].Key < comp.Items[j].Key })

	comp.Status = e.overallStatus(comp)
	return comp, nil
}

// partition splits the key sets into common, monitored-only and
// reference-only, applying the key filters. A common key whose ROOT class
// differs between files is treated as removed from one file and added to
// the other, matching how key renames surface.
func (e *Engine) partition(comp *Comparison, monitored, reference *rootfile.Contents) []string {
	var common []string
	for name, class := range monitored.Classes {
		if !e.match(name) {
			continue
		}
		refClass, ok := reference.Classes[name]
		if !ok {
			comp.MonitoredOnly = append(comp.MonitoredOnly, KeyInfo{Name: name, Class: class})
			continue
		}
		if class != refClass {
			e.logger.Warn("type mismatch between files",
				"key", name, "monitored", class, "reference", refClass)
			comp.MonitoredOnly = append(comp.MonitoredOnly, KeyInfo{Name: name, Class: class})
			comp.ReferenceOnly = append(comp.ReferenceOnly, KeyInfo{Name: name, Class: refClass})
			continue
		}
		if _, ok := monitored.Hists[name]; !ok {
			// Present in both files but not a comparable class.
			comp.Skipped = append(comp.Skipped, rootfile.SkippedKey{Name: name, Class: class})
			continue
		}
		common = append(common, name)
	}
	for name, class := range reference.Classes {
		if !e.match(name) {
			continue
		}
		if _, ok := monitored.Classes[name]; !ok {
			comp.ReferenceOnly = append(comp.ReferenceOnly, KeyInfo{Name: name, Class: class})
		}
	}

	sort.Strings(common)
	sort.Slice(comp.MonitoredOnly, func(i, j int) bool { return comp.MonitoredOnly[i].Name < comp.MonitoredOnly[j].Name })
	sort.Slice(comp.ReferenceOnly, func(i, j int) bool { return comp.ReferenceOnly[i].Name < comp.ReferenceOnly[j].Name })
	return common
}

// compareItem evaluates the configured checks for one histogram pair.
func (e *Engine) compareItem(key, class string, mon, ref *histogram.H1) Item {
	item := Item{
		Key:       key,
		Class:     class,
		Monitored: mon,
		Reference: ref,
	}

	for _, enabled := range e.cfg.Rules.For(key) {
		ctor, err := checks.Lookup(enabled.Name)
		if err != nil {
			// Validate() rejects unknown names before a run starts.
			e.logger.Error("skipping unknown check", "check", enabled.Name, "key", key)
			continue
		}
		res := ctor(mon, ref, enabled.Threshold).Evaluate()
		item.Checks = append(item.Checks, res)
		e.logger.Debug("check evaluated",
			"key", key, "check", res.Name, "status", res.Status.String(), "label", res.Label)
	}

	item.Status = itemStatus(item.Checks)
	return item
}

// itemStatus folds check results into an item status.
func itemStatus(results []checks.Result) checks.Status {
	status := checks.StatusInconclusive
	for _, r := range results {
		switch r.Status {
		case checks.StatusFailure:
			return checks.StatusFailure
		case checks.StatusSuccess:
			status = checks.StatusSuccess
		}
	}
	return status
}

// overallStatus folds the comparison into a single status: exclusive keys
// or any failed item fail the comparison, inconclusive items downgrade an
// otherwise clean run.
func (e *Engine) overallStatus(comp *Comparison) checks.Status {
	_, failed, inconclusive := comp.Counts()
	if failed > 0 || len(comp.MonitoredOnly) > 0 || len(comp.ReferenceOnly) > 0 {
		return checks.StatusFailure
	}
	if inconclusive > 0 {
		return checks.StatusInconclusive
	}
	return checks.StatusSuccess
}

package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/histcmp/histcmp/internal/checks"
	"github.com/histcmp/histcmp/internal/compare"
	"github.com/histcmp/histcmp/internal/config"
	"github.com/histcmp/histcmp/internal/database"
	"github.com/histcmp/histcmp/internal/report"
)

// Per-histogram direction between two stored runs.
const (
	directionWorsened  = "worsened"
	directionImproved  = "improved"
	directionUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
// This command inspects comparison runs stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [monitored.root reference.root]",
		Short: "Inspect stored comparison runs",
		Long: `History lists and compares runs recorded by 'histcmp compare'.

Without flags it lists the most recent runs. With --diff and a file pair,
it loads the two latest runs for that pair and shows which histograms
improved, worsened or stayed unchanged between them.

Examples:
  # List the last 20 runs
  histcmp history

  # List the last 5 runs
  histcmp history --limit 5

  # Show one stored run in full
  histcmp history --run-id 12

  # Diff the two latest runs for a file pair
  histcmp history --diff new.root reference.root`,
		Args: cobra.MaximumNArgs(2),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().Int64P("run-id", "i", 0,
		"Show the full report of a stored run (use the ID from the list)")
	cmd.Flags().BoolP("diff", "d", false,
		"Diff the two latest runs for the given file pair")
	cmd.Flags().BoolP("json", "j", false,
		"Output the --run-id report in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	runID, err := cmd.Flags().GetInt64("run-id")
	if err != nil {
		return err
	}
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	if diff && len(args) != 2 {
		return errors.New("--diff requires the monitored and reference file paths")
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch {
	case runID > 0:
		return showRun(ctx, cmd, db, runID)
	case diff:
		return diffPair(ctx, cmd, db, args[0], args[1])
	default:
		return listRuns(ctx, cmd, db, limit)
	}
}

// listRuns prints the stored run summaries, newest first.
func listRuns(ctx context.Context, cmd *cobra.Command, db *database.ResultDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet. Run 'histcmp compare' first.")
		return nil
	}

	fmt.Fprintf(out, "%-5s %-20s %-4s %-30s %-30s %s\n",
		"ID", "DATE", "", "MONITORED", "REFERENCE", "PASS/FAIL/INC")
	for _, r := range runs {
		fmt.Fprintf(out, "%-5d %-20s %-4s %-30s %-30s %d/%d/%d\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Status.Icon(),
			truncate(r.MonitoredPath, 30),
			truncate(r.ReferencePath, 30),
			r.Passed, r.Failed, r.Inconclusive,
		)
	}
	return nil
}

// showRun prints the full report of one stored run.
func showRun(ctx context.Context, cmd *cobra.Command, db *database.ResultDB, id int64) error {
	comp, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if comp == nil {
		return fmt.Errorf("run %d not found (use 'histcmp history' to list runs)", id)
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	var w report.Writer
	if jsonOut {
		w = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	} else {
		w = report.NewTextWriter(cmd.OutOrStdout(), report.WithVerbose(true))
	}
	_, err = w.Write(comp)
	return err
}

// diffPair loads the two latest runs for a file pair and prints the
// per-histogram direction of change between them.
func diffPair(ctx context.Context, cmd *cobra.Command, db *database.ResultDB, monitored, reference string) error {
	monHash, err := compare.Fingerprint(monitored)
	if err != nil {
		return err
	}
	refHash, err := compare.Fingerprint(reference)
	if err != nil {
		return err
	}

	runs, err := db.RunsForPair(ctx, monHash, refHash, 2)
	if err != nil {
		return err
	}
	if len(runs) < 2 {
		return fmt.Errorf("need at least two stored runs for this pair, found %d", len(runs))
	}

	latest, err := db.GetRun(ctx, runs[0].ID)
	if err != nil {
		return err
	}
	previous, err := db.GetRun(ctx, runs[1].ID)
	if err != nil {
		return err
	}
	if latest == nil || previous == nil {
		return errors.New("stored run payload is missing")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Comparing run %d (%s) against run %d (%s)\n\n",
		runs[0].ID, runs[0].Timestamp.Format("2006-01-02 15:04"),
		runs[1].ID, runs[1].Timestamp.Format("2006-01-02 15:04"))

	var improved, worsened, unchanged int
	for _, d := range diffItems(previous, latest) {
		switch d.direction {
		case directionImproved:
			improved++
		case directionWorsened:
			worsened++
		default:
			unchanged++
		}
		if d.direction != directionUnchanged {
			fmt.Fprintf(out, "  %-10s %s (%s -> %s)\n", d.direction, d.key, d.before, d.after)
		}
	}

	fmt.Fprintf(out, "\nImproved: %d  Worsened: %d  Unchanged: %d\n", improved, worsened, unchanged)
	if worsened > 0 {
		return fmt.Errorf("%d histogram(s) worsened since the previous run", worsened)
	}
	return nil
}

// itemDiff is the direction of change of one histogram between two runs.
type itemDiff struct {
	key       string
	direction string
	before    string
	after     string
}

// diffItems pairs up the items of two runs by key and classifies each
// common key. Keys present in only one run are reported against a
// "(absent)" placeholder.
func diffItems(previous, latest *compare.Comparison) []itemDiff {
	prev := make(map[string]checks.Status, len(previous.Items))
	for _, item := range previous.Items {
		prev[item.Key] = item.Status
	}
	cur := make(map[string]checks.Status, len(latest.Items))
	for _, item := range latest.Items {
		cur[item.Key] = item.Status
	}

	keys := make([]string, 0, len(prev)+len(cur))
	seen := make(map[string]bool, len(prev)+len(cur))
	for k := range prev {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range cur {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	diffs := make([]itemDiff, 0, len(keys))
	for _, k := range keys {
		before, inPrev := prev[k]
		after, inCur := cur[k]

		d := itemDiff{key: k, before: "(absent)", after: "(absent)"}
		if inPrev {
			d.before = before.String()
		}
		if inCur {
			d.after = after.String()
		}

		switch {
		case !inPrev || !inCur:
			// Appearing or disappearing keys are a regression in the
			// file contents even when the checks themselves pass.
			d.direction = directionWorsened
		case statusRank(after) < statusRank(before):
			d.direction = directionImproved
		case statusRank(after) > statusRank(before):
			d.direction = directionWorsened
		default:
			d.direction = directionUnchanged
		}
		diffs = append(diffs, d)
	}
	return diffs
}

// statusRank orders statuses from best to worst for diff purposes.
func statusRank(s checks.Status) int {
	switch s {
	case checks.StatusSuccess:
		return 0
	case checks.StatusInconclusive:
		return 1
	default:
		return 2
	}
}

// truncate shortens a string to at most n runes, marking the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return "..." + s[len(s)-(n-3):]
}

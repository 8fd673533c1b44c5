package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/EMcConnell20/tri-ton/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	Expansion string // optional - filter to one expansion key
}

// TraceRun is one recorded run in the timeline.
type TraceRun struct {
	Seq       int64    `json:"seq"`
	ID        string   `json:"id"`
	Expansion string   `json:"expansion"`
	File      string   `json:"file"`
	Entry     string   `json:"entry"`
	Args      []string `json:"args,omitempty"`
	Value     string   `json:"value,omitempty"`
	Error     string   `json:"error,omitempty"`
	Steps     int64    `json:"steps"`
	MaxSteps  int64    `json:"max_steps"`
	Output    string   `json:"output,omitempty"`
}

// TraceStats holds summary statistics for the database.
type TraceStats struct {
	Expansions int64 `json:"expansions"`
	Runs       int64 `json:"runs"`
	CacheHits  int64 `json:"cache_hits"`
	LastSeq    int64 `json:"last_seq"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Timeline []TraceRun `json:"timeline"`
	Stats    TraceStats `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "List recorded runs",
		Long: `List the runs recorded in a database, oldest first.

Each run shows the file and function it called, its arguments and its
outcome. The stats section counts expansions, runs and cache hits.

Examples:
  tri trace --db runs.db
  tri trace --db runs.db --expansion 3f2a9c
  tri trace --db runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Expansion, "expansion", "", "only runs of expansions whose key starts with this prefix")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	targets, err := st.ReplayRuns(ctx, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}
	stats, err := st.GetStats(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read database", err)
	}

	result := TraceResult{
		Timeline: buildTimeline(targets, opts.Expansion),
		Stats: TraceStats{
			Expansions: stats.Expansions,
			Runs:       stats.Runs,
			CacheHits:  stats.Hits,
			LastSeq:    stats.LastSeq,
		},
	}

	if out.IsJSON() {
		return out.Success(result)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

// buildTimeline converts replay targets to timeline entries, keeping only
// expansions whose key starts with prefix.
func buildTimeline(targets []store.ReplayTarget, prefix string) []TraceRun {
	timeline := []TraceRun{}
	for _, t := range targets {
		if !strings.HasPrefix(t.Expansion.Key, prefix) {
			continue
		}
		timeline = append(timeline, TraceRun{
			Seq:       t.Run.Seq,
			ID:        t.Run.ID,
			Expansion: t.Expansion.Key,
			File:      t.Expansion.File,
			Entry:     t.Run.Entry,
			Args:      t.Run.Args,
			Value:     t.Run.Value,
			Error:     t.Run.ErrorCode,
			Steps:     t.Run.Steps,
			MaxSteps:  t.Run.MaxSteps,
			Output:    t.Run.Output,
		})
	}
	return timeline
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	// Timeline section
	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no runs)")
	} else {
		for _, run := range result.Timeline {
			formatTimelineRun(w, run, verbose)
		}
	}
	fmt.Fprintln(w)

	// Stats section
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Expansions: %d\n", result.Stats.Expansions)
	fmt.Fprintf(w, "  Runs:       %d\n", result.Stats.Runs)
	fmt.Fprintf(w, "  Cache Hits: %d\n", result.Stats.CacheHits)

	return nil
}

// formatTimelineRun formats a single run for text output.
func formatTimelineRun(w io.Writer, run TraceRun, verbose bool) {
	outcome := "=> " + run.Value
	if run.Error != "" {
		outcome = "!! " + run.Error
	}
	fmt.Fprintf(w, "  [%d] %s %s(%s) %s\n", run.Seq, run.File, run.Entry, strings.Join(run.Args, ", "), outcome)
	if !verbose {
		return
	}
	fmt.Fprintf(w, "       Steps: %d of %d\n", run.Steps, run.MaxSteps)
	if run.Output != "" {
		fmt.Fprintf(w, "       Output: %q\n", run.Output)
	}
	fmt.Fprintf(w, "       ID: %s\n", truncateID(run.ID))
	fmt.Fprintf(w, "       Expansion: %s\n", truncateID(run.Expansion))
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EMcConnell20/tri-ton/internal/harness"
	"github.com/EMcConnell20/tri-ton/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Expansions    int64              `json:"expansions"`
	Runs          int64              `json:"runs"`
	Mismatches    []harness.Mismatch `json:"mismatches"`
	Deterministic bool               `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-execute recorded runs and verify determinism",
		Long: `Compile every recorded expansion again and re-execute every recorded run.

Expansions must produce the same program text and runs must produce the
same value, error code, step count and output. Runs recorded under a
different project catalog or engine version are reported as stale.

Exit codes:
  0 - Every run replayed identically
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  tri replay --db runs.db
  tri replay --db runs.db --config tri.cue --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	proj, err := opts.loadProject()
	if err != nil {
		return err
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.GetStats(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read database", err)
	}

	mismatches, err := harness.VerifyReplay(ctx, st, proj.Catalog, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}
	if mismatches == nil {
		mismatches = []harness.Mismatch{}
	}

	result := ReplayResult{
		Expansions:    stats.Expansions,
		Runs:          stats.Runs,
		Mismatches:    mismatches,
		Deterministic: len(mismatches) == 0,
	}

	if out.IsJSON() {
		if !result.Deterministic {
			if err := out.Failure(CodeDeterminism, "determinism verification failed", result); err != nil {
				return err
			}
			// Determinism failure = exit code 1
			return NewExitError(ExitFailure, "determinism verification failed")
		}
		return out.Success(result)
	}

	return outputReplayText(cmd, result)
}

// openExisting opens a database that must already exist; store.Open would
// otherwise create an empty one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found",
			&LoadError{Code: ErrCodeNotFound, Message: path, Err: err})
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database",
			&LoadError{Code: ErrCodeStore, Message: path, Err: err})
	}
	return st, nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d run(s) over %d expansion(s)\n", result.Runs, result.Expansions)

	if result.Deterministic {
		fmt.Fprintln(w, "✓ All runs replayed identically")
		return nil
	}

	fmt.Fprintln(w)
	for _, m := range result.Mismatches {
		fmt.Fprintf(w, "✗ %s\n", m.Error())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "✗ Determinism verification failed")
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}

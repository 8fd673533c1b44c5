package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/EMcConnell20/tri-ton/internal/compiler"
	"github.com/EMcConnell20/tri-ton/internal/ir"
	"github.com/EMcConnell20/tri-ton/internal/store"
	"github.com/EMcConnell20/tri-ton/internal/syntax"
)

// Mismatch is one difference between a recorded outcome and its replay.
type Mismatch struct {
	ExpansionKey string `json:"expansion_key"`
	RunID        string `json:"run_id,omitempty"` // empty when the expansion itself differs
	Field        string `json:"field"`
	Recorded     string `json:"recorded"`
	Replayed     string `json:"replayed"`
}

func (m Mismatch) Error() string {
	if m.RunID == "" {
		return fmt.Sprintf("replay %s: %s differs: recorded %q, replayed %q",
			shortKey(m.ExpansionKey), m.Field, m.Recorded, m.Replayed)
	}
	return fmt.Sprintf("replay run %s: %s differs: recorded %q, replayed %q",
		m.RunID, m.Field, m.Recorded, m.Replayed)
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

// VerifyReplay compiles every stored expansion again with base and
// re-executes every recorded run.
//
// Expansions must produce the same program text, whether or not a run was
// ever recorded for them, and runs must produce the same value, error code,
// step count and output. Runs whose expansion was made with a different
// catalog or version are reported rather than replayed. A returned error
// means the store could not be read or a recorded source no longer compiles.
func VerifyReplay(ctx context.Context, st *store.Store, base *compiler.Catalog, logger *slog.Logger) ([]Mismatch, error) {
	expansions, err := st.ListExpansions(ctx)
	if err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	programs := make(map[string]*compiler.Result, len(expansions))
	for _, exp := range expansions {
		compiled, stale, err := recompile(exp, base, logger)
		if err != nil {
			return nil, err
		}
		mismatches = append(mismatches, stale...)
		programs[exp.Key] = compiled
	}

	targets, err := st.ReplayRuns(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, target := range targets {
		run := target.Run
		compiled := programs[target.Expansion.Key]
		if compiled == nil {
			continue
		}

		args, err := parseArgs(run.Args, compiled.Catalog)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		event, err := execute(ctx, compiled.Program, run.Entry, args, run.MaxSteps, logger)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}

		diff := func(field, recorded, replayed string) {
			if recorded != replayed {
				mismatches = append(mismatches, Mismatch{
					ExpansionKey: target.Expansion.Key,
					RunID:        run.ID,
					Field:        field,
					Recorded:     recorded,
					Replayed:     replayed,
				})
			}
		}
		diff("value", run.Value, event.Value)
		diff("error", run.ErrorCode, event.Error)
		diff("steps", fmt.Sprint(run.Steps), fmt.Sprint(event.Steps))
		diff("output", run.Output, event.Output)
	}

	logger.Debug("replay verified", "expansions", len(expansions), "runs", len(targets), "mismatches", len(mismatches))
	return mismatches, nil
}

// recompile rebuilds one expansion. A nil result with mismatches means the
// expansion cannot be replayed with base.
func recompile(exp store.Expansion, base *compiler.Catalog, logger *slog.Logger) (*compiler.Result, []Mismatch, error) {
	stale := func(field, recorded, replayed string) []Mismatch {
		return []Mismatch{{ExpansionKey: exp.Key, Field: field, Recorded: recorded, Replayed: replayed}}
	}
	if exp.CatalogDigest != base.Digest() {
		return nil, stale("catalog", exp.CatalogDigest, base.Digest()), nil
	}
	if exp.EngineVersion != ir.EngineVersion || exp.IRVersion != ir.IRVersion {
		return nil, stale("version",
			exp.EngineVersion+"/"+exp.IRVersion,
			ir.EngineVersion+"/"+ir.IRVersion), nil
	}

	file, err := syntax.Parse(exp.File, exp.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("expansion %s: %w", shortKey(exp.Key), err)
	}
	compiled, err := compiler.Compile(file, base, compiler.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("expansion %s: %w", shortKey(exp.Key), err)
	}

	if out := ir.FormatFile(compiled.Program.File); out != exp.Output {
		return compiled, stale("expansion", exp.Output, out), nil
	}
	return compiled, nil, nil
}

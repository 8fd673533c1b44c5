package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/EMcConnell20/tri-ton/internal/compiler"
	"github.com/EMcConnell20/tri-ton/internal/ir"
	"github.com/EMcConnell20/tri-ton/internal/store"
)

// ExpandOptions holds flags for the expand command.
type ExpandOptions struct {
	*RootOptions
	Output string // write the expanded program here instead of stdout
	Cache  string // expansion cache database; overrides the project setting
}

// ExpandResult is the JSON payload of the expand command.
type ExpandResult struct {
	File       string                      `json:"file"`
	Key        string                      `json:"key"`
	Cached     bool                        `json:"cached"`
	Output     string                      `json:"output"`
	Expansions json.RawMessage             `json:"expansions"`
	Warnings   []compiler.RecursionWarning `json:"warnings,omitempty"`
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpandOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expand <file>",
		Short: "Print the expanded form of a source file",
		Long: `Expand every tri! invocation in a source file and print the result.

The output is plain tri-script: the same file with each invocation replaced
by its let, if-let or loop expansion. A file name of "-" reads standard
input. With a cache database, an unchanged file under an unchanged project
is served from the cache without compiling.

Exit codes:
  0 - File expanded
  1 - The file has diagnostics
  2 - Command error (unreadable file, bad project, database error)

Examples:
  tri expand prog.tri
  tri expand -o prog.expanded.tri prog.tri
  tri expand --cache .tri-cache.db prog.tri
  tri expand --format json prog.tri`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the expansion to a file")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "expansion cache database (default from tri.cue)")

	return cmd
}

func runExpand(opts *ExpandOptions, path string, cmd *cobra.Command) error {
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
	src, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	st, err := openCache(ctx, opts.Cache, proj, logger)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	result, _, err := expandSource(ctx, path, src, proj, st, logger)
	if err != nil {
		return reportDiagnostics(out, cmd, path, src, err)
	}
	out.VerboseLog("expanded %s (key %s, cached %v)", path, result.Key, result.Cached)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(result.Output), 0644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output",
				&LoadError{Code: ErrCodeWriteFailed, Message: opts.Output, Err: err})
		}
	}

	if out.IsJSON() {
		return out.Success(result)
	}
	if opts.Output == "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Output)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: warning: %s\n", path, w.Message)
	}
	return nil
}

// openCache opens the expansion cache named by the flag, falling back to
// the project's cache setting, and prunes entries that another engine or IR
// version wrote. No cache configured yields a nil store.
func openCache(ctx context.Context, flag string, proj *compiler.Project, logger *slog.Logger) (*store.Store, error) {
	path := flag
	if path == "" {
		path = proj.Config.Cache
	}
	if path == "" {
		return nil, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open cache database",
			&LoadError{Code: ErrCodeStore, Message: path, Err: err})
	}
	pruned, err := st.Prune(ctx, ir.EngineVersion, ir.IRVersion)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to prune cache database",
			&LoadError{Code: ErrCodeStore, Message: path, Err: err})
	}
	if pruned > 0 {
		logger.Debug("pruned stale cache entries", "path", path, "expansions", pruned)
	}
	return st, nil
}

// expandSource expands src, consulting and filling st when it is not nil.
// A cache hit returns a nil compile result. Source diagnostics are returned
// unwrapped; store failures are command errors.
func expandSource(ctx context.Context, name, src string, proj *compiler.Project, st *store.Store, logger *slog.Logger) (*ExpandResult, *compiler.Result, error) {
	key := ir.ExpansionKey(src, proj.Catalog.Digest())

	if st != nil {
		cached, found, err := st.LookupExpansion(ctx, key)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to read cache", err)
		}
		if found && cached.EngineVersion == ir.EngineVersion && cached.IRVersion == ir.IRVersion {
			var warnings []compiler.RecursionWarning
			if err := json.Unmarshal(cached.Warnings, &warnings); err != nil {
				return nil, nil, WrapExitError(ExitCommandError, "failed to decode cached warnings", err)
			}
			logger.Debug("expansion cache hit", "file", name, "key", key, "hits", cached.Hits)
			return &ExpandResult{
				File:       name,
				Key:        key,
				Cached:     true,
				Output:     cached.Output,
				Expansions: cached.Report,
				Warnings:   warnings,
			}, nil, nil
		}
	}

	compiled, err := compileSource(name, src, proj, compiler.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	stored, err := storedExpansion(name, src, proj.Catalog, compiled)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to encode expansion report", err)
	}

	if st != nil {
		if _, _, err := st.SaveExpansion(ctx, stored); err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to write cache", err)
		}
		logger.Debug("expansion cached", "file", name, "key", key)
	}

	return &ExpandResult{
		File:       name,
		Key:        key,
		Output:     stored.Output,
		Expansions: stored.Report,
		Warnings:   compiled.Warnings,
	}, compiled, nil
}

// storedExpansion builds the cache entry for a compiled file.
func storedExpansion(name, src string, cat *compiler.Catalog, compiled *compiler.Result) (store.Expansion, error) {
	report, err := json.Marshal(compiled.Expansions)
	if err != nil {
		return store.Expansion{}, err
	}
	warnings, err := json.Marshal(compiled.Warnings)
	if err != nil {
		return store.Expansion{}, err
	}
	return store.Expansion{
		Key:           ir.ExpansionKey(src, cat.Digest()),
		File:          name,
		Source:        src,
		CatalogDigest: cat.Digest(),
		Output:        ir.FormatFile(compiled.Program.File),
		Report:        report,
		Warnings:      warnings,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}, nil
}

// reportDiagnostics prints the diagnostics carried by err and returns the
// matching exit error. Errors that are not diagnostics pass through.
func reportDiagnostics(out *OutputFormatter, cmd *cobra.Command, name, src string, err error) error {
	diags, ok := diagnosticsOf(name, err)
	if !ok {
		return err
	}
	msg := fmt.Sprintf("%d error(s) in %s", len(diags), name)
	if out.IsJSON() {
		if err := out.Failure(CodeDiagnostics, msg, map[string]any{"diagnostics": diags}); err != nil {
			return err
		}
	} else {
		renderDiagnostics(cmd.ErrOrStderr(), src, diags)
	}
	return NewExitError(ExitFailure, msg)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/EMcConnell20/tri-ton/internal/compiler"
)

// GeneratedHeader starts every file gen writes.
const GeneratedHeader = "// Code generated by tri gen. DO NOT EDIT.\n\n"

// ExpandedSuffix replaces .tri in the names of generated files.
const ExpandedSuffix = ".expanded.tri"

// Generated file states.
const (
	GenWritten   = "written"
	GenUnchanged = "unchanged"
	GenStale     = "stale"
	GenInvalid   = "invalid"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	Check bool   // report stale outputs instead of writing
	Diff  bool   // print a unified diff for each stale output
	Jobs  int    // files expanded concurrently
	Cache string // expansion cache database; overrides the project setting
}

// GenFile is the outcome for one source file.
type GenFile struct {
	Source      string       `json:"source"`
	Output      string       `json:"output"`
	Status      string       `json:"status"`
	Cached      bool         `json:"cached"`
	Diff        string       `json:"diff,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	src string
}

// GenResult is the JSON payload of the gen command.
type GenResult struct {
	Files   []GenFile `json:"files"`
	Written int       `json:"written"`
	Stale   int       `json:"stale"`
	Invalid int       `json:"invalid"`
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen [dir]",
		Short: "Write expanded files next to their sources",
		Long: `Expand every source file under a directory and write each result to a
sibling file ending in .expanded.tri.

Files are selected with the include and exclude globs of tri.cue (by default
**/*.tri, excluding **/*.expanded.tri). Outputs that already match are left
untouched. With --check nothing is written and stale outputs fail the
command, which suits CI.

Exit codes:
  0 - All outputs written or up to date
  1 - A file has diagnostics, or --check found stale outputs
  2 - Command error (unreadable directory, bad project, write failure)

Examples:
  tri gen
  tri gen ./examples --jobs 8
  tri gen --check --diff
  tri gen --cache .tri-cache.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runGen(opts, dir, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "fail on stale outputs instead of writing them")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "print a unified diff for stale outputs")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 4, "files expanded concurrently")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "expansion cache database (default from tri.cue)")

	return cmd
}

func runGen(opts *GenOptions, dir string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	if opts.Jobs < 1 {
		return NewExitError(ExitCommandError, "--jobs must be at least 1")
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("not a directory: %s", dir))
	}

	proj, err := opts.loadProject()
	if err != nil {
		return err
	}
	sources, err := findSources(dir, proj.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find sources", err)
	}

	st, err := openCache(ctx, opts.Cache, proj, logger)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	files := make([]GenFile, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for i, rel := range sources {
		i, rel := i, rel
		g.Go(func() error {
			path := filepath.Join(dir, rel)
			data, err := os.ReadFile(path)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read %s", path), err)
			}
			file := GenFile{Source: path, Output: expandedPath(path), src: string(data)}

			expanded, _, err := expandSource(gctx, path, file.src, proj, st, logger)
			if err != nil {
				diags, ok := diagnosticsOf(path, err)
				if !ok {
					return err
				}
				file.Status = GenInvalid
				file.Diagnostics = diags
				files[i] = file
				return nil
			}
			file.Cached = expanded.Cached

			want := GeneratedHeader + expanded.Output
			have, err := os.ReadFile(file.Output)
			switch {
			case err == nil && string(have) == want:
				file.Status = GenUnchanged
			case err != nil && !errors.Is(err, fs.ErrNotExist):
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read %s", file.Output), err)
			case opts.Check:
				file.Status = GenStale
				if opts.Diff {
					file.Diff = unifiedDiff(file.Output, string(have), want)
				}
			default:
				if err := os.WriteFile(file.Output, []byte(want), 0644); err != nil {
					return WrapExitError(ExitCommandError, "failed to write output",
						&LoadError{Code: ErrCodeWriteFailed, Message: file.Output, Err: err})
				}
				file.Status = GenWritten
			}
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	result := GenResult{Files: files}
	for _, f := range files {
		switch f.Status {
		case GenWritten:
			result.Written++
		case GenStale:
			result.Stale++
		case GenInvalid:
			result.Invalid++
		}
	}
	logger.Debug("gen finished", "files", len(files), "written", result.Written, "stale", result.Stale)

	var failure string
	switch {
	case result.Invalid > 0:
		failure = fmt.Sprintf("%d file(s) have errors", result.Invalid)
	case result.Stale > 0:
		failure = fmt.Sprintf("%d generated file(s) are stale", result.Stale)
	}

	if out.IsJSON() {
		if failure == "" {
			return out.Success(result)
		}
		code := CodeStale
		if result.Invalid > 0 {
			code = CodeDiagnostics
		}
		if err := out.Failure(code, failure, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, failure)
	}

	outputGenText(cmd, result)
	if failure != "" {
		return NewExitError(ExitFailure, failure)
	}
	return nil
}

// findSources returns the files under dir matching an include glob and no
// exclude glob, relative to dir and sorted.
func findSources(dir string, cfg compiler.Config) ([]string, error) {
	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var sources []string
	for _, pattern := range cfg.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("include %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			excluded, err := matchesAny(cfg.Exclude, m)
			if err != nil {
				return nil, err
			}
			if !excluded {
				sources = append(sources, m)
			}
		}
	}
	sort.Strings(sources)
	return sources, nil
}

func matchesAny(patterns []string, name string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("exclude %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// expandedPath names the generated file for a source: a.tri becomes
// a.expanded.tri.
func expandedPath(path string) string {
	return strings.TrimSuffix(path, ".tri") + ExpandedSuffix
}

func unifiedDiff(name, have, want string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(have),
		B:        difflib.SplitLines(want),
		FromFile: name,
		ToFile:   name + " (regenerated)",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}

// outputGenText outputs the gen result as text, in source order.
func outputGenText(cmd *cobra.Command, result GenResult) {
	w := cmd.OutOrStdout()
	for _, f := range result.Files {
		switch f.Status {
		case GenInvalid:
			renderDiagnostics(cmd.ErrOrStderr(), f.src, f.Diagnostics)
			fmt.Fprintf(w, "✗ %s\n", f.Source)
		case GenStale:
			fmt.Fprintf(w, "✗ %s is stale\n", f.Output)
			if f.Diff != "" {
				fmt.Fprint(w, f.Diff)
			}
		case GenWritten:
			fmt.Fprintf(w, "✓ %s\n", f.Output)
		}
	}
	fmt.Fprintf(w, "Gen Summary: %d file(s), %d written, %d stale, %d with errors\n",
		len(result.Files), result.Written, result.Stale, result.Invalid)
}

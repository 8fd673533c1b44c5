package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EMcConnell20/tri-ton/internal/compiler"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
}

// FileCheck is the check outcome of one file.
type FileCheck struct {
	File        string                      `json:"file"`
	Valid       bool                        `json:"valid"`
	Expansions  int                         `json:"expansions"`
	Diagnostics []Diagnostic                `json:"diagnostics,omitempty"`
	Warnings    []compiler.RecursionWarning `json:"warnings,omitempty"`
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	Files  []FileCheck `json:"files"`
	Errors int         `json:"errors"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report diagnostics without producing output",
		Long: `Parse, expand and resolve each file and report every diagnostic.

Diagnostics are printed with the offending source line. Recursive functions
are reported as warnings and do not fail the check.

Exit codes:
  0 - No file has diagnostics
  1 - At least one file has diagnostics
  2 - Command error (unreadable file, bad project)

Examples:
  tri check prog.tri
  tri check src/*.tri
  tri check --format json prog.tri`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	return cmd
}

func runCheck(opts *CheckOptions, paths []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	proj, err := opts.loadProject()
	if err != nil {
		return err
	}

	result := CheckResult{Files: make([]FileCheck, 0, len(paths))}
	for _, path := range paths {
		src, err := readSource(cmd, path)
		if err != nil {
			return err
		}

		check := FileCheck{File: path}
		compiled, err := compileSource(path, src, proj, compiler.WithLogger(logger))
		if err != nil {
			diags, ok := diagnosticsOf(path, err)
			if !ok {
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to check %s", path), err)
			}
			check.Diagnostics = diags
			result.Errors += len(diags)
			if !out.IsJSON() {
				renderDiagnostics(cmd.ErrOrStderr(), src, diags)
			}
		} else {
			check.Valid = true
			check.Expansions = len(compiled.Expansions)
			check.Warnings = compiled.Warnings
		}
		result.Files = append(result.Files, check)

		if !out.IsJSON() {
			printFileCheck(cmd, check)
		}
	}

	if result.Errors > 0 {
		msg := fmt.Sprintf("%d error(s) in %d file(s)", result.Errors, countInvalid(result.Files))
		if err := out.Failure(CodeDiagnostics, msg, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	if out.IsJSON() {
		return out.Success(result)
	}
	return nil
}

func printFileCheck(cmd *cobra.Command, check FileCheck) {
	w := cmd.OutOrStdout()
	if !check.Valid {
		fmt.Fprintf(w, "✗ %s: %d error(s)\n", check.File, len(check.Diagnostics))
		return
	}
	fmt.Fprintf(w, "✓ %s: %d expansion(s)\n", check.File, check.Expansions)
	for _, warn := range check.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn.Message)
	}
}

func countInvalid(files []FileCheck) int {
	n := 0
	for _, f := range files {
		if !f.Valid {
			n++
		}
	}
	return n
}

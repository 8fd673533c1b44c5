package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/EMcConnell20/tri-ton/internal/compiler"
	"github.com/EMcConnell20/tri-ton/internal/engine"
	"github.com/EMcConnell20/tri-ton/internal/ir"
	"github.com/EMcConnell20/tri-ton/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Entry    string
	Args     []string // value literals
	MaxSteps int64    // 0 means the project setting, then the engine default
	Database string   // record the expansion and the run here
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	File   string   `json:"file"`
	Entry  string   `json:"entry"`
	Args   []string `json:"args,omitempty"`
	Value  string   `json:"value,omitempty"`
	Error  string   `json:"error,omitempty"`
	Detail string   `json:"detail,omitempty"`
	Steps  int64    `json:"steps"`
	Output string   `json:"output,omitempty"`
	RunID  string   `json:"run_id,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Expand a file and call one of its functions",
		Long: `Expand a source file and call a function in the result.

Arguments are value literals: 3, "text", true, (1, 2), Some(None),
Shape::Pair(1, 2). Printed output goes to stdout as the program runs and the
returned value follows it. Each user function call and each loop iteration
is one step; the run stops with QUOTA_EXCEEDED past --max-steps.

With --db the expansion and the run's outcome are recorded so that
"tri replay" can verify them later.

Exit codes:
  0 - The function returned a value
  1 - The file has diagnostics or the run ended with a runtime error
  2 - Command error (unreadable file, bad argument literal, database error)

Examples:
  tri run prog.tri
  tri run --entry parse --arg '"12"' prog.tri
  tri run --arg 'Some(3)' --max-steps 1000 prog.tri
  tri run --db runs.db --format json prog.tri`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Entry, "entry", "main", "function to call")
	cmd.Flags().StringArrayVar(&opts.Args, "arg", nil, "argument value literal (repeatable)")
	cmd.Flags().Int64Var(&opts.MaxSteps, "max-steps", 0, "step limit (default from tri.cue, then 1000000)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the expansion and run in this SQLite database")

	return cmd
}

func runProgram(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	if opts.MaxSteps < 0 {
		return NewExitError(ExitCommandError, "--max-steps must not be negative")
	}

	proj, err := opts.loadProject()
	if err != nil {
		return err
	}
	src, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	compiled, err := compileSource(path, src, proj, compiler.WithLogger(logger))
	if err != nil {
		return reportDiagnostics(out, cmd, path, src, err)
	}

	args := make([]ir.Value, len(opts.Args))
	for i, lit := range opts.Args {
		v, err := compiler.ParseValue(lit, compiled.Catalog)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("bad argument %d %q", i, lit), err)
		}
		args[i] = v
	}

	maxSteps := opts.MaxSteps
	if maxSteps == 0 {
		maxSteps = proj.Config.MaxSteps
	}
	if maxSteps == 0 {
		maxSteps = engine.DefaultMaxSteps
	}

	// Setup signal handling so a runaway program can be interrupted
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	// JSON captures output into the payload; text streams it as it is printed
	var captured bytes.Buffer
	var progOut io.Writer = &captured
	if !out.IsJSON() {
		progOut = io.MultiWriter(cmd.OutOrStdout(), &captured)
	}

	eng := engine.New(compiled.Program,
		engine.WithOutput(progOut),
		engine.WithMaxSteps(maxSteps),
		engine.WithLogger(logger),
	)
	outcome, runErr := eng.Execute(ctx, opts.Entry, args...)

	result := RunResult{
		File:   path,
		Entry:  opts.Entry,
		Args:   opts.Args,
		Output: captured.String(),
	}
	if outcome != nil {
		result.Steps = outcome.Steps
	}
	if runErr != nil {
		code := engine.CodeOf(runErr)
		if code == "" {
			return WrapExitError(ExitCommandError, "run failed", runErr)
		}
		result.Error = string(code)
		result.Detail = runErr.Error()
	} else {
		result.Value = outcome.Value.String()
	}

	if opts.Database != "" {
		id, err := recordRun(ctx, opts.Database, path, src, proj, compiled, result, maxSteps)
		if err != nil {
			return err
		}
		result.RunID = id
		out.VerboseLog("recorded run %s in %s", id, opts.Database)
	}

	if runErr != nil {
		msg := fmt.Sprintf("%s failed: %s", opts.Entry, result.Error)
		if out.IsJSON() {
			if err := out.Failure(CodeRuntime, msg, result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "runtime error: %s\n", result.Detail)
		}
		return NewExitError(ExitFailure, msg)
	}

	if out.IsJSON() {
		return out.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "=> %s\n", result.Value)
	out.VerboseLog("%d step(s)", result.Steps)
	return nil
}

// recordRun saves the expansion and the run outcome and returns the run ID.
func recordRun(ctx context.Context, dbPath, name, src string, proj *compiler.Project, compiled *compiler.Result, result RunResult, maxSteps int64) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database",
			&LoadError{Code: ErrCodeStore, Message: dbPath, Err: err})
	}
	defer st.Close()

	exp, err := storedExpansion(name, src, proj.Catalog, compiled)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to encode expansion report", err)
	}
	if _, _, err := st.SaveExpansion(ctx, exp); err != nil {
		return "", WrapExitError(ExitCommandError, "failed to record expansion", err)
	}

	id, err := st.WriteRun(ctx, store.Run{
		ExpansionKey: exp.Key,
		Entry:        result.Entry,
		Args:         result.Args,
		MaxSteps:     maxSteps,
		Value:        result.Value,
		ErrorCode:    result.Error,
		Steps:        result.Steps,
		Output:       result.Output,
	})
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to record run", err)
	}
	return id, nil
}

package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/EMcConnell20/tri-ton/internal/compiler"
	"github.com/EMcConnell20/tri-ton/internal/engine"
	"github.com/EMcConnell20/tri-ton/internal/ir"
	"github.com/EMcConnell20/tri-ton/internal/store"
	"github.com/EMcConnell20/tri-ton/internal/syntax"
)

// Harness is the test execution engine.
// It runs one scenario against its own in-memory store.
type Harness struct {
	store    *store.Store
	base     *compiler.Catalog
	maxSteps int64
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Compile the project text and the program
// 3. Record the expansion
// 4. Execute steps with expect validation, recording each run
// 5. Replay every recorded run and report differences
// 6. Evaluate assertions and return the result
//
// A returned error means the scenario itself is unusable, such as an
// argument literal that does not parse; failed expectations are reported
// in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	base, err := projectCatalog(scenario.Project)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: project: %w", scenario.Name, err)
	}

	h := &Harness{
		store:    st,
		base:     base,
		maxSteps: scenario.MaxSteps,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	if h.maxSteps == 0 {
		h.maxSteps = engine.DefaultMaxSteps
	}

	ctx := context.Background()
	result := NewResult()

	compiled, err := h.compile(scenario, result)
	if err != nil {
		return nil, err
	}

	if compiled != nil {
		key, err := h.recordExpansion(ctx, scenario, compiled)
		if err != nil {
			return nil, err
		}
		if err := h.executeSteps(ctx, key, scenario.Steps, compiled, result); err != nil {
			return nil, err
		}

		mismatches, err := VerifyReplay(ctx, st, base, h.logger)
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		for _, m := range mismatches {
			result.AddError(m.Error())
		}
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// projectCatalog compiles inline tri.cue text into a catalog.
func projectCatalog(text string) (*compiler.Catalog, error) {
	if strings.TrimSpace(text) == "" {
		return compiler.NewCatalog(), nil
	}
	v := cuecontext.New().CompileString(text, cue.Filename("tri.cue"))
	proj, err := compiler.CompileProject(v)
	if err != nil {
		return nil, err
	}
	return proj.Catalog, nil
}

// compile parses and compiles the scenario program. Diagnostics are
// recorded in result and yield a nil compile result.
func (h *Harness) compile(scenario *Scenario, result *Result) (*compiler.Result, error) {
	file, err := syntax.Parse(scenario.Name+".tri", scenario.Source)
	if err != nil {
		if !syntax.IsSyntaxError(err) {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.CompileErrors = errorCodes(err)
		if !scenario.expectsCompileError() {
			result.AddError(fmt.Sprintf("compile failed: %v", err))
		}
		return nil, nil
	}

	compiled, err := compiler.Compile(file, h.base, compiler.WithLogger(h.logger))
	if err != nil {
		if _, ok := compiler.AsErrorList(err); !ok {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.CompileErrors = errorCodes(err)
		if !scenario.expectsCompileError() {
			result.AddError(fmt.Sprintf("compile failed: %v", err))
		}
		return nil, nil
	}

	for _, exp := range compiled.Expansions {
		result.Expansions = append(result.Expansions, ExpansionSummary{
			Function: exp.Function,
			Operator: exp.Operator,
			Context:  exp.Context,
			Form:     string(exp.Form),
			Names:    exp.Names,
		})
	}
	for _, w := range compiled.Warnings {
		result.Warnings = append(result.Warnings, strings.Join(w.Path, " -> "))
	}
	return compiled, nil
}

// errorCodes lists the diagnostic codes carried by a syntax or expansion
// error.
func errorCodes(err error) []string {
	if list, ok := compiler.AsErrorList(err); ok {
		return list.Codes()
	}
	var se *syntax.Error
	if errors.As(err, &se) {
		return []string{se.Code}
	}
	return nil
}

// recordExpansion stores the compiled program and returns its key.
func (h *Harness) recordExpansion(ctx context.Context, scenario *Scenario, compiled *compiler.Result) (string, error) {
	report, err := json.Marshal(compiled.Expansions)
	if err != nil {
		return "", fmt.Errorf("marshal expansion report: %w", err)
	}
	warnings, err := json.Marshal(compiled.Warnings)
	if err != nil {
		return "", fmt.Errorf("marshal recursion warnings: %w", err)
	}

	exp := store.Expansion{
		Key:           ir.ExpansionKey(scenario.Source, h.base.Digest()),
		File:          scenario.Name + ".tri",
		Source:        scenario.Source,
		CatalogDigest: h.base.Digest(),
		Output:        ir.FormatFile(compiled.Program.File),
		Report:        report,
		Warnings:      warnings,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	if _, _, err := h.store.SaveExpansion(ctx, exp); err != nil {
		return "", fmt.Errorf("failed to save expansion: %w", err)
	}
	return exp.Key, nil
}

// executeSteps runs all steps.
//
// Steps are executed sequentially; each gets its own engine run and output
// buffer, and each outcome is written to the store before the next step.
func (h *Harness) executeSteps(ctx context.Context, key string, steps []Step, compiled *compiler.Result, result *Result) error {
	for i, step := range steps {
		args, err := parseArgs(step.Args, compiled.Catalog)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}

		event, err := execute(ctx, compiled.Program, step.Call, args, h.maxSteps, h.logger)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		event.Args = step.Args
		result.Trace = append(result.Trace, event)

		run := store.Run{
			ExpansionKey: key,
			Entry:        step.Call,
			Args:         step.Args,
			MaxSteps:     h.maxSteps,
			Value:        event.Value,
			ErrorCode:    event.Error,
			Steps:        event.Steps,
			Output:       event.Output,
		}
		if _, err := h.store.WriteRun(ctx, run); err != nil {
			return fmt.Errorf("steps[%d]: failed to write run: %w", i, err)
		}

		if err := checkExpect(i, step, event, compiled.Catalog, result); err != nil {
			return err
		}
	}
	return nil
}

// execute performs one call and captures its outcome as a trace event.
// Runtime errors become part of the event; any other error is returned.
func execute(ctx context.Context, prog *ir.Program, entry string, args []ir.Value, maxSteps int64, logger *slog.Logger) (TraceEvent, error) {
	var out bytes.Buffer
	eng := engine.New(prog,
		engine.WithOutput(&out),
		engine.WithMaxSteps(maxSteps),
		engine.WithLogger(logger),
	)

	event := TraceEvent{Call: entry}
	outcome, err := eng.Execute(ctx, entry, args...)
	event.Output = out.String()
	if outcome != nil {
		event.Steps = outcome.Steps
	}
	if err != nil {
		code := engine.CodeOf(err)
		if code == "" {
			return TraceEvent{}, err
		}
		event.Error = string(code)
		return event, nil
	}
	event.Value = outcome.Value.String()
	return event, nil
}

func parseArgs(literals []string, cat *compiler.Catalog) ([]ir.Value, error) {
	args := make([]ir.Value, len(literals))
	for i, lit := range literals {
		v, err := compiler.ParseValue(lit, cat)
		if err != nil {
			return nil, fmt.Errorf("argument %d %q: %w", i, lit, err)
		}
		args[i] = v
	}
	return args, nil
}

// checkExpect compares one event with the step's expectations.
func checkExpect(i int, step Step, event TraceEvent, cat *compiler.Catalog, result *Result) error {
	if step.Expect == nil {
		if event.Error != "" {
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error %s", i, step.Call, event.Error))
		}
		return nil
	}
	expect := step.Expect

	switch {
	case expect.Error != "":
		if event.Error != expect.Error {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %s",
				i, step.Call, expect.Error, describe(event)))
		}
	case expect.Value != "":
		want, err := compiler.ParseValue(expect.Value, cat)
		if err != nil {
			return fmt.Errorf("steps[%d]: expected value %q: %w", i, expect.Value, err)
		}
		if event.Error != "" {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got error %s",
				i, step.Call, want, event.Error))
			break
		}
		got, err := compiler.ParseValue(event.Value, cat)
		if err != nil {
			return fmt.Errorf("steps[%d]: returned value %q: %w", i, event.Value, err)
		}
		if !ir.Equal(want, got) {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got %s",
				i, step.Call, want, got))
		}
	default:
		if event.Error != "" {
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error %s", i, step.Call, event.Error))
		}
	}

	if expect.Output != nil && *expect.Output != event.Output {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected output %q, got %q",
			i, step.Call, *expect.Output, event.Output))
	}
	return nil
}

func describe(event TraceEvent) string {
	if event.Error != "" {
		return "error " + event.Error
	}
	return "value " + event.Value
}

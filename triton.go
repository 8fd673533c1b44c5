// Package triton expands tri! pattern invocations into plain tri-script and
// runs the result.
//
// An invocation pairs a scrutinee with a shape and one of five operators:
//
//	tri!(opt => Some[x] -> "missing");
//
// binds x when opt is Some and otherwise returns Err("missing") from the
// enclosing function. ExpandInvocation shows what a single invocation turns
// into, ExpandSource expands a whole file and Run expands a file and calls
// one of its functions.
package triton

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/EMcConnell20/tri-ton/internal/compiler"
	"github.com/EMcConnell20/tri-ton/internal/engine"
	"github.com/EMcConnell20/tri-ton/internal/ir"
	"github.com/EMcConnell20/tri-ton/internal/syntax"
)

type (
	// Project is a compiled tri.cue: tool configuration plus the enums every
	// file may use.
	Project = compiler.Project
	// Expansion reports what one invocation expanded into.
	Expansion = compiler.Expansion
	// RecursionWarning names a cycle of function calls.
	RecursionWarning = compiler.RecursionWarning
	// RuntimeError is a failure while running expanded code.
	RuntimeError = engine.RuntimeError
)

// ParseProject compiles tri.cue text, e.g. `enums: Shape: {Empty: 0, Pair: 2}`.
func ParseProject(src string) (*Project, error) {
	if strings.TrimSpace(src) == "" {
		return compiler.DefaultProject(), nil
	}
	v := cuecontext.New().CompileString(src, cue.Filename("tri.cue"))
	return compiler.CompileProject(v)
}

// Option configures ExpandSource and Run.
type Option func(*options)

type options struct {
	project  *Project
	maxSteps int64
	output   io.Writer
	logger   *slog.Logger
}

// WithProject supplies the enums and step limit of a project file.
func WithProject(p *Project) Option {
	return func(o *options) { o.project = p }
}

// WithMaxSteps overrides the step limit of a run.
func WithMaxSteps(n int64) Option {
	return func(o *options) { o.maxSteps = n }
}

// WithOutput also sends what the program prints to w.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithLogger sets the logger for expansion and execution.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) *options {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.project == nil {
		o.project = compiler.DefaultProject()
	}
	return o
}

// ExpandInvocation expands the inside of one invocation, as if it stood as a
// statement in a function body:
//
//	exp, err := triton.ExpandInvocation(`opt => Some[x] -> "missing"`)
//	fmt.Println(exp.Code)
func ExpandInvocation(src string, opts ...Option) (*Expansion, error) {
	o := buildOptions(opts)
	d, err := syntax.ParseInvocation("invocation", src)
	if err != nil {
		return nil, err
	}
	return compiler.ExpandInvocation(d, o.project.Catalog)
}

// Expanded is a whole file after expansion.
type Expanded struct {
	// Code is the expanded program text.
	Code       string
	Expansions []*Expansion
	Warnings   []RecursionWarning
}

// ExpandSource expands every invocation in a file. Any diagnostic fails the
// whole file; the error then carries every diagnostic found.
func ExpandSource(name, src string, opts ...Option) (*Expanded, error) {
	o := buildOptions(opts)
	res, err := compile(name, src, o)
	if err != nil {
		return nil, err
	}
	return &Expanded{
		Code:       ir.FormatFile(res.Program.File),
		Expansions: res.Expansions,
		Warnings:   res.Warnings,
	}, nil
}

// Result is the outcome of a successful Run.
type Result struct {
	// Value is the returned value in literal syntax, e.g. Ok(4).
	Value string
	Steps int64
	// Output is everything the program printed.
	Output string
}

// Run expands a file and calls entry with arguments given as value
// literals. A runtime failure is returned as a *RuntimeError.
//
//	res, err := triton.Run(ctx, "prog.tri", src, "main", "Some(4)")
func Run(ctx context.Context, name, src, entry string, args []string, opts ...Option) (*Result, error) {
	o := buildOptions(opts)
	res, err := compile(name, src, o)
	if err != nil {
		return nil, err
	}

	vals := make([]ir.Value, len(args))
	for i, lit := range args {
		v, err := compiler.ParseValue(lit, res.Catalog)
		if err != nil {
			return nil, fmt.Errorf("argument %d %q: %w", i, lit, err)
		}
		vals[i] = v
	}

	maxSteps := o.maxSteps
	if maxSteps == 0 {
		maxSteps = o.project.Config.MaxSteps
	}
	if maxSteps == 0 {
		maxSteps = engine.DefaultMaxSteps
	}

	var out bytes.Buffer
	var w io.Writer = &out
	if o.output != nil {
		w = io.MultiWriter(&out, o.output)
	}
	eng := engine.New(res.Program,
		engine.WithOutput(w),
		engine.WithMaxSteps(maxSteps),
		engine.WithLogger(o.logger),
	)
	outcome, err := eng.Execute(ctx, entry, vals...)
	if err != nil {
		return nil, err
	}
	return &Result{Value: outcome.Value.String(), Steps: outcome.Steps, Output: out.String()}, nil
}

func compile(name, src string, o *options) (*compiler.Result, error) {
	file, err := syntax.Parse(name, src)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(file, o.project.Catalog, compiler.WithLogger(o.logger))
}

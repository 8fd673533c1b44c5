package engine

import (
	"context"
	"io"
	"log/slog"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// DefaultMaxSteps is the default maximum number of steps per run.
// This prevents runaway loops from consuming unbounded resources.
const DefaultMaxSteps = 1_000_000

// DefaultMaxDepth is the default limit on nested function calls.
const DefaultMaxDepth = 10_000

// Engine executes compiled programs.
//
// An Engine is immutable after New and safe for concurrent use: every Call
// gets its own quota, call stack and variables. Output from print and
// println goes to the configured writer, which callers running concurrently
// must synchronize themselves.
type Engine struct {
	prog     *ir.Program
	maxSteps int64
	maxDepth int
	out      io.Writer
	logger   *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxSteps sets the maximum steps quota per run.
//
// Default: 1,000,000 steps (DefaultMaxSteps)
// Use WithMaxSteps(10) for testing quota enforcement.
func WithMaxSteps(maxSteps int64) EngineOption {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// WithMaxDepth sets the maximum call nesting.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithOutput sets where print and println write. Default: io.Discard.
func WithOutput(w io.Writer) EngineOption {
	return func(e *Engine) {
		e.out = w
	}
}

// WithLogger sets the logger for call and quota diagnostics.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine for a compiled program.
func New(prog *ir.Program, opts ...EngineOption) *Engine {
	e := &Engine{
		prog:     prog,
		maxSteps: DefaultMaxSteps,
		maxDepth: DefaultMaxDepth,
		out:      io.Discard,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome is the result of one run.
type Outcome struct {
	Value ir.Value
	Steps int64
}

// Call runs the named function with args and returns its value.
func (e *Engine) Call(ctx context.Context, name string, args ...ir.Value) (ir.Value, error) {
	out, err := e.Execute(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return out.Value, nil
}

// Execute runs the named function like Call and also reports how many steps
// the run took. A run that fails at runtime still returns an Outcome carrying
// the steps charged before the failure; its Value is nil.
func (e *Engine) Execute(ctx context.Context, name string, args ...ir.Value) (*Outcome, error) {
	fn := e.prog.Func(name)
	if fn == nil {
		return nil, newRuntimeError(ErrCodeUndefined, ir.Pos{}, "no function named %s", name)
	}

	r := &run{
		engine: e,
		ctx:    ctx,
		quota:  NewQuotaEnforcer(e.maxSteps),
	}
	v, err := r.call(fn, args, fn.At)
	if err != nil {
		if IsQuotaError(err) {
			e.logger.Debug("max steps quota exceeded",
				"function", name,
				"steps", r.quota.Current(),
				"max_steps", r.quota.MaxSteps(),
			)
		}
		return &Outcome{Steps: r.quota.Current()}, err
	}

	e.logger.Debug("run finished",
		"function", name,
		"steps", r.quota.Current(),
		"value", v.String(),
	)
	return &Outcome{Value: v, Steps: r.quota.Current()}, nil
}

// run is the state of one Execute call.
type run struct {
	engine *Engine
	ctx    context.Context
	quota  *QuotaEnforcer
	depth  int
}

// step charges one step and checks for cancellation.
func (r *run) step(pos ir.Pos) error {
	if err := r.ctx.Err(); err != nil {
		return &RuntimeError{Code: ErrCodeCancelled, Message: "run cancelled", Pos: pos, Err: err}
	}
	return r.quota.Check(pos)
}

func (r *run) call(fn *ir.FnDecl, args []ir.Value, pos ir.Pos) (ir.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, newRuntimeError(ErrCodeTypeMismatch, pos,
			"function %s takes %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	if err := r.step(pos); err != nil {
		return nil, err
	}
	if r.depth >= r.engine.maxDepth {
		return nil, newRuntimeError(ErrCodeDepthExceeded, pos,
			"call to %s exceeds max depth %d", fn.Name, r.engine.maxDepth)
	}
	r.depth++
	defer func() { r.depth-- }()

	r.engine.logger.Debug("call", "function", fn.Name, "depth", r.depth)

	env := newScope(nil)
	for i, p := range fn.Params {
		env.declare(p.Name, args[i], p.Mut)
	}

	v, err := r.block(fn.Body, env)
	if ret, ok := err.(*returnSignal); ok {
		return ret.value, nil
	}
	if err != nil {
		return nil, escaped(err)
	}
	return v, nil
}

package compiler

import (
	"log/slog"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// Option configures Compile.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sends compile diagnostics to l instead of slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Context says where an invocation stood.
const (
	ContextStatement  = "statement"
	ContextExpression = "expression"
)

// Expansion reports what one invocation expanded into.
type Expansion struct {
	Pos        ir.Pos   `json:"pos"`
	Function   string   `json:"function,omitempty"`
	Invocation string   `json:"invocation"`
	Operator   string   `json:"operator"`
	Context    string   `json:"context"`
	Form       Form     `json:"form"`
	Names      []string `json:"names,omitempty"`
	Bindings   Bindings `json:"bindings"`
	State      string   `json:"state,omitempty"`
	Code       string   `json:"code"`
}

// Result is a compiled file.
type Result struct {
	Program *ir.Program
	// Expansions lists every invocation in source order of completion:
	// an invocation nested in another is reported before its parent.
	Expansions []*Expansion
	Warnings   []RecursionWarning
	// Catalog holds the variants visible to the program: the ones passed
	// to Compile plus the enums the file declares.
	Catalog *Catalog
}

// Compile expands every invocation in file, then resolves names in the
// expanded code. cat supplies variants declared outside the file, such as
// those from a project file; nil means the builtin variants only.
//
// The input file is not modified. On failure the error is an ErrorList
// holding every diagnostic, ordered by position.
func Compile(file *ir.File, cat *Catalog, opts ...Option) (*Result, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if cat == nil {
		cat = NewCatalog()
	}

	c := &compilation{cat: cat.Clone(), logger: o.logger}
	funcs := c.declare(file)

	out := &ir.File{Name: file.Name}
	var decls []*ir.FnDecl
	for _, item := range file.Items {
		fn, ok := item.(*ir.FnDecl)
		if !ok {
			out.Items = append(out.Items, item)
			continue
		}
		c.fn = fn.Name
		expanded := &ir.FnDecl{At: fn.At, Name: fn.Name, Params: fn.Params, Body: c.block(fn.Body)}
		out.Items = append(out.Items, expanded)
		decls = append(decls, expanded)
	}

	if len(c.errs) > 0 {
		return nil, ErrorList(c.errs).sorted()
	}

	r := newResolver(c.cat, funcs)
	for _, fn := range decls {
		r.resolveFunc(fn)
	}
	if len(r.errs) > 0 {
		return nil, ErrorList(r.errs).sorted()
	}

	prog := &ir.Program{File: out, Funcs: make(map[string]*ir.FnDecl, len(decls))}
	for _, fn := range decls {
		prog.Funcs[fn.Name] = fn
	}

	warnings := AnalyzeRecursion(r.calls)
	for _, w := range warnings {
		o.logger.Debug("recursion detected", "path", w.Path)
	}
	o.logger.Debug("file compiled",
		"file", file.Name,
		"functions", len(decls),
		"expansions", len(c.expansions),
	)

	return &Result{Program: prog, Expansions: c.expansions, Warnings: warnings, Catalog: c.cat}, nil
}

// ExpandInvocation expands a single invocation standing as a statement, the
// way it would expand inside a function body. Names in the surrounding code
// are not checked.
func ExpandInvocation(d *ir.Descriptor, cat *Catalog) (*Expansion, error) {
	if cat == nil {
		cat = NewCatalog()
	}
	c := &compilation{cat: cat, logger: slog.Default()}
	c.invocation(&ir.Tri{At: d.At, Desc: d}, true)
	if len(c.errs) > 0 {
		return nil, ErrorList(c.errs).sorted()
	}
	return c.expansions[len(c.expansions)-1], nil
}

// compilation is the state of one expansion pass.
type compilation struct {
	cat        *Catalog
	logger     *slog.Logger
	fn         string
	errs       []*ExpansionError
	expansions []*Expansion
}

// declare registers the file's enums and checks its function signatures.
func (c *compilation) declare(file *ir.File) map[string]int {
	for _, item := range file.Items {
		if e, ok := item.(*ir.EnumDecl); ok {
			c.errs = append(c.errs, c.cat.AddEnum(e.Name, e.Variants, e.At)...)
		}
	}

	funcs := make(map[string]int)
	for _, item := range file.Items {
		fn, ok := item.(*ir.FnDecl)
		if !ok {
			continue
		}
		_, dup := funcs[fn.Name]
		_, builtin := ir.Builtins[fn.Name]
		switch {
		case dup:
			c.errs = append(c.errs, newError(fn.At, ErrDuplicateDecl, "function %s is already declared", fn.Name))
		case builtin:
			c.errs = append(c.errs, newError(fn.At, ErrDuplicateDecl, "function %s shadows a builtin", fn.Name))
		case c.cat.HasVariant(fn.Name):
			c.errs = append(c.errs, newError(fn.At, ErrDuplicateDecl, "function %s has the name of a variant", fn.Name))
		}
		funcs[fn.Name] = len(fn.Params)

		seen := make(map[string]bool, len(fn.Params))
		for _, p := range fn.Params {
			if seen[p.Name] {
				c.errs = append(c.errs, newError(fn.At, ErrDuplicateName,
					"parameter %s of %s is declared more than once", p.Name, fn.Name))
			}
			seen[p.Name] = true
		}
	}
	return funcs
}

// invocation expands one tri! node. At statement position it returns the
// statements to splice into the enclosing block; otherwise an expression.
func (c *compilation) invocation(t *ir.Tri, stmt bool) ([]ir.Stmt, ir.Expr) {
	d := normalizeDescriptor(t.Desc, c.cat)
	if errs := Validate(d, c.cat, stmt); len(errs) > 0 {
		c.errs = append(c.errs, errs...)
		return nil, unitLit(t.At)
	}

	// nested invocations expand first, always in expression position
	d.Scrutinee = c.expr(d.Scrutinee)
	trailing := make([]ir.Expr, len(d.Trailing))
	for i, x := range d.Trailing {
		trailing[i] = c.expr(x)
	}
	d.Trailing = trailing
	for i := range d.Captures {
		d.Captures[i].Init = c.expr(d.Captures[i].Init)
	}

	m := synthesize(d)
	form := formOf(d, m, stmt)
	state := ""
	if d.Operator == ir.OpWhile && len(m.Names) > 0 {
		state = hygienicName(t.Desc)
	}

	exp := &Expansion{
		Pos:        t.At,
		Function:   c.fn,
		Invocation: ir.FormatDescriptor(t.Desc),
		Operator:   d.Operator.String(),
		Context:    ContextExpression,
		Form:       form,
		Names:      m.Names,
		Bindings:   resolveBindings(d, m, form, stmt),
		State:      state,
	}
	defer func() {
		c.expansions = append(c.expansions, exp)
		c.logger.Debug("invocation expanded",
			"pos", exp.Pos.String(),
			"operator", exp.Operator,
			"context", exp.Context,
			"form", string(exp.Form),
		)
	}()

	if stmt {
		stmts := expandStmts(d, m, form, state)
		exp.Context = ContextStatement
		exp.Code = ir.FormatStmts(stmts)
		return stmts, nil
	}
	e := expandValue(d, m, state)
	exp.Code = ir.FormatExpr(e)
	return nil, e
}

// block returns a copy of b with every invocation expanded.
func (c *compilation) block(b *ir.Block) *ir.Block {
	if b == nil {
		return nil
	}
	out := &ir.Block{At: b.At}
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *ir.Let:
			out.Stmts = append(out.Stmts, &ir.Let{
				At:      s.At,
				Pattern: s.Pattern,
				Value:   c.expr(s.Value),
				Else:    c.block(s.Else),
			})
		case *ir.ExprStmt:
			if t, ok := s.X.(*ir.Tri); ok {
				stmts, _ := c.invocation(t, true)
				out.Stmts = append(out.Stmts, stmts...)
				continue
			}
			out.Stmts = append(out.Stmts, &ir.ExprStmt{At: s.At, X: c.expr(s.X)})
		}
	}
	out.Tail = c.expr(b.Tail)
	return out
}

// expr returns a copy of e with every invocation expanded in expression
// position.
func (c *compilation) expr(e ir.Expr) ir.Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *ir.Tri:
		_, x := c.invocation(e, false)
		return x
	case *ir.TupleExpr:
		return &ir.TupleExpr{At: e.At, Elems: c.exprs(e.Elems)}
	case *ir.Call:
		return &ir.Call{At: e.At, Func: e.Func, Args: c.exprs(e.Args)}
	case *ir.Construct:
		return &ir.Construct{At: e.At, Path: e.Path, Variant: e.Variant, Args: c.exprs(e.Args)}
	case *ir.Index:
		return &ir.Index{At: e.At, X: c.expr(e.X), Index: e.Index}
	case *ir.Unary:
		return &ir.Unary{At: e.At, Op: e.Op, X: c.expr(e.X)}
	case *ir.Binary:
		return &ir.Binary{At: e.At, Op: e.Op, X: c.expr(e.X), Y: c.expr(e.Y)}
	case *ir.Assign:
		return &ir.Assign{At: e.At, Op: e.Op, Name: e.Name, Value: c.expr(e.Value)}
	case *ir.Block:
		return c.block(e)
	case *ir.If:
		return &ir.If{At: e.At, Cond: c.expr(e.Cond), Then: c.block(e.Then), Else: c.expr(e.Else)}
	case *ir.IfLet:
		return &ir.IfLet{At: e.At, Pattern: e.Pattern, Value: c.expr(e.Value), Then: c.block(e.Then), Else: c.expr(e.Else)}
	case *ir.Loop:
		return &ir.Loop{At: e.At, Label: e.Label, Body: c.block(e.Body)}
	case *ir.While:
		return &ir.While{At: e.At, Label: e.Label, Cond: c.expr(e.Cond), Body: c.block(e.Body)}
	case *ir.Break:
		return &ir.Break{At: e.At, Label: e.Label, Value: c.expr(e.Value)}
	case *ir.Return:
		return &ir.Return{At: e.At, Value: c.expr(e.Value)}
	}
	// leaves are never modified after this point
	return e
}

func (c *compilation) exprs(list []ir.Expr) []ir.Expr {
	if list == nil {
		return nil
	}
	out := make([]ir.Expr, len(list))
	for i, x := range list {
		out[i] = c.expr(x)
	}
	return out
}

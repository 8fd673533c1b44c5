package compiler

import (
	"fmt"
	"strings"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// local is one variable visible in a scope.
type local struct {
	mut bool
}

type scope struct {
	parent *scope
	vars   map[string]local
}

func (s *scope) lookup(name string) (local, bool) {
	for ; s != nil; s = s.parent {
		if l, ok := s.vars[name]; ok {
			return l, true
		}
	}
	return local{}, false
}

// loopFrame is one enclosing loop. Only Loop frames accept break values.
type loopFrame struct {
	label     string
	valueLoop bool
}

// resolver checks names, mutability and jumps in expanded code, and rewrites
// variant references into Construct nodes so the interpreter never consults
// the catalog. It mutates the tree it is given.
type resolver struct {
	cat   *Catalog
	funcs map[string]int // user function name → parameter count

	errs  []*ExpansionError
	scope *scope
	loops []loopFrame

	fn    string
	calls map[string][]string // caller → user functions it calls, in source order
}

func newResolver(cat *Catalog, funcs map[string]int) *resolver {
	return &resolver{
		cat:   cat,
		funcs: funcs,
		calls: make(map[string][]string),
	}
}

func (r *resolver) errorf(pos ir.Pos, code, format string, args ...any) {
	r.errs = append(r.errs, newError(pos, code, format, args...))
}

func (r *resolver) push() {
	r.scope = &scope{parent: r.scope, vars: make(map[string]local)}
}

func (r *resolver) pop() {
	r.scope = r.scope.parent
}

func (r *resolver) declare(name string, mut bool) {
	r.scope.vars[name] = local{mut: mut}
}

func (r *resolver) resolveFunc(fn *ir.FnDecl) {
	r.fn = fn.Name
	r.loops = nil
	// every function is a node of the call graph, even a leaf
	r.calls[fn.Name] = []string{}

	r.push()
	for _, p := range fn.Params {
		r.declare(p.Name, p.Mut)
	}
	r.resolveBlock(fn.Body)
	r.pop()
}

func (r *resolver) resolveBlock(b *ir.Block) {
	if b == nil {
		return
	}
	r.push()
	for _, s := range b.Stmts {
		r.resolveStmt(s)
	}
	if b.Tail != nil {
		b.Tail = r.resolveExpr(b.Tail)
	}
	r.pop()
}

func (r *resolver) resolveStmt(s ir.Stmt) {
	switch s := s.(type) {
	case *ir.Let:
		// the value and the else block cannot see the names being bound
		s.Value = r.resolveExpr(s.Value)
		r.resolveBlock(s.Else)
		s.Pattern = normalizePattern(s.Pattern, r.cat)
		for _, b := range r.resolvePattern(s.Pattern) {
			r.declare(b.name, b.mut)
		}
	case *ir.ExprStmt:
		s.X = r.resolveExpr(s.X)
	}
}

func (r *resolver) resolveExpr(e ir.Expr) ir.Expr {
	switch e := e.(type) {
	case nil:
		return nil

	case *ir.Ident:
		return r.resolveIdent(e)

	case *ir.PathExpr:
		path := strings.Join(e.Segments, "::")
		v, ok := r.lookupVariant(e.At, e.Segments)
		if !ok {
			return e
		}
		if v.Arity != 0 {
			r.errorf(e.At, ErrConstructArity, "variant %s takes %d field(s); write %s(...)", path, v.Arity, path)
		}
		return &ir.Construct{At: e.At, Path: path, Variant: v.Name}

	case *ir.TupleExpr:
		for i, x := range e.Elems {
			e.Elems[i] = r.resolveExpr(x)
		}
		return e

	case *ir.Call:
		for i, x := range e.Args {
			e.Args[i] = r.resolveExpr(x)
		}
		return r.resolveCall(e)

	case *ir.Construct:
		for i, x := range e.Args {
			e.Args[i] = r.resolveExpr(x)
		}
		return e

	case *ir.Index:
		e.X = r.resolveExpr(e.X)
		return e

	case *ir.Unary:
		e.X = r.resolveExpr(e.X)
		return e

	case *ir.Binary:
		e.X = r.resolveExpr(e.X)
		e.Y = r.resolveExpr(e.Y)
		return e

	case *ir.Assign:
		e.Value = r.resolveExpr(e.Value)
		l, ok := r.scope.lookup(e.Name)
		switch {
		case !ok:
			r.errorf(e.At, ErrUndefinedName, "cannot assign to undefined name %s", e.Name)
		case !l.mut:
			r.errorf(e.At, ErrImmutableAssign, "cannot assign to immutable local %s; declare it with let mut", e.Name)
		}
		return e

	case *ir.Block:
		r.resolveBlock(e)
		return e

	case *ir.If:
		e.Cond = r.resolveExpr(e.Cond)
		r.resolveBlock(e.Then)
		e.Else = r.resolveExpr(e.Else)
		return e

	case *ir.IfLet:
		e.Value = r.resolveExpr(e.Value)
		e.Pattern = normalizePattern(e.Pattern, r.cat)
		r.push()
		for _, b := range r.resolvePattern(e.Pattern) {
			r.declare(b.name, b.mut)
		}
		r.resolveBlock(e.Then)
		r.pop()
		e.Else = r.resolveExpr(e.Else)
		return e

	case *ir.Loop:
		r.loops = append(r.loops, loopFrame{label: e.Label, valueLoop: true})
		r.resolveBlock(e.Body)
		r.loops = r.loops[:len(r.loops)-1]
		return e

	case *ir.While:
		r.loops = append(r.loops, loopFrame{label: e.Label})
		e.Cond = r.resolveExpr(e.Cond)
		r.resolveBlock(e.Body)
		r.loops = r.loops[:len(r.loops)-1]
		return e

	case *ir.Break:
		if f, ok := r.jumpTarget(e.At, "break", e.Label); ok && e.Value != nil && !f.valueLoop {
			r.errorf(e.At, ErrBadJump, "break with a value is only allowed inside loop")
		}
		e.Value = r.resolveExpr(e.Value)
		return e

	case *ir.Continue:
		r.jumpTarget(e.At, "continue", e.Label)
		return e

	case *ir.Return:
		e.Value = r.resolveExpr(e.Value)
		return e
	}
	return e
}

func (r *resolver) resolveIdent(e *ir.Ident) ir.Expr {
	if _, ok := r.scope.lookup(e.Name); ok {
		return e
	}
	if v, ok := r.cat.Lookup([]string{e.Name}); ok {
		if v.Arity != 0 {
			r.errorf(e.At, ErrConstructArity, "variant %s takes %d field(s); write %s(...)", e.Name, v.Arity, e.Name)
		}
		return &ir.Construct{At: e.At, Path: e.Name, Variant: v.Name}
	}
	if _, ok := r.funcs[e.Name]; ok {
		r.errorf(e.At, ErrUndefinedName, "function %s cannot be used as a value", e.Name)
		return e
	}
	r.errorf(e.At, ErrUndefinedName, "undefined name %s", e.Name)
	return e
}

func (r *resolver) resolveCall(e *ir.Call) ir.Expr {
	if !strings.Contains(e.Func, "::") {
		if n, ok := r.funcs[e.Func]; ok {
			if n != len(e.Args) {
				r.errorf(e.At, ErrUnknownFunction, "function %s takes %d argument(s), got %d", e.Func, n, len(e.Args))
			}
			r.calls[r.fn] = append(r.calls[r.fn], e.Func)
			return e
		}
		if a, ok := ir.Builtins[e.Func]; ok {
			if !a.Accepts(len(e.Args)) {
				r.errorf(e.At, ErrUnknownFunction, "builtin %s does not accept %d argument(s)", e.Func, len(e.Args))
			}
			return e
		}
		if !r.cat.HasVariant(e.Func) {
			r.errorf(e.At, ErrUnknownFunction, "unknown function %s", e.Func)
			return e
		}
	}

	v, ok := r.lookupVariant(e.At, strings.Split(e.Func, "::"))
	if !ok {
		return e
	}
	if v.Arity != len(e.Args) {
		r.errorf(e.At, ErrConstructArity, "variant %s has %d field(s), got %d argument(s)", e.Func, v.Arity, len(e.Args))
	}
	return &ir.Construct{At: e.At, Path: e.Func, Variant: v.Name, Args: e.Args}
}

// lookupVariant reports E102 when path names no variant.
func (r *resolver) lookupVariant(pos ir.Pos, path []string) (Variant, bool) {
	v, ok := r.cat.Lookup(path)
	if ok {
		return v, true
	}
	msg := fmt.Sprintf("unknown variant %s", strings.Join(path, "::"))
	if known, exists := r.cat.Lookup(path[len(path)-1:]); exists && len(path) > 1 {
		msg += fmt.Sprintf(" (%s belongs to enum %s)", known.Name, known.Enum)
	}
	r.errorf(pos, ErrUnknownVariant, "%s", msg)
	return Variant{}, false
}

// jumpTarget finds the loop a break or continue leaves.
func (r *resolver) jumpTarget(pos ir.Pos, kind, label string) (loopFrame, bool) {
	if len(r.loops) == 0 {
		r.errorf(pos, ErrBadJump, "%s outside of a loop", kind)
		return loopFrame{}, false
	}
	if label == "" {
		return r.loops[len(r.loops)-1], true
	}
	for i := len(r.loops) - 1; i >= 0; i-- {
		if r.loops[i].label == label {
			return r.loops[i], true
		}
	}
	r.errorf(pos, ErrBadJump, "%s to undeclared label '%s", kind, label)
	return loopFrame{}, false
}

type binding struct {
	name string
	mut  bool
}

// resolvePattern checks p and returns the fresh names it binds. Set targets
// are checked against the current scope and are not returned.
func (r *resolver) resolvePattern(p ir.Pattern) []binding {
	var out []binding
	seen := make(map[string]bool)
	ir.WalkPattern(p, func(q ir.Pattern) {
		var name string
		switch q := q.(type) {
		case *ir.PBind:
			name = q.Name
			out = append(out, binding{name: q.Name, mut: q.Mut})
		case *ir.PSet:
			name = q.Name
			l, ok := r.scope.lookup(q.Name)
			switch {
			case !ok:
				r.errorf(q.At, ErrUnresolvedSet, "set target %s is not declared in an enclosing scope", q.Name)
			case !l.mut:
				r.errorf(q.At, ErrImmutableSet, "set target %s is not mutable; declare it with let mut", q.Name)
			}
		case *ir.PVariant:
			v, ok := r.lookupVariant(q.At, strings.Split(q.Path, "::"))
			if ok && v.Arity != len(q.Args) {
				r.errorf(q.At, ErrArityMismatch, "pattern %s has %d field(s) but variant has %d", q.Path, len(q.Args), v.Arity)
			}
		}
		if name == "" {
			return
		}
		if seen[name] {
			r.errorf(q.Position(), ErrDuplicateName, "%s is bound more than once in the same pattern", name)
		}
		seen[name] = true
	})
	return out
}

package engine

import (
	"math"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// block evaluates b in a fresh scope nested in env.
func (r *run) block(b *ir.Block, env *scope) (ir.Value, error) {
	inner := newScope(env)
	for _, s := range b.Stmts {
		if err := r.stmt(s, inner); err != nil {
			return nil, err
		}
	}
	if b.Tail == nil {
		return ir.Unit{}, nil
	}
	return r.eval(b.Tail, inner)
}

func (r *run) stmt(s ir.Stmt, env *scope) error {
	switch s := s.(type) {
	case *ir.Let:
		v, err := r.eval(s.Value, env)
		if err != nil {
			return err
		}
		bs, ok := match(s.Pattern, v)
		if ok {
			return env.bind(s.At, bs)
		}
		if s.Else == nil {
			return newRuntimeError(ErrCodeNoMatch, s.At,
				"value %s does not match pattern %s", v, ir.FormatPattern(s.Pattern))
		}
		if _, err := r.block(s.Else, env); err != nil {
			return err
		}
		return newRuntimeError(ErrCodeNoMatch, s.Else.At, "let-else block must not fall through")

	case *ir.ExprStmt:
		_, err := r.eval(s.X, env)
		return err
	}
	return nil
}

func (r *run) eval(e ir.Expr, env *scope) (ir.Value, error) {
	switch e := e.(type) {
	case *ir.Lit:
		return e.Value, nil

	case *ir.Ident:
		sl, ok := env.lookup(e.Name)
		if !ok {
			return nil, newRuntimeError(ErrCodeUndefined, e.At, "undefined variable %s", e.Name)
		}
		return sl.value, nil

	case *ir.TupleExpr:
		vals, err := r.evalList(e.Elems, env)
		if err != nil {
			return nil, err
		}
		return ir.Tuple(vals), nil

	case *ir.Construct:
		vals, err := r.evalList(e.Args, env)
		if err != nil {
			return nil, err
		}
		return &ir.Variant{Name: e.Variant, Fields: vals}, nil

	case *ir.Call:
		args, err := r.evalList(e.Args, env)
		if err != nil {
			return nil, err
		}
		if fn := r.engine.prog.Func(e.Func); fn != nil {
			return r.call(fn, args, e.At)
		}
		if b, ok := builtins[e.Func]; ok {
			return b(r, e.At, args)
		}
		return nil, newRuntimeError(ErrCodeUndefined, e.At, "undefined function %s", e.Func)

	case *ir.Index:
		x, err := r.eval(e.X, env)
		if err != nil {
			return nil, err
		}
		return index(e.At, x, e.Index)

	case *ir.Unary:
		x, err := r.eval(e.X, env)
		if err != nil {
			return nil, err
		}
		return unary(e.At, e.Op, x)

	case *ir.Binary:
		return r.binary(e, env)

	case *ir.Assign:
		v, err := r.eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		if e.Op != "=" {
			sl, ok := env.lookup(e.Name)
			if !ok {
				return nil, newRuntimeError(ErrCodeUndefined, e.At, "undefined variable %s", e.Name)
			}
			if v, err = arith(e.At, e.Op[:len(e.Op)-1], sl.value, v); err != nil {
				return nil, err
			}
		}
		if err := env.assign(e.At, e.Name, v); err != nil {
			return nil, err
		}
		return ir.Unit{}, nil

	case *ir.Block:
		return r.block(e, env)

	case *ir.If:
		cond, err := r.evalBool(e.Cond, env)
		if err != nil {
			return nil, err
		}
		if cond {
			return r.block(e.Then, env)
		}
		return r.orElse(e.Else, env)

	case *ir.IfLet:
		v, err := r.eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		bs, ok := match(e.Pattern, v)
		if !ok {
			return r.orElse(e.Else, env)
		}
		// set patterns write through to the enclosing variables; fresh
		// bindings live in a scope around the then-block
		inner := newScope(env)
		if err := inner.bind(e.At, bs); err != nil {
			return nil, err
		}
		return r.block(e.Then, inner)

	case *ir.Loop:
		return r.loop(e, env)

	case *ir.While:
		return r.while(e, env)

	case *ir.Break:
		sig := &breakSignal{pos: e.At, label: e.Label}
		if e.Value != nil {
			v, err := r.eval(e.Value, env)
			if err != nil {
				return nil, err
			}
			sig.value = v
		}
		return nil, sig

	case *ir.Continue:
		return nil, &continueSignal{pos: e.At, label: e.Label}

	case *ir.Return:
		var v ir.Value = ir.Unit{}
		if e.Value != nil {
			var err error
			if v, err = r.eval(e.Value, env); err != nil {
				return nil, err
			}
		}
		return nil, &returnSignal{value: v}

	case *ir.Tri:
		return nil, newRuntimeError(ErrCodeUndefined, e.At, "program was not expanded")

	case *ir.PathExpr:
		return nil, newRuntimeError(ErrCodeUndefined, e.At, "program was not resolved")
	}
	return nil, newRuntimeError(ErrCodeUndefined, e.Position(), "unsupported expression %T", e)
}

func (r *run) evalList(list []ir.Expr, env *scope) ([]ir.Value, error) {
	vals := make([]ir.Value, len(list))
	for i, x := range list {
		v, err := r.eval(x, env)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (r *run) evalBool(e ir.Expr, env *scope) (bool, error) {
	v, err := r.eval(e, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(ir.Bool)
	if !ok {
		return false, typeMismatch(e.Position(), "bool", v)
	}
	return bool(b), nil
}

func (r *run) orElse(e ir.Expr, env *scope) (ir.Value, error) {
	if e == nil {
		return ir.Unit{}, nil
	}
	return r.eval(e, env)
}

func (r *run) loop(e *ir.Loop, env *scope) (ir.Value, error) {
	for {
		if err := r.step(e.At); err != nil {
			return nil, err
		}
		_, err := r.block(e.Body, env)
		switch s := err.(type) {
		case nil:
		case *breakSignal:
			if !targets(s.label, e.Label) {
				return nil, err
			}
			if s.value == nil {
				return ir.Unit{}, nil
			}
			return s.value, nil
		case *continueSignal:
			if !targets(s.label, e.Label) {
				return nil, err
			}
		default:
			return nil, err
		}
	}
}

func (r *run) while(e *ir.While, env *scope) (ir.Value, error) {
	for {
		if err := r.step(e.At); err != nil {
			return nil, err
		}
		cond, err := r.evalBool(e.Cond, env)
		if err != nil {
			return nil, err
		}
		if !cond {
			return ir.Unit{}, nil
		}
		_, err = r.block(e.Body, env)
		switch s := err.(type) {
		case nil:
		case *breakSignal:
			if !targets(s.label, e.Label) {
				return nil, err
			}
			return ir.Unit{}, nil
		case *continueSignal:
			if !targets(s.label, e.Label) {
				return nil, err
			}
		default:
			return nil, err
		}
	}
}

func (r *run) binary(e *ir.Binary, env *scope) (ir.Value, error) {
	switch e.Op {
	case "&&", "||":
		x, err := r.evalBool(e.X, env)
		if err != nil {
			return nil, err
		}
		if (e.Op == "&&") != x {
			return ir.Bool(x), nil
		}
		y, err := r.evalBool(e.Y, env)
		if err != nil {
			return nil, err
		}
		return ir.Bool(y), nil
	}

	x, err := r.eval(e.X, env)
	if err != nil {
		return nil, err
	}
	y, err := r.eval(e.Y, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "==":
		return ir.Bool(ir.Equal(x, y)), nil
	case "!=":
		return ir.Bool(!ir.Equal(x, y)), nil
	case "<", "<=", ">", ">=":
		c, ok := ir.Compare(x, y)
		if !ok {
			return nil, newRuntimeError(ErrCodeTypeMismatch, e.At,
				"cannot compare %s with %s", ir.TypeName(x), ir.TypeName(y))
		}
		switch e.Op {
		case "<":
			return ir.Bool(c < 0), nil
		case "<=":
			return ir.Bool(c <= 0), nil
		case ">":
			return ir.Bool(c > 0), nil
		}
		return ir.Bool(c >= 0), nil
	}
	return arith(e.At, e.Op, x, y)
}

// arith applies + - * / %. Integer results outside the int64 range are an
// OVERFLOW error; + also concatenates strings.
func arith(pos ir.Pos, op string, x, y ir.Value) (ir.Value, error) {
	if op == "+" {
		if xs, ok := x.(ir.Str); ok {
			ys, ok := y.(ir.Str)
			if !ok {
				return nil, typeMismatch(pos, "string", y)
			}
			return xs + ys, nil
		}
	}

	a, ok := x.(ir.Int)
	if !ok {
		return nil, typeMismatch(pos, "int", x)
	}
	b, ok := y.(ir.Int)
	if !ok {
		return nil, typeMismatch(pos, "int", y)
	}
	switch op {
	case "+":
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return nil, overflow(pos, a, op, b)
		}
		return a + b, nil
	case "-":
		if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
			return nil, overflow(pos, a, op, b)
		}
		return a - b, nil
	case "*":
		if a == 0 || b == 0 {
			return ir.Int(0), nil
		}
		p := a * b
		if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return nil, overflow(pos, a, op, b)
		}
		return p, nil
	case "/", "%":
		if b == 0 {
			return nil, newRuntimeError(ErrCodeDivisionByZero, pos, "%s %s 0", a, op)
		}
		if a == math.MinInt64 && b == -1 {
			return nil, overflow(pos, a, op, b)
		}
		if op == "/" {
			return a / b, nil
		}
		return a % b, nil
	}
	return nil, newRuntimeError(ErrCodeTypeMismatch, pos, "unknown operator %s", op)
}

func overflow(pos ir.Pos, a ir.Int, op string, b ir.Int) error {
	return newRuntimeError(ErrCodeOverflow, pos, "%s %s %s overflows int", a, op, b)
}

func unary(pos ir.Pos, op string, x ir.Value) (ir.Value, error) {
	switch op {
	case "-":
		i, ok := x.(ir.Int)
		if !ok {
			return nil, typeMismatch(pos, "int", x)
		}
		if i == math.MinInt64 {
			return nil, newRuntimeError(ErrCodeOverflow, pos, "-(%s) overflows int", i)
		}
		return -i, nil
	case "!":
		b, ok := x.(ir.Bool)
		if !ok {
			return nil, typeMismatch(pos, "bool", x)
		}
		return !b, nil
	}
	return nil, newRuntimeError(ErrCodeTypeMismatch, pos, "unknown operator %s", op)
}

// index projects field i of a tuple or variant.
func index(pos ir.Pos, x ir.Value, i int) (ir.Value, error) {
	var fields []ir.Value
	switch x := x.(type) {
	case ir.Tuple:
		fields = x
	case *ir.Variant:
		fields = x.Fields
	default:
		return nil, typeMismatch(pos, "tuple or variant", x)
	}
	if i < 0 || i >= len(fields) {
		return nil, newRuntimeError(ErrCodeTypeMismatch, pos, "%s has no field %d", x, i)
	}
	return fields[i], nil
}

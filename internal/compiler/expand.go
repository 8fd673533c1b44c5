package compiler

import "github.com/EMcConnell20/tri-ton/internal/ir"

// Form names how an invocation was expanded.
type Form string

const (
	// FormBinding: bracketed captures at statement position. The captures
	// are bound in the enclosing block.
	FormBinding Form = "binding"
	// FormValue: the captures are the invocation's value.
	FormValue Form = "value"
	// FormPlain: nothing is captured (literal patterns, bare paths, or only
	// discard slots). Fail and Return at statement position still leave the
	// pattern's own bindings in the enclosing block.
	FormPlain Form = "plain"
)

func formOf(d *ir.Descriptor, m matcher, stmt bool) Form {
	switch {
	case len(m.Names) == 0:
		return FormPlain
	case stmt && d.Shape.Delim == ir.DelimBracket:
		return FormBinding
	}
	return FormValue
}

// expandStmts expands an invocation standing as a statement.
func expandStmts(d *ir.Descriptor, m matcher, form Form, state string) []ir.Stmt {
	at := d.At
	switch form {
	case FormBinding:
		switch d.Operator {
		case ir.OpFail, ir.OpReturn:
			return []ir.Stmt{letElse(at, m.Bind, d.Scrutinee, mismatchExit(d))}
		default:
			return []ir.Stmt{&ir.Let{At: at, Pattern: m.Outer, Value: expandValue(d, m, state)}}
		}

	case FormPlain:
		switch d.Operator {
		case ir.OpFail, ir.OpReturn:
			return []ir.Stmt{letElse(at, m.Bind, d.Scrutinee, mismatchExit(d))}
		case ir.OpWhile:
			// do-while: the body runs first, the match decides whether to repeat
			body := &ir.Block{At: at, Stmts: []ir.Stmt{
				exprStmt(trailing(d)),
				letElse(at, m.Bind, d.Scrutinee, &ir.Break{At: at}),
			}}
			return []ir.Stmt{exprStmt(&ir.Loop{At: at, Body: body})}
		}
	}
	return []ir.Stmt{exprStmt(expandValue(d, m, state))}
}

// expandValue expands an invocation into an expression whose value is the
// capture value on success.
func expandValue(d *ir.Descriptor, m matcher, state string) ir.Expr {
	at := d.At
	test := m.Test
	switch d.Operator {
	case ir.OpFall:
		return &ir.IfLet{
			At:      at,
			Pattern: test,
			Value:   d.Scrutinee,
			Then:    &ir.Block{At: at, Tail: m.Value},
			Else:    &ir.Block{At: at, Tail: trailing(d)},
		}

	case ir.OpFail, ir.OpReturn:
		return &ir.IfLet{
			At:      at,
			Pattern: test,
			Value:   d.Scrutinee,
			Then:    &ir.Block{At: at, Tail: m.Value},
			Else:    &ir.Block{At: at, Tail: mismatchExit(d)},
		}

	case ir.OpUntil:
		brk := &ir.Break{At: at}
		if len(m.Names) > 0 {
			brk.Value = m.Value
		}
		return &ir.Loop{At: at, Body: &ir.Block{At: at, Stmts: []ir.Stmt{
			exprStmt(&ir.IfLet{
				At:      at,
				Pattern: test,
				Value:   d.Scrutinee,
				Then:    &ir.Block{At: at, Stmts: []ir.Stmt{exprStmt(brk)}},
				Else:    &ir.Block{At: at, Stmts: []ir.Stmt{exprStmt(trailing(d))}},
			}),
		}}}

	case ir.OpWhile:
		if len(m.Names) == 0 {
			return &ir.Loop{At: at, Body: &ir.Block{At: at, Stmts: []ir.Stmt{
				exprStmt(trailing(d)),
				letElse(at, test, d.Scrutinee, &ir.Break{At: at}),
			}}}
		}
		return whileLoop(d, m, state)
	}
	return unitLit(at)
}

// whileLoop builds the stateful do-while skeleton:
//
//	{
//	    let mut st = INITS;
//	    loop {
//	        let STATE = st;
//	        T;
//	        let TEST = S else { break VALUE; };
//	        st = VALUE;
//	    }
//	}
//
// The body sees the captures as locals; the scrutinee is evaluated after the
// body and sees its updates; the first mismatch exits with the current values.
func whileLoop(d *ir.Descriptor, m matcher, state string) ir.Expr {
	at := d.At
	var inits []ir.Expr
	for _, c := range d.Captures {
		switch {
		case !c.Binds():
			continue
		case c.Init != nil:
			inits = append(inits, c.Init)
		default:
			// set slots start from the variable's current value
			inits = append(inits, &ir.Ident{At: c.At, Name: c.Name})
		}
	}

	loop := &ir.Loop{At: at, Body: &ir.Block{At: at, Stmts: []ir.Stmt{
		&ir.Let{At: at, Pattern: m.State, Value: &ir.Ident{At: at, Name: state}},
		exprStmt(trailing(d)),
		letElse(at, m.Test, d.Scrutinee, &ir.Break{At: at, Value: m.Value}),
		exprStmt(&ir.Assign{At: at, Op: "=", Name: state, Value: m.Value}),
	}}}

	return &ir.Block{
		At: at,
		Stmts: []ir.Stmt{
			&ir.Let{At: at, Pattern: &ir.PBind{At: at, Name: state, Mut: true}, Value: packExprs(at, inits)},
		},
		Tail: loop,
	}
}

// trailing is the operator's trailing value: the single expression, or the
// tuple of several Fall fallbacks.
func trailing(d *ir.Descriptor) ir.Expr {
	return packExprs(d.At, d.Trailing)
}

// mismatchExit is what Fail and Return do when the match fails. Return emits
// a jump verbatim so it can leave a labeled loop; any other value is returned.
func mismatchExit(d *ir.Descriptor) ir.Expr {
	t := trailing(d)
	if d.Operator == ir.OpFail {
		return &ir.Return{At: d.At, Value: &ir.Construct{
			At:      t.Position(),
			Path:    "Err",
			Variant: "Err",
			Args:    []ir.Expr{t},
		}}
	}
	if ir.IsJump(t) {
		return t
	}
	return &ir.Return{At: d.At, Value: t}
}

func letElse(at ir.Pos, p ir.Pattern, value ir.Expr, exit ir.Expr) ir.Stmt {
	return &ir.Let{
		At:      at,
		Pattern: p,
		Value:   value,
		Else:    &ir.Block{At: at, Stmts: []ir.Stmt{exprStmt(exit)}},
	}
}

func exprStmt(e ir.Expr) ir.Stmt {
	return &ir.ExprStmt{At: e.Position(), X: e}
}

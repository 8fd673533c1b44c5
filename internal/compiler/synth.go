package compiler

import "github.com/EMcConnell20/tri-ton/internal/ir"

// matcher is the match-and-bind fragment synthesized from one descriptor.
// Every operator skeleton is built from the same matcher; only the control
// flow around it differs.
type matcher struct {
	// Bind is the pattern with capture modes applied in place: mut bindings
	// stay mutable and set slots assign. Used by let-else skeletons, whose
	// pattern bindings land directly in the enclosing block.
	Bind ir.Pattern
	// Test binds every capture as a plain name. Used where the captures are
	// handed back as a value and rebound by an outer pattern.
	Test ir.Pattern
	// Value is the capture value: one name, a tuple of names, or ().
	Value ir.Expr
	// Outer rebinds Value in the enclosing block with the slots' modes.
	Outer ir.Pattern
	// State rebinds a While loop's state as mutable locals.
	State ir.Pattern
	// Names lists the capture names in slot order.
	Names []string
}

// synthesize builds the matcher for d. It never evaluates the scrutinee; the
// result is pure syntax.
func synthesize(d *ir.Descriptor) matcher {
	at := d.Shape.At
	if d.Shape.Kind == ir.ShapeLiteral {
		var p ir.Pattern
		if len(d.Shape.Patterns) == 1 {
			p = d.Shape.Patterns[0]
		} else {
			p = &ir.PTuple{At: at, Elems: d.Shape.Patterns}
		}
		return matcher{Bind: p, Test: p, Value: unitLit(at)}
	}

	var (
		bindArgs, testArgs []ir.Pattern
		outer, state       []ir.Pattern
		values             []ir.Expr
		names              []string
	)
	for _, c := range d.Captures {
		switch c.Mode {
		case ir.BindDiscard:
			bindArgs = append(bindArgs, c.Pattern)
			testArgs = append(testArgs, c.Pattern)
			continue
		case ir.BindFresh:
			bindArgs = append(bindArgs, &ir.PBind{At: c.At, Name: c.Name, Mut: c.Mut, Sub: c.Pattern})
			outer = append(outer, &ir.PBind{At: c.At, Name: c.Name, Mut: c.Mut})
			state = append(state, &ir.PBind{At: c.At, Name: c.Name, Mut: c.Mut})
		case ir.BindSet:
			bindArgs = append(bindArgs, &ir.PSet{At: c.At, Name: c.Name, Sub: c.Pattern})
			outer = append(outer, &ir.PSet{At: c.At, Name: c.Name})
			state = append(state, &ir.PBind{At: c.At, Name: c.Name, Mut: true})
		}
		testArgs = append(testArgs, &ir.PBind{At: c.At, Name: c.Name, Sub: c.Pattern})
		values = append(values, &ir.Ident{At: c.At, Name: c.Name})
		names = append(names, c.Name)
	}

	path := d.Shape.PathString()
	return matcher{
		Bind:  &ir.PVariant{At: at, Path: path, Args: bindArgs},
		Test:  &ir.PVariant{At: at, Path: path, Args: testArgs},
		Value: packExprs(at, values),
		Outer: packPatterns(at, outer),
		State: packPatterns(at, state),
		Names: names,
	}
}

func unitLit(at ir.Pos) ir.Expr {
	return &ir.Lit{At: at, Value: ir.Unit{}}
}

// packExprs mirrors ir.NewTuple for syntax: () for none, the expression for
// one, a tuple otherwise.
func packExprs(at ir.Pos, list []ir.Expr) ir.Expr {
	switch len(list) {
	case 0:
		return unitLit(at)
	case 1:
		return list[0]
	}
	return &ir.TupleExpr{At: at, Elems: list}
}

func packPatterns(at ir.Pos, list []ir.Pattern) ir.Pattern {
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	}
	return &ir.PTuple{At: at, Elems: list}
}

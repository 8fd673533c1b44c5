package compiler

import (
	"fmt"
	"strings"

	"github.com/EMcConnell20/tri-ton/internal/ir"
	"github.com/EMcConnell20/tri-ton/internal/syntax"
)

// ParseValue reads a value literal such as 3, "a", (1, true) or
// Some(Shape::Empty). It accepts exactly the text Value.String produces, so
// a printed value parses back to an equal one. Variants are checked against
// cat; nil means the builtin variants only.
func ParseValue(src string, cat *Catalog) (ir.Value, error) {
	if cat == nil {
		cat = NewCatalog()
	}
	e, err := syntax.ParseExpr("value", src)
	if err != nil {
		return nil, err
	}
	return constValue(e, cat)
}

func constValue(e ir.Expr, cat *Catalog) (ir.Value, error) {
	switch e := e.(type) {
	case *ir.Lit:
		return e.Value, nil

	case *ir.Unary:
		if lit, ok := e.X.(*ir.Lit); ok && e.Op == "-" {
			if n, ok := lit.Value.(ir.Int); ok {
				return -n, nil
			}
		}

	case *ir.TupleExpr:
		vals, err := constValues(e.Elems, cat)
		if err != nil {
			return nil, err
		}
		return ir.Tuple(vals), nil

	case *ir.Ident:
		return constVariant(e.At, []string{e.Name}, nil, cat)

	case *ir.PathExpr:
		return constVariant(e.At, e.Segments, nil, cat)

	case *ir.Call:
		args, err := constValues(e.Args, cat)
		if err != nil {
			return nil, err
		}
		return constVariant(e.At, strings.Split(e.Func, "::"), args, cat)
	}
	return nil, fmt.Errorf("%s: %s is not a value literal", e.Position(), ir.FormatExpr(e))
}

func constValues(list []ir.Expr, cat *Catalog) ([]ir.Value, error) {
	vals := make([]ir.Value, len(list))
	for i, x := range list {
		v, err := constValue(x, cat)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func constVariant(pos ir.Pos, path []string, fields []ir.Value, cat *Catalog) (ir.Value, error) {
	v, ok := cat.Lookup(path)
	if !ok {
		return nil, newError(pos, ErrUnknownVariant, "unknown variant %s", strings.Join(path, "::"))
	}
	if v.Arity != len(fields) {
		return nil, newError(pos, ErrConstructArity,
			"variant %s has %d field(s), got %d", v.Name, v.Arity, len(fields))
	}
	return &ir.Variant{Name: v.Name, Fields: fields}, nil
}

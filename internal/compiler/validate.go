package compiler

import (
	"fmt"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// Validate checks one invocation against the catalog before anything is
// synthesized. stmt reports whether the invocation stands as a statement,
// where bracketed captures escape into the enclosing block.
// Returns all errors found (does not fail-fast).
func Validate(d *ir.Descriptor, cat *Catalog, stmt bool) []*ExpansionError {
	var errs []*ExpansionError

	// E101: exactly one known operator
	if d.Operator < ir.OpFall || d.Operator > ir.OpWhile {
		errs = append(errs, newError(d.At, ErrUnknownOperator, "invocation has no valid tri operator"))
		return errs
	}

	errs = append(errs, validateShape(d, cat)...)
	errs = append(errs, validateCaptures(d, stmt)...)
	errs = append(errs, validateTrailing(d)...)
	return errs
}

func validateShape(d *ir.Descriptor, cat *Catalog) []*ExpansionError {
	if d.Shape.Kind == ir.ShapeLiteral {
		return nil
	}

	path := d.Shape.PathString()
	v, ok := cat.Lookup(d.Shape.Path)
	if !ok {
		// E102: unknown variant, with a hint when only the enum is wrong
		msg := fmt.Sprintf("unknown variant %s", path)
		if known, exists := cat.Lookup([]string{d.Shape.VariantName()}); exists && len(d.Shape.Path) > 1 {
			msg += fmt.Sprintf(" (%s belongs to enum %s)", known.Name, known.Enum)
		}
		return []*ExpansionError{newError(d.Shape.At, ErrUnknownVariant, "%s", msg)}
	}

	// E103: slot count must equal field count in every operator
	if len(d.Captures) != v.Arity {
		return []*ExpansionError{newError(d.Shape.At, ErrArityMismatch,
			"variant %s has %d field(s) but the shape has %d capture slot(s)",
			path, v.Arity, len(d.Captures))}
	}
	return nil
}

func validateCaptures(d *ir.Descriptor, stmt bool) []*ExpansionError {
	var errs []*ExpansionError
	seen := make(map[string]bool)

	for _, c := range d.Captures {
		switch c.Mode {
		case ir.BindDiscard:
			// E110: discard slots never bind
			if names := ir.PatternBindings(c.Pattern); len(names) > 0 {
				errs = append(errs, newError(c.At, ErrBindingInDiscard,
					"discard slot %s binds %s; use a named capture instead",
					ir.FormatPattern(c.Pattern), names[0]))
			}
			continue

		case ir.BindSet:
			// E114: set captures assign into the enclosing block, so they need
			// the binding form at statement position
			switch {
			case d.Shape.Delim == ir.DelimParen:
				errs = append(errs, newError(c.At, ErrSetInValueForm,
					"set capture %s is not allowed in parenthesized captures; use %s[...]",
					c.Name, d.Shape.PathString()))
			case !stmt:
				errs = append(errs, newError(c.At, ErrSetInValueForm,
					"set capture %s needs the invocation to stand as a statement", c.Name))
			}
		}

		// E109: each name is captured once
		if seen[c.Name] {
			errs = append(errs, newError(c.At, ErrDuplicateName, "%s is captured more than once", c.Name))
		}
		seen[c.Name] = true

		// E110: guard sub-patterns only test
		if names := ir.PatternBindings(c.Pattern); len(names) > 0 {
			errs = append(errs, newError(c.At, ErrBindingInDiscard,
				"sub-pattern of capture %s binds %s", c.Name, names[0]))
		}

		// E105/E106: initial values belong to While and only While
		switch {
		case c.Init != nil && d.Operator != ir.OpWhile:
			errs = append(errs, newError(c.At, ErrInitOutsideLoop,
				"initial value for %s is only allowed with the %s operator", c.Name, ir.OpWhile.Token()))
		case c.Init == nil && d.Operator == ir.OpWhile && c.Mode == ir.BindFresh:
			errs = append(errs, newError(c.At, ErrMissingInit,
				"capture %s needs an initial value: %s = <expr>", c.Name, c.Name))
		}
	}
	return errs
}

func validateTrailing(d *ir.Descriptor) []*ExpansionError {
	n := len(d.Trailing)
	captured := len(d.CaptureNames())

	// E104: Fall takes one fallback, or one per capture when there are several
	if d.Operator == ir.OpFall {
		if n == 1 || (captured > 1 && n == captured) {
			return nil
		}
		want := "1"
		if captured > 1 {
			want = fmt.Sprintf("1 or %d", captured)
		}
		allowed := 1
		if captured > 1 {
			allowed = captured
		}
		return []*ExpansionError{newError(surplusPos(d, allowed), ErrTrailingArity,
			"operator %s takes %s trailing expression(s), got %d", d.Operator.Token(), want, n)}
	}

	if n != 1 {
		return []*ExpansionError{newError(surplusPos(d, 1), ErrTrailingArity,
			"operator %s takes exactly 1 trailing expression, got %d", d.Operator.Token(), n)}
	}
	return nil
}

// surplusPos locates a trailing arity error at the first expression past the
// allowed count, or at the first trailing expression when there are too few.
func surplusPos(d *ir.Descriptor, allowed int) ir.Pos {
	switch {
	case len(d.Trailing) > allowed:
		return d.Trailing[allowed].Position()
	case len(d.Trailing) > 0:
		return d.Trailing[0].Position()
	}
	return d.At
}

// normalizeDescriptor returns a copy of d in which capture slots and patterns
// that name unit variants (None, Empty) become variant patterns. The parser
// cannot tell them from fresh bindings without the catalog.
func normalizeDescriptor(d *ir.Descriptor, cat *Catalog) *ir.Descriptor {
	out := *d
	if d.Shape.Kind == ir.ShapeLiteral {
		out.Shape.Patterns = make([]ir.Pattern, len(d.Shape.Patterns))
		for i, p := range d.Shape.Patterns {
			out.Shape.Patterns[i] = normalizePattern(p, cat)
		}
	}

	out.Captures = make([]ir.Capture, len(d.Captures))
	for i, c := range d.Captures {
		if c.Mode == ir.BindFresh && !c.Mut && c.Pattern == nil && c.Init == nil && cat.IsUnitVariant(c.Name) {
			c = ir.Capture{At: c.At, Mode: ir.BindDiscard, Pattern: &ir.PVariant{At: c.At, Path: c.Name}}
		} else {
			c.Pattern = normalizePattern(c.Pattern, cat)
		}
		out.Captures[i] = c
	}
	return &out
}

// normalizePattern rewrites plain bindings of unit variant names into
// variant patterns, as Rust does for None in pattern position.
func normalizePattern(p ir.Pattern, cat *Catalog) ir.Pattern {
	switch p := p.(type) {
	case *ir.PBind:
		if !p.Mut && p.Sub == nil && cat.IsUnitVariant(p.Name) {
			return &ir.PVariant{At: p.At, Path: p.Name}
		}
		if p.Sub == nil {
			return p
		}
		return &ir.PBind{At: p.At, Name: p.Name, Mut: p.Mut, Sub: normalizePattern(p.Sub, cat)}
	case *ir.PSet:
		if p.Sub == nil {
			return p
		}
		return &ir.PSet{At: p.At, Name: p.Name, Sub: normalizePattern(p.Sub, cat)}
	case *ir.PTuple:
		elems := make([]ir.Pattern, len(p.Elems))
		for i, e := range p.Elems {
			elems[i] = normalizePattern(e, cat)
		}
		return &ir.PTuple{At: p.At, Elems: elems}
	case *ir.PVariant:
		if len(p.Args) == 0 {
			return p
		}
		args := make([]ir.Pattern, len(p.Args))
		for i, a := range p.Args {
			args[i] = normalizePattern(a, cat)
		}
		return &ir.PVariant{At: p.At, Path: p.Path, Args: args}
	}
	return p
}

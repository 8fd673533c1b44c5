package engine

import (
	"strings"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// match tests v against p and returns the bindings the match produces.
//
// All-or-nothing: nothing is bound or assigned unless the whole pattern
// matches, so a failed match leaves every variable untouched. The caller
// applies the returned bindings with scope.bind.
func match(p ir.Pattern, v ir.Value) ([]binding, bool) {
	var out []binding
	if !matchInto(p, v, &out) {
		return nil, false
	}
	return out, true
}

func matchInto(p ir.Pattern, v ir.Value, out *[]binding) bool {
	switch p := p.(type) {
	case *ir.PWild:
		return true

	case *ir.PLit:
		return ir.Equal(p.Value, v)

	case *ir.PRange:
		return inRange(p, v)

	case *ir.PBind:
		if p.Sub != nil && !matchInto(p.Sub, v, out) {
			return false
		}
		*out = append(*out, binding{name: p.Name, value: v, mut: p.Mut})
		return true

	case *ir.PSet:
		if p.Sub != nil && !matchInto(p.Sub, v, out) {
			return false
		}
		*out = append(*out, binding{name: p.Name, value: v, set: true})
		return true

	case *ir.PTuple:
		t, ok := v.(ir.Tuple)
		if !ok || len(t) != len(p.Elems) {
			return false
		}
		for i, e := range p.Elems {
			if !matchInto(e, t[i], out) {
				return false
			}
		}
		return true

	case *ir.PVariant:
		vv, ok := v.(*ir.Variant)
		if !ok || vv.Name != variantName(p.Path) || len(vv.Fields) != len(p.Args) {
			return false
		}
		for i, a := range p.Args {
			if !matchInto(a, vv.Fields[i], out) {
				return false
			}
		}
		return true
	}
	return false
}

// inRange reports whether v lies within the range. Values of another type
// simply do not match.
func inRange(p *ir.PRange, v ir.Value) bool {
	if p.Lo != nil {
		c, ok := ir.Compare(v, p.Lo)
		if !ok || c < 0 {
			return false
		}
	}
	if p.Hi != nil {
		c, ok := ir.Compare(v, p.Hi)
		if !ok || c > 0 || (c == 0 && !p.Inclusive) {
			return false
		}
	}
	return true
}

// variantName is the last segment of a variant path.
func variantName(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[i+2:]
	}
	return path
}

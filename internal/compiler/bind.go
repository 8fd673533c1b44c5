package compiler

import "github.com/EMcConnell20/tri-ton/internal/ir"

// Bindings says where the names an invocation binds are visible.
type Bindings struct {
	// Escaping names are bound in the block enclosing the invocation.
	Escaping []string `json:"escaping,omitempty"`
	// Assigned names already exist and are overwritten by set captures or
	// set patterns.
	Assigned []string `json:"assigned,omitempty"`
	// Local names are visible only inside the generated code: the success
	// branch, the loop body or the capture value.
	Local []string `json:"local,omitempty"`
}

// resolveBindings classifies the names bound by d once it is expanded in
// the given form. stmt reports whether the invocation stands as a statement.
func resolveBindings(d *ir.Descriptor, m matcher, form Form, stmt bool) Bindings {
	var fresh, assigned []string
	ir.WalkPattern(m.Bind, func(p ir.Pattern) {
		switch p := p.(type) {
		case *ir.PBind:
			fresh = append(fresh, p.Name)
		case *ir.PSet:
			assigned = append(assigned, p.Name)
		}
	})

	var b Bindings
	b.Assigned = assigned
	switch {
	case form == FormBinding:
		b.Escaping = fresh
	case stmt && form == FormPlain && (d.Operator == ir.OpFail || d.Operator == ir.OpReturn):
		// let-else leaves a literal pattern's bindings in the block
		b.Escaping = fresh
	default:
		b.Local = fresh
	}
	return b
}

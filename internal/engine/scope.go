package engine

import "github.com/EMcConnell20/tri-ton/internal/ir"

// slot holds one variable.
type slot struct {
	value ir.Value
	mut   bool
}

// scope is one lexical block of variables. Lookups walk outward through
// parents; declarations always go into the innermost scope and shadow.
type scope struct {
	parent *scope
	vars   map[string]*slot
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]*slot)}
}

func (s *scope) lookup(name string) (*slot, bool) {
	for ; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *scope) declare(name string, v ir.Value, mut bool) {
	s.vars[name] = &slot{value: v, mut: mut}
}

// assign stores into an existing mutable variable. The compiler has already
// checked both conditions, so a failure here means the program was built by
// hand.
func (s *scope) assign(pos ir.Pos, name string, v ir.Value) error {
	sl, ok := s.lookup(name)
	if !ok {
		return newRuntimeError(ErrCodeUndefined, pos, "assignment to undefined variable %s", name)
	}
	if !sl.mut {
		return newRuntimeError(ErrCodeTypeMismatch, pos, "assignment to immutable variable %s", name)
	}
	sl.value = v
	return nil
}

// binding is one effect of a successful match.
type binding struct {
	name  string
	value ir.Value
	mut   bool
	set   bool // assign to an existing variable instead of declaring
}

// bind applies the effects of a match in order.
func (s *scope) bind(pos ir.Pos, bs []binding) error {
	for _, b := range bs {
		if b.set {
			if err := s.assign(pos, b.name, b.value); err != nil {
				return err
			}
			continue
		}
		s.declare(b.name, b.value, b.mut)
	}
	return nil
}

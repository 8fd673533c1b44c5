package engine

import "github.com/EMcConnell20/tri-ton/internal/ir"

// Jumps travel up the Go call stack as errors until the loop or function
// they target catches them. They never leave the engine: escaped turns a
// stray one into a RuntimeError.

type breakSignal struct {
	pos   ir.Pos
	label string
	value ir.Value // nil when the break carries no value
}

func (*breakSignal) Error() string { return "break outside of a loop" }

type continueSignal struct {
	pos   ir.Pos
	label string
}

func (*continueSignal) Error() string { return "continue outside of a loop" }

type returnSignal struct {
	value ir.Value
}

func (*returnSignal) Error() string { return "return outside of a function" }

// targets reports whether a jump with label leaves the loop labeled own.
func targets(label, own string) bool {
	return label == "" || label == own
}

// escaped converts a jump that left its function into a runtime error.
func escaped(err error) error {
	switch s := err.(type) {
	case *breakSignal:
		return newRuntimeError(ErrCodeUndefined, s.pos, "break to a loop outside the function")
	case *continueSignal:
		return newRuntimeError(ErrCodeUndefined, s.pos, "continue to a loop outside the function")
	}
	return err
}

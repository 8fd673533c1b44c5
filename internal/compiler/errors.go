package compiler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/EMcConnell20/tri-ton/internal/ir"
	"github.com/EMcConnell20/tri-ton/internal/syntax"
)

// Expansion error codes (E100-E199). E101 and E104 are shared with the
// syntax package, which reports them when an invocation cannot be read.
const (
	// Invocation errors (E101-E106)
	ErrUnknownOperator = syntax.ErrUnknownOperator // "E101" not a tri operator
	ErrUnknownVariant  = "E102"                    // shape names no known variant
	ErrArityMismatch   = "E103"                    // slot count differs from field count
	ErrTrailingArity   = syntax.ErrTrailingArity   // "E104" wrong number of trailing expressions
	ErrInitOutsideLoop = "E105"                    // initial value outside While
	ErrMissingInit     = "E106"                    // While capture without initial value

	// Binding errors (E107-E114)
	ErrUnresolvedSet    = "E107" // set target not in scope
	ErrImmutableSet     = "E108" // set target not declared mut
	ErrDuplicateName    = "E109" // name bound twice in one pattern
	ErrBindingInDiscard = "E110" // discard slot or sub-pattern binds a name
	ErrUndefinedName    = "E111" // identifier not in scope
	ErrImmutableAssign  = "E112" // assignment to immutable local
	ErrBadJump          = "E113" // break/continue outside loop or unknown label
	ErrSetInValueForm   = "E114" // set capture where captures form a value

	// Declaration errors (E115-E117)
	ErrDuplicateDecl   = "E115" // function, enum or variant declared twice
	ErrConstructArity  = "E116" // variant built with wrong field count
	ErrUnknownFunction = "E117" // call to unknown function or wrong arity
)

// ExpansionError is a diagnostic found while validating, expanding or
// resolving a file. Any ExpansionError makes the whole file fail.
type ExpansionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Pos     ir.Pos `json:"pos"`
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Pos, e.Message)
}

// Position returns where the error was detected.
func (e *ExpansionError) Position() ir.Pos { return e.Pos }

func newError(pos ir.Pos, code, format string, args ...any) *ExpansionError {
	return &ExpansionError{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// ErrorList collects every ExpansionError found in a file, ordered by position.
type ErrorList []*ExpansionError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d errors:\n%s", len(l), strings.Join(msgs, "\n"))
}

// Unwrap exposes each error to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	out := make([]error, len(l))
	for i, e := range l {
		out[i] = e
	}
	return out
}

// Codes returns the error codes in order, mostly for tests.
func (l ErrorList) Codes() []string {
	codes := make([]string, len(l))
	for i, e := range l {
		codes[i] = e.Code
	}
	return codes
}

func (l ErrorList) sorted() ErrorList {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
	return l
}

// AsErrorList extracts the diagnostics carried by err, if any.
func AsErrorList(err error) (ErrorList, bool) {
	var list ErrorList
	if errors.As(err, &list) {
		return list, true
	}
	var single *ExpansionError
	if errors.As(err, &single) {
		return ErrorList{single}, true
	}
	return nil, false
}

// CompileError represents a project file error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

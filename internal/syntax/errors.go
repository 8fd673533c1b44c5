package syntax

import (
	"errors"
	"fmt"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// Error codes reported while reading source. The remaining E1xx codes are
// reported by the compiler once the whole file has been read.
const (
	ErrSyntax          = "E001" // malformed source
	ErrUnknownOperator = "E101" // token after the shape is not a tri operator
	ErrTrailingArity   = "E104" // tri operator without a trailing expression
)

// Error is a diagnostic with a source position. Reading stops at the first
// Error; nothing after it is trusted.
type Error struct {
	Pos     ir.Pos `json:"pos"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Pos, e.Message)
}

// Position returns where the error was detected.
func (e *Error) Position() ir.Pos { return e.Pos }

// IsSyntaxError reports whether err is or wraps an *Error.
func IsSyntaxError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

func errorf(pos ir.Pos, code, format string, args ...any) *Error {
	return &Error{Pos: pos, Code: code, Message: fmt.Sprintf(format, args...)}
}

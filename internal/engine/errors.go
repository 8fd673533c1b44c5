package engine

import (
	"errors"
	"fmt"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// RuntimeError represents an error detected while executing a program.
//
// Runtime errors include:
//   - Type mismatch: an operator or builtin got a value of the wrong type
//   - Quota exceeded: the run took more steps than allowed
//   - No match: an irrefutable let did not match
//   - Assertion failed: assert or assert_eq was false
//
// A Fail expansion returning Err(...) is NOT a runtime error; it is an
// ordinary value returned by the program.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Pos is where the failing expression starts.
	Pos ir.Pos

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, such as a context error.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeTypeMismatch indicates an operand or argument of the wrong type.
	ErrCodeTypeMismatch RuntimeErrorCode = "TYPE_MISMATCH"

	// ErrCodeDivisionByZero indicates integer division or remainder by zero.
	ErrCodeDivisionByZero RuntimeErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeOverflow indicates integer arithmetic outside the int64 range.
	ErrCodeOverflow RuntimeErrorCode = "OVERFLOW"

	// ErrCodeAssertionFailed indicates a failed assert or assert_eq.
	ErrCodeAssertionFailed RuntimeErrorCode = "ASSERTION_FAILED"

	// ErrCodeQuotaExceeded indicates the run exceeded max steps.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeDepthExceeded indicates calls nested deeper than allowed.
	ErrCodeDepthExceeded RuntimeErrorCode = "DEPTH_EXCEEDED"

	// ErrCodeUndefined indicates a name or function that does not exist.
	// Compiled programs never produce it except for the entry point.
	ErrCodeUndefined RuntimeErrorCode = "UNDEFINED"

	// ErrCodeNoMatch indicates a let without else did not match, or a
	// let-else block fell through.
	ErrCodeNoMatch RuntimeErrorCode = "NO_MATCH"

	// ErrCodeCancelled indicates the context was cancelled.
	ErrCodeCancelled RuntimeErrorCode = "CANCELLED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Pos)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func newRuntimeError(code RuntimeErrorCode, pos ir.Pos, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func typeMismatch(pos ir.Pos, want string, got ir.Value) *RuntimeError {
	return newRuntimeError(ErrCodeTypeMismatch, pos, "expected %s, got %s %s", want, ir.TypeName(got), got)
}

// CodeOf returns the runtime error code carried by err, or "".
func CodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsQuotaError returns true if the error is a quota exceeded error.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	return CodeOf(err) == ErrCodeQuotaExceeded
}

// NewQuotaError creates a RuntimeError for quota exceeded.
func NewQuotaError(pos ir.Pos, steps, maxSteps int64) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("run exceeded max steps (%d > %d)", steps, maxSteps),
		Pos:     pos,
		Details: map[string]string{
			"steps":     fmt.Sprintf("%d", steps),
			"max_steps": fmt.Sprintf("%d", maxSteps),
		},
	}
}

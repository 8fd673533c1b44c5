// Package engine runs compiled tri-script programs.
//
// The engine is a tree-walking interpreter over the expanded program that
// the compiler produces. It never sees a tri! invocation: by the time a
// program reaches Execute every invocation has become ordinary let, if-let
// and loop code, so the engine is what gives the five operators their
// observable behavior.
//
// EXECUTION MODEL:
//
// Values are immutable. Variables live in lexical scopes; a block opens a
// scope, a match binds into it, and an assignment writes through to the
// scope that declared the variable.
//
// Control flow:
// break, continue and return travel as error values up the Go call stack
// until the loop or function they target catches them. A jump that leaves
// its function becomes a RuntimeError.
//
// Matching is all-or-nothing. A pattern either binds every name it
// declares or binds none, so a Fall mismatch leaves the caller's variables
// exactly as they were.
//
// LIMITS:
//
// Each run carries its own QuotaEnforcer. Every loop iteration and every
// function call is one step; the run stops with QUOTA_EXCEEDED when the
// steps run out and with CANCELLED when its context is done. Call nesting
// is bounded separately by WithMaxDepth.
//
// Integers are 64-bit and never wrap. An operation whose result falls outside
// the int64 range, including MinInt64 / -1 and -MinInt64, stops the run with
// OVERFLOW.
//
// Runs are deterministic: the same program and arguments produce the same
// value, the same output and the same step count.
package engine

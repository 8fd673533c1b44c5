package engine

import "github.com/EMcConnell20/tri-ton/internal/ir"

// QuotaEnforcer counts the steps of one run and enforces a maximum.
//
// A step is one loop iteration or one function call. Every Until and While
// expansion is a loop, so the quota bounds the runaway case where the
// scrutinee never changes shape.
//
// Each run has its own QuotaEnforcer instance.
type QuotaEnforcer struct {
	maxSteps int64 // Maximum allowed steps for this run
	current  int64 // Current step count
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
//
// maxSteps: Maximum number of steps allowed per run.
// Typical default: 1,000,000 (configurable via engine.WithMaxSteps())
func NewQuotaEnforcer(maxSteps int64) *QuotaEnforcer {
	return &QuotaEnforcer{
		maxSteps: maxSteps,
		current:  0,
	}
}

// Check increments the step counter and validates against the limit.
//
// Returns a QUOTA_EXCEEDED RuntimeError once the limit is passed.
func (q *QuotaEnforcer) Check(pos ir.Pos) error {
	q.current++
	if q.current > q.maxSteps {
		return NewQuotaError(pos, q.current, q.maxSteps)
	}
	return nil
}

// Reset resets the step counter to 0.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current step count.
// Used for logging and diagnostics.
func (q *QuotaEnforcer) Current() int64 {
	return q.current
}

// MaxSteps returns the maximum steps limit.
// Used for logging and diagnostics.
func (q *QuotaEnforcer) MaxSteps() int64 {
	return q.maxSteps
}

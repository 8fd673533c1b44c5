package harness

import "strings"

// TraceEvent records one call made by a scenario.
type TraceEvent struct {
	Call string   `json:"call"`
	Args []string `json:"args,omitempty"`
	// Value is the returned value's literal form; empty when the call failed.
	Value string `json:"value,omitempty"`
	// Error is the runtime error code; empty when the call succeeded.
	Error  string `json:"error,omitempty"`
	Steps  int64  `json:"steps"`
	Output string `json:"output,omitempty"`
}

// ExpansionSummary describes one expanded invocation without its code.
type ExpansionSummary struct {
	Function string   `json:"function"`
	Operator string   `json:"operator"`
	Context  string   `json:"context"`
	Form     string   `json:"form"`
	Names    []string `json:"names,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation and assertion holds.
	Pass bool `json:"pass"`

	// Trace contains every call in scenario order.
	Trace []TraceEvent `json:"trace"`

	// Expansions lists the program's invocations in the order the compiler
	// reported them.
	Expansions []ExpansionSummary `json:"expansions"`

	// Warnings holds recursion warning paths joined with " -> ".
	Warnings []string `json:"warnings,omitempty"`

	// CompileErrors holds the diagnostic codes when compilation failed.
	CompileErrors []string `json:"compile_errors,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Trace:      []TraceEvent{},
		Expansions: []ExpansionSummary{},
		Errors:     []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Output returns everything the scenario's calls printed, in order.
func (r *Result) Output() string {
	var sb strings.Builder
	for _, ev := range r.Trace {
		sb.WriteString(ev.Output)
	}
	return sb.String()
}

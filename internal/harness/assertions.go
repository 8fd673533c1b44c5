package harness

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s(%s) => %s\n", i+1, event.Call, strings.Join(event.Args, ", "), describe(event))
		}
	}

	return buf.String()
}

// assertExpansionCount checks the number of expanded invocations.
func assertExpansionCount(result *Result, assertion Assertion) error {
	if len(result.Expansions) != assertion.Count {
		return &AssertionError{
			Type:     AssertExpansionCount,
			Expected: fmt.Sprintf("%d expansions", assertion.Count),
			Actual:   fmt.Sprintf("%d expansions", len(result.Expansions)),
		}
	}
	return nil
}

// assertExpansion checks the fields the assertion sets against one
// expansion. Names are compared as a set.
func assertExpansion(result *Result, assertion Assertion) error {
	if assertion.Index >= len(result.Expansions) {
		return &AssertionError{
			Type:     AssertExpansion,
			Expected: fmt.Sprintf("expansion %d", assertion.Index),
			Actual:   fmt.Sprintf("only %d expansions", len(result.Expansions)),
		}
	}
	exp := result.Expansions[assertion.Index]

	var mismatches []string
	check := func(field, want, got string) {
		if want != "" && want != got {
			mismatches = append(mismatches, fmt.Sprintf("%s %q, got %q", field, want, got))
		}
	}
	check("operator", assertion.Operator, exp.Operator)
	check("form", assertion.Form, exp.Form)
	check("context", assertion.Context, exp.Context)

	if assertion.Names != nil {
		sortNames := cmpopts.SortSlices(func(a, b string) bool { return a < b })
		if diff := cmp.Diff(assertion.Names, exp.Names, sortNames, cmpopts.EquateEmpty()); diff != "" {
			mismatches = append(mismatches, fmt.Sprintf("names (-want +got):\n%s", diff))
		}
	}

	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertExpansion,
			Expected: fmt.Sprintf("expansion %d in %s to match", assertion.Index, exp.Function),
			Actual:   strings.Join(mismatches, "; "),
		}
	}
	return nil
}

// assertOutputContains checks the combined output of every step.
func assertOutputContains(result *Result, assertion Assertion) error {
	out := result.Output()
	if !strings.Contains(out, assertion.Text) {
		return &AssertionError{
			Type:     AssertOutputContains,
			Expected: fmt.Sprintf("output containing %q", assertion.Text),
			Actual:   fmt.Sprintf("%q", out),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertStepsAtMost checks the step count of one call. A call that failed
// has no step count and fails the assertion.
func assertStepsAtMost(result *Result, assertion Assertion) error {
	if assertion.Step >= len(result.Trace) {
		return &AssertionError{
			Type:     AssertStepsAtMost,
			Expected: fmt.Sprintf("step %d to have run", assertion.Step),
			Actual:   fmt.Sprintf("%d steps ran", len(result.Trace)),
			Trace:    result.Trace,
		}
	}
	event := result.Trace[assertion.Step]
	if event.Error != "" || event.Steps > assertion.Max {
		return &AssertionError{
			Type:     AssertStepsAtMost,
			Expected: fmt.Sprintf("%s to finish within %d steps", event.Call, assertion.Max),
			Actual:   fmt.Sprintf("%d steps, %s", event.Steps, describe(event)),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertRecursionWarning checks that a warning with exactly the path exists.
func assertRecursionWarning(result *Result, assertion Assertion) error {
	want := strings.Join(assertion.Path, " -> ")
	for _, w := range result.Warnings {
		if w == want {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertRecursionWarning,
		Expected: fmt.Sprintf("warning for %s", want),
		Actual:   fmt.Sprintf("warnings %v", result.Warnings),
	}
}

// assertCompileError checks the diagnostic codes, in order.
func assertCompileError(result *Result, assertion Assertion) error {
	if diff := cmp.Diff(assertion.Codes, result.CompileErrors, cmpopts.EquateEmpty()); diff != "" {
		return &AssertionError{
			Type:     AssertCompileError,
			Expected: fmt.Sprintf("compile errors %v", assertion.Codes),
			Actual:   fmt.Sprintf("compile errors %v (-want +got):\n%s", result.CompileErrors, diff),
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion against the result and returns
// one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertExpansionCount:
			err = assertExpansionCount(result, assertion)
		case AssertExpansion:
			err = assertExpansion(result, assertion)
		case AssertOutputContains:
			err = assertOutputContains(result, assertion)
		case AssertStepsAtMost:
			err = assertStepsAtMost(result, assertion)
		case AssertRecursionWarning:
			err = assertRecursionWarning(result, assertion)
		case AssertCompileError:
			err = assertCompileError(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

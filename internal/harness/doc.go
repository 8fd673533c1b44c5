// Package harness provides conformance testing for tri-script programs.
//
// The harness compiles a program, calls its functions with the arguments a
// scenario lists, and checks the values, runtime error codes and printed
// output against the scenario's expectations. Every call is recorded in an
// in-memory store and then replayed, so each scenario also verifies that
// expansion and execution are deterministic.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	project: |
//	  enums: Pair: {Both: 2, Neither: 0}
//	source: |
//	  fn main(opt) {
//	      tri!(opt => Some[x] -> "missing");
//	      Ok(x)
//	  }
//	max_steps: 1000
//	steps:
//	  - call: main
//	    args: ["None"]
//	    expect:
//	      value: 'Err("missing")'
//	assertions:
//	  - type: expansion
//	    index: 0
//	    operator: fail
//	    form: binding
//
// A scenario holds its program inline in source, or names a file relative
// to the scenario in file. The optional project is tri.cue text supplying
// extra enums. Arguments and expected values use value literal syntax:
// 3, "text", true, (1, 2), Some(None), Pair::Both(1, 2).
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - expansion_count: Verifies the number of tri! invocations expanded
//   - expansion: Verifies the operator, form, context or bound names of
//     one expansion
//   - output_contains: Verifies the combined printed output contains text
//   - steps_at_most: Verifies a step finished within a step budget
//   - recursion_warning: Verifies a recursion warning with the given path
//   - compile_error: Verifies compilation failed with exactly these codes
//
// # Deterministic Testing
//
// Each scenario runs against a fresh in-memory SQLite database. After the
// steps run, VerifyReplay compiles every recorded expansion again and
// re-executes every recorded run; any difference is reported as a
// scenario error.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/fail.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness

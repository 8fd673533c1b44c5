package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// A scenario compiles one program, calls its functions and asserts on the
// expansions and the resulting trace.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the program text. Exactly one of Source and File is set.
	Source string `yaml:"source,omitempty"`

	// File names the program file, relative to the scenario file.
	// LoadScenario reads it into Source.
	File string `yaml:"file,omitempty"`

	// Project is optional tri.cue text declaring extra enums.
	Project string `yaml:"project,omitempty"`

	// MaxSteps bounds each call. Zero means the engine default.
	MaxSteps int64 `yaml:"max_steps,omitempty"`

	// Steps are the calls to make, in order.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the expansions and the final trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step calls one function.
type Step struct {
	// Call is the function name.
	Call string `yaml:"call"`

	// Args are value literals, e.g. 3, "x", Some((1, 2)).
	Args []string `yaml:"args,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the call only has to succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies expected call behavior. Value and Error are mutually
// exclusive; Output may accompany either.
type Expect struct {
	// Value is the expected return value as a literal.
	Value string `yaml:"value,omitempty"`

	// Error is the expected runtime error code, e.g. QUOTA_EXCEEDED.
	Error string `yaml:"error,omitempty"`

	// Output is the exact printed output. Nil means unchecked.
	Output *string `yaml:"output,omitempty"`
}

// Assertion validates expansions or the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "expansion_count": Check how many invocations were expanded
	// - "expansion": Check operator, form, context or names of one expansion
	// - "output_contains": Check the printed output contains Text
	// - "steps_at_most": Check step Step used at most Max steps
	// - "recursion_warning": Check a warning with exactly Path exists
	// - "compile_error": Check compilation failed with exactly Codes
	Type string `yaml:"type"`

	// Count is the expected number of expansions (expansion_count).
	Count int `yaml:"count,omitempty"`

	// Index selects the expansion (expansion).
	Index int `yaml:"index,omitempty"`

	// Operator, Form, Context and Names are compared when set (expansion).
	Operator string   `yaml:"operator,omitempty"`
	Form     string   `yaml:"form,omitempty"`
	Context  string   `yaml:"context,omitempty"`
	Names    []string `yaml:"names,omitempty"`

	// Text is the expected output fragment (output_contains).
	Text string `yaml:"text,omitempty"`

	// Step indexes Steps and Max is the budget (steps_at_most).
	Step int   `yaml:"step,omitempty"`
	Max  int64 `yaml:"max,omitempty"`

	// Path is the expected call cycle (recursion_warning).
	Path []string `yaml:"path,omitempty"`

	// Codes are the expected diagnostic codes in order (compile_error).
	Codes []string `yaml:"codes,omitempty"`
}

// Assertion type constants.
const (
	AssertExpansionCount   = "expansion_count"
	AssertExpansion        = "expansion"
	AssertOutputContains   = "output_contains"
	AssertStepsAtMost      = "steps_at_most"
	AssertRecursionWarning = "recursion_warning"
	AssertCompileError     = "compile_error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A program named by file is read relative to the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.File != "" {
		programPath := scenario.File
		if !filepath.IsAbs(programPath) {
			programPath = filepath.Join(filepath.Dir(path), programPath)
		}
		src, err := os.ReadFile(programPath)
		if err != nil {
			return nil, &ProgramNotFoundError{Scenario: scenario.Name, Path: programPath, Err: err}
		}
		scenario.Source = string(src)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem. A
// scenario using file is accepted but its Source stays empty.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// expectsCompileError reports whether the scenario asserts a failed compile.
func (s *Scenario) expectsCompileError() bool {
	for _, a := range s.Assertions {
		if a.Type == AssertCompileError {
			return true
		}
	}
	return false
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Source == "" && s.File == "":
		return fmt.Errorf("one of source or file is required")
	case s.Source != "" && s.File != "":
		return fmt.Errorf("source and file are mutually exclusive")
	}

	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	if len(s.Steps) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one step or assertion is required")
	}

	if s.expectsCompileError() && len(s.Steps) > 0 {
		return fmt.Errorf("a compile_error scenario cannot have steps")
	}

	for i, step := range s.Steps {
		if step.Call == "" {
			return fmt.Errorf("steps[%d]: call is required", i)
		}
		if step.Expect != nil && step.Expect.Value != "" && step.Expect.Error != "" {
			return fmt.Errorf("steps[%d].expect: value and error are mutually exclusive", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Steps)); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertExpansionCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for expansion_count", index)
		}
	case AssertExpansion:
		if a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative for expansion", index)
		}
		if a.Operator == "" && a.Form == "" && a.Context == "" && a.Names == nil {
			return fmt.Errorf("assertions[%d]: expansion needs one of operator, form, context or names", index)
		}
	case AssertOutputContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for output_contains", index)
		}
	case AssertStepsAtMost:
		if a.Step < 0 || a.Step >= steps {
			return fmt.Errorf("assertions[%d]: step %d does not name a step", index, a.Step)
		}
		if a.Max <= 0 {
			return fmt.Errorf("assertions[%d]: max must be positive for steps_at_most", index)
		}
	case AssertRecursionWarning:
		if len(a.Path) == 0 {
			return fmt.Errorf("assertions[%d]: path is required for recursion_warning", index)
		}
	case AssertCompileError:
		if len(a.Codes) == 0 {
			return fmt.Errorf("assertions[%d]: codes are required for compile_error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

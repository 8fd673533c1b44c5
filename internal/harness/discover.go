package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ProgramNotFoundError is returned when a scenario names a program file
// that cannot be read.
type ProgramNotFoundError struct {
	Scenario string
	Path     string
	Err      error
}

func (e *ProgramNotFoundError) Error() string {
	return fmt.Sprintf("scenario %s: program %s: %v", e.Scenario, e.Path, e.Err)
}

func (e *ProgramNotFoundError) Unwrap() error {
	return e.Err
}

// ScenarioPattern matches scenario files below a directory.
const ScenarioPattern = "**/*.yaml"

// DiscoverScenarios returns the scenario files below dir, sorted by path.
func DiscoverScenarios(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario directory: %s is not a directory", dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), ScenarioPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(matches)

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	return paths, nil
}

// LoadScenarios loads every scenario below dir. Loading stops at the first
// invalid scenario.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := DiscoverScenarios(dir)
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

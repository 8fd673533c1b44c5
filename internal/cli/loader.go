package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"github.com/spf13/cobra"

	"github.com/EMcConnell20/tri-ton/internal/compiler"
	"github.com/EMcConnell20/tri-ton/internal/syntax"
)

// ProjectFile is the project file looked up in the working directory when
// --config is not given.
const ProjectFile = "tri.cue"

// LoadError represents an error that occurred while loading a project or
// source file.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Error code constants for failures outside the source itself.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeBuildFailed = "E006" // CUE build or project schema failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStore       = "E008" // Database error
)

// LoadProject loads the project file. An explicit path must exist; with no
// path, ./tri.cue is used when present and the default project otherwise.
func LoadProject(path string) (*compiler.Project, error) {
	if path == "" {
		if _, err := os.Stat(ProjectFile); errors.Is(err, os.ErrNotExist) {
			return compiler.DefaultProject(), nil
		}
		path = ProjectFile
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("project file not found: %s", path), Err: err}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: path, Err: err}
	}
	cfg := &load.Config{Dir: filepath.Dir(abs)}
	instances := load.Instances([]string{filepath.Base(abs)}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "loading " + path, Err: inst.Err}
	}

	value := cuecontext.New().BuildInstance(inst)
	proj, err := compiler.CompileProject(value)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: "compiling " + path, Err: err}
	}
	return proj, nil
}

// loadProject loads the project named by --config and reports failures as
// command errors.
func (o *RootOptions) loadProject() (*compiler.Project, error) {
	proj, err := LoadProject(o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load project", err)
	}
	return proj, nil
}

// readSource reads a source file; "-" reads standard input.
func readSource(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", WrapExitError(ExitCommandError, fmt.Sprintf("failed to read %s", path),
			&LoadError{Code: ErrCodeNotFound, Message: path, Err: err})
	}
	return string(data), nil
}

// compileSource parses and compiles src. Source diagnostics come back as
// the error, unwrapped, so callers can render them.
func compileSource(name, src string, proj *compiler.Project, opts ...compiler.Option) (*compiler.Result, error) {
	file, err := syntax.Parse(name, src)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(file, proj.Catalog, opts...)
}

package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// projectSchema constrains tri.cue. #Project is closed, so misspelled
// top-level fields are rejected instead of silently ignored.
const projectSchema = `
#Project: {
	config?: {
		max_steps?: int & >0
		include?: [...string]
		exclude?: [...string]
		cache?: string
	}
	enums?: [string]: [string]: int & >=0
}
`

// Default include and exclude globs for source discovery.
var (
	DefaultInclude = []string{"**/*.tri"}
	DefaultExclude = []string{"**/*.expanded.tri"}
)

// Config holds the config section of a project file.
type Config struct {
	MaxSteps int64    `json:"max_steps,omitempty"`
	Include  []string `json:"include,omitempty"`
	Exclude  []string `json:"exclude,omitempty"`
	Cache    string   `json:"cache,omitempty"`
}

// Project is a compiled tri.cue: tool configuration plus the variants every
// source file in the project may use.
type Project struct {
	Config  Config
	Catalog *Catalog
}

// DefaultProject is used when no project file exists.
func DefaultProject() *Project {
	return &Project{
		Config: Config{
			Include: append([]string(nil), DefaultInclude...),
			Exclude: append([]string(nil), DefaultExclude...),
		},
		Catalog: NewCatalog(),
	}
}

// CompileProject parses a CUE value into a Project.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the whole project file, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`enums: Shape: {Empty: 0, Pair: 2}`)
//	proj, err := CompileProject(v)
func CompileProject(v cue.Value) (*Project, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := v.Context().CompileString(projectSchema, cue.Filename("tri-project-schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("project schema: %w", err)
	}
	unified := schema.LookupPath(cue.ParsePath("#Project")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	proj := DefaultProject()

	cfgVal := unified.LookupPath(cue.ParsePath("config"))
	if cfgVal.Exists() {
		var cfg Config
		if err := cfgVal.Decode(&cfg); err != nil {
			return nil, formatCUEError(err)
		}
		proj.Config.MaxSteps = cfg.MaxSteps
		proj.Config.Cache = cfg.Cache
		if len(cfg.Include) > 0 {
			proj.Config.Include = cfg.Include
		}
		if len(cfg.Exclude) > 0 {
			proj.Config.Exclude = cfg.Exclude
		}
	}

	enumsVal := unified.LookupPath(cue.ParsePath("enums"))
	if enumsVal.Exists() {
		if err := compileEnums(enumsVal, proj.Catalog); err != nil {
			return nil, err
		}
	}

	return proj, nil
}

// compileEnums adds every enum of the form {Name: {Variant: arity}}.
func compileEnums(v cue.Value, cat *Catalog) error {
	enumIter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for enumIter.Next() {
		enumName := enumIter.Label()
		enumVal := enumIter.Value()

		varIter, err := enumVal.Fields()
		if err != nil {
			return formatCUEError(err)
		}
		var decls []ir.VariantDecl
		for varIter.Next() {
			arity, err := varIter.Value().Int64()
			if err != nil {
				return formatCUEError(err)
			}
			decls = append(decls, ir.VariantDecl{
				At:    cuePos(varIter.Value().Pos()),
				Name:  varIter.Label(),
				Arity: int(arity),
			})
		}

		if errs := cat.AddEnum(enumName, decls, cuePos(enumVal.Pos())); len(errs) > 0 {
			return &CompileError{
				Field:   "enums." + enumName,
				Message: errs[0].Message,
				Pos:     enumVal.Pos(),
			}
		}
	}
	return nil
}

func cuePos(p token.Pos) ir.Pos {
	if !p.IsValid() {
		return ir.Pos{}
	}
	return ir.Pos{File: p.Filename(), Line: p.Line(), Col: p.Column()}
}

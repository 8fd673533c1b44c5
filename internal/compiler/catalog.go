package compiler

import (
	"sort"
	"strings"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// Variant describes one variant that shapes can match and code can construct.
type Variant struct {
	Name  string `json:"name"`
	Enum  string `json:"enum"`
	Arity int    `json:"arity"`
	Pos   ir.Pos `json:"-"`
}

// Catalog maps variant names to their declarations. Variant short names are
// unique across all enums, so a bare name like Some always resolves.
type Catalog struct {
	variants map[string]Variant
	enums    map[string][]string
}

// builtinEnums are available in every program.
var builtinEnums = []struct {
	name     string
	variants []ir.VariantDecl
}{
	{"Option", []ir.VariantDecl{{Name: "Some", Arity: 1}, {Name: "None"}}},
	{"Result", []ir.VariantDecl{{Name: "Ok", Arity: 1}, {Name: "Err", Arity: 1}}},
}

// NewCatalog returns a catalog holding only the builtin Option and Result
// variants.
func NewCatalog() *Catalog {
	c := &Catalog{
		variants: make(map[string]Variant),
		enums:    make(map[string][]string),
	}
	for _, e := range builtinEnums {
		c.AddEnum(e.name, e.variants, ir.Pos{})
	}
	return c
}

// Clone returns an independent copy.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		variants: make(map[string]Variant, len(c.variants)),
		enums:    make(map[string][]string, len(c.enums)),
	}
	for k, v := range c.variants {
		out.variants[k] = v
	}
	for k, v := range c.enums {
		out.enums[k] = append([]string(nil), v...)
	}
	return out
}

// AddEnum declares an enum and its variants. Redeclared enums and variant
// names already taken by another enum are reported and skipped.
func (c *Catalog) AddEnum(name string, variants []ir.VariantDecl, pos ir.Pos) []*ExpansionError {
	var errs []*ExpansionError
	if _, exists := c.enums[name]; exists {
		return append(errs, newError(pos, ErrDuplicateDecl, "enum %s is already declared", name))
	}
	c.enums[name] = nil
	for _, v := range variants {
		if prev, exists := c.variants[v.Name]; exists {
			errs = append(errs, newError(v.At, ErrDuplicateDecl,
				"variant %s is already declared in enum %s", v.Name, prev.Enum))
			continue
		}
		at := v.At
		if !at.IsValid() {
			at = pos
		}
		c.variants[v.Name] = Variant{Name: v.Name, Enum: name, Arity: v.Arity, Pos: at}
		c.enums[name] = append(c.enums[name], v.Name)
	}
	return errs
}

// Lookup resolves a variant path. A single segment is a short name; longer
// paths must name the variant's enum in the second-to-last segment.
func (c *Catalog) Lookup(path []string) (Variant, bool) {
	if len(path) == 0 {
		return Variant{}, false
	}
	v, ok := c.variants[path[len(path)-1]]
	if !ok {
		return Variant{}, false
	}
	if len(path) >= 2 && path[len(path)-2] != v.Enum {
		return Variant{}, false
	}
	return v, true
}

// LookupPath resolves a "::"-joined path.
func (c *Catalog) LookupPath(path string) (Variant, bool) {
	return c.Lookup(strings.Split(path, "::"))
}

// IsUnitVariant reports whether name is a variant without fields.
func (c *Catalog) IsUnitVariant(name string) bool {
	v, ok := c.variants[name]
	return ok && v.Arity == 0
}

// HasVariant reports whether name is a variant short name.
func (c *Catalog) HasVariant(name string) bool {
	_, ok := c.variants[name]
	return ok
}

// HasEnum reports whether name is a declared enum.
func (c *Catalog) HasEnum(name string) bool {
	_, ok := c.enums[name]
	return ok
}

// Variants lists every variant ordered by enum then declaration order.
func (c *Catalog) Variants() []Variant {
	enums := make([]string, 0, len(c.enums))
	for name := range c.enums {
		enums = append(enums, name)
	}
	sort.Strings(enums)

	var out []Variant
	for _, e := range enums {
		for _, name := range c.enums[e] {
			out = append(out, c.variants[name])
		}
	}
	return out
}

// Digest identifies the catalog contents for cache keys.
func (c *Catalog) Digest() string {
	arities := make(map[string]int, len(c.variants))
	for _, v := range c.variants {
		arities[v.Enum+"::"+v.Name] = v.Arity
	}
	return ir.CatalogDigest(arities)
}

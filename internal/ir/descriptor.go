package ir

import "strings"

// Operator selects which control skeleton an invocation expands into.
// Exactly one operator is attached to every descriptor.
type Operator int

const (
	OpInvalid Operator = iota
	OpFall             // <>  fallback value on mismatch
	OpFail             // ->  return Err(trailing) on mismatch
	OpReturn           // #>  emit trailing jump verbatim on mismatch
	OpUntil            // %>  run trailing until the match succeeds
	OpWhile            // >>  run trailing, repeat while the match succeeds
)

var operatorTokens = map[Operator]string{
	OpFall:   "<>",
	OpFail:   "->",
	OpReturn: "#>",
	OpUntil:  "%>",
	OpWhile:  ">>",
}

var operatorNames = map[Operator]string{
	OpFall:   "fall",
	OpFail:   "fail",
	OpReturn: "return",
	OpUntil:  "until",
	OpWhile:  "while",
}

// Operators lists the five operators in declaration order.
var Operators = []Operator{OpFall, OpFail, OpReturn, OpUntil, OpWhile}

// Token returns the operator as written in source.
func (o Operator) Token() string {
	if t, ok := operatorTokens[o]; ok {
		return t
	}
	return "?"
}

func (o Operator) String() string {
	if n, ok := operatorNames[o]; ok {
		return n
	}
	return "invalid"
}

// OperatorFromToken maps a source token to its operator.
func OperatorFromToken(tok string) (Operator, bool) {
	for op, t := range operatorTokens {
		if t == tok {
			return op, true
		}
	}
	return OpInvalid, false
}

// ShapeKind distinguishes the two shape forms.
type ShapeKind int

const (
	// ShapeVariant is a variant path with optional capture slots.
	ShapeVariant ShapeKind = iota
	// ShapeLiteral is a bracketed list of general patterns.
	ShapeLiteral
)

// Delim records how a variant shape's capture slots were written.
type Delim int

const (
	// DelimNone is a bare path: None, Shape::Empty.
	DelimNone Delim = iota
	// DelimParen is Path(slots): captures are the invocation's value.
	DelimParen
	// DelimBracket is Path[slots]: captures bind into the enclosing block.
	DelimBracket
)

// Shape is the expected structural form of the scrutinee.
type Shape struct {
	At       Pos
	Kind     ShapeKind
	Path     []string
	Delim    Delim
	Patterns []Pattern
}

// PathString joins the variant path with "::".
func (s Shape) PathString() string {
	return strings.Join(s.Path, "::")
}

// VariantName is the last path segment, the name used for catalog lookup.
func (s Shape) VariantName() string {
	if len(s.Path) == 0 {
		return ""
	}
	return s.Path[len(s.Path)-1]
}

// BindingMode says what a capture slot does with its field.
type BindingMode int

const (
	// BindFresh declares a new local, possibly mutable.
	BindFresh BindingMode = iota
	// BindDiscard matches the field without binding it.
	BindDiscard
	// BindSet assigns the field to an existing mutable local.
	BindSet
)

func (m BindingMode) String() string {
	switch m {
	case BindFresh:
		return "fresh"
	case BindDiscard:
		return "discard"
	case BindSet:
		return "set"
	}
	return "invalid"
}

// Capture is one capture slot of a variant shape.
//
// For BindFresh and BindSet, Pattern is the optional sub-pattern after "@".
// For BindDiscard, Pattern is the whole slot. Init is the seed value used
// before the first match; only the While operator accepts it.
type Capture struct {
	At      Pos
	Mode    BindingMode
	Name    string
	Mut     bool
	Pattern Pattern
	Init    Expr
}

// Binds reports whether the slot introduces or updates a name.
func (c Capture) Binds() bool {
	return c.Mode == BindFresh || c.Mode == BindSet
}

// Descriptor is the parsed form of one invocation. It is created once by the
// parser, never modified, and consumed entirely by expansion.
type Descriptor struct {
	At        Pos
	Scrutinee Expr
	Shape     Shape
	Captures  []Capture
	Operator  Operator
	Trailing  []Expr
}

// CaptureNames returns the names of binding slots in declaration order.
func (d *Descriptor) CaptureNames() []string {
	var names []string
	for _, c := range d.Captures {
		if c.Binds() {
			names = append(names, c.Name)
		}
	}
	return names
}

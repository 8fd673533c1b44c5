package ir

import "fmt"

// HygienePrefix starts every identifier the expander introduces. The lexer
// rejects user identifiers with this prefix, so generated names never collide
// with names written in source.
const HygienePrefix = "__tri_"

// Pos is a source position. Line and Col are 1-based; the zero Pos is unknown.
type Pos struct {
	File string
	Line int
	Col  int
}

// IsValid reports whether the position refers to a real source location.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		if p.File != "" {
			return p.File
		}
		return "-"
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Node is implemented by every tree node.
type Node interface {
	Position() Pos
}

// Expr is a sealed interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a sealed interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Pattern is a sealed interface for pattern nodes.
type Pattern interface {
	Node
	patternNode()
}

// Item is a sealed interface for top-level declarations.
type Item interface {
	Node
	itemNode()
}

// ---- expressions ----

// Lit is a literal value: int, bool, string or unit.
type Lit struct {
	At    Pos
	Value Value
}

// Ident references a local variable. Before compilation it may also name a
// unit variant (None) or a function; the compiler rewrites those.
type Ident struct {
	At   Pos
	Name string
}

// PathExpr is a qualified path such as Shape::Empty used as a value.
type PathExpr struct {
	At       Pos
	Segments []string
}

// TupleExpr builds a tuple from two or more elements, or one with a trailing comma.
type TupleExpr struct {
	At    Pos
	Elems []Expr
}

// Call invokes a function or builtin by name. Before compilation Func may also
// name a variant; the compiler rewrites those calls to Construct.
type Call struct {
	At   Pos
	Func string
	Args []Expr
}

// Construct builds a variant value. Path is the path as written; Variant is
// the resolved variant name.
type Construct struct {
	At      Pos
	Path    string
	Variant string
	Args    []Expr
}

// Index projects a tuple or variant field by position (x.0).
type Index struct {
	At    Pos
	X     Expr
	Index int
}

// Unary applies "-" or "!".
type Unary struct {
	At Pos
	Op string
	X  Expr
}

// Binary applies an arithmetic, comparison or logical operator.
type Binary struct {
	At Pos
	Op string
	X  Expr
	Y  Expr
}

// Assign stores into a mutable local. Op is "=" or a compound form like "+=".
type Assign struct {
	At    Pos
	Op    string
	Name  string
	Value Expr
}

// Block is a braced statement list with an optional tail expression that
// becomes the block's value.
type Block struct {
	At    Pos
	Stmts []Stmt
	Tail  Expr
}

// If is a conditional. Else is nil, a *Block, an *If or an *IfLet.
type If struct {
	At   Pos
	Cond Expr
	Then *Block
	Else Expr
}

// IfLet runs Then when Value matches Pattern, with the pattern's bindings in
// scope; otherwise Else.
type IfLet struct {
	At      Pos
	Pattern Pattern
	Value   Expr
	Then    *Block
	Else    Expr
}

// Loop repeats Body until a break targets it.
type Loop struct {
	At    Pos
	Label string
	Body  *Block
}

// While repeats Body while Cond is true.
type While struct {
	At    Pos
	Label string
	Cond  Expr
	Body  *Block
}

// Break leaves the innermost loop, or the loop named by Label, optionally
// carrying a value out of a Loop.
type Break struct {
	At    Pos
	Label string
	Value Expr
}

// Continue restarts the innermost loop or the loop named by Label.
type Continue struct {
	At    Pos
	Label string
}

// Return leaves the enclosing function.
type Return struct {
	At    Pos
	Value Expr
}

// Tri is an unexpanded tri! invocation. It never survives compilation.
type Tri struct {
	At   Pos
	Desc *Descriptor
}

func (e *Lit) Position() Pos       { return e.At }
func (e *Ident) Position() Pos     { return e.At }
func (e *PathExpr) Position() Pos  { return e.At }
func (e *TupleExpr) Position() Pos { return e.At }
func (e *Call) Position() Pos      { return e.At }
func (e *Construct) Position() Pos { return e.At }
func (e *Index) Position() Pos     { return e.At }
func (e *Unary) Position() Pos     { return e.At }
func (e *Binary) Position() Pos    { return e.At }
func (e *Assign) Position() Pos    { return e.At }
func (e *Block) Position() Pos     { return e.At }
func (e *If) Position() Pos        { return e.At }
func (e *IfLet) Position() Pos     { return e.At }
func (e *Loop) Position() Pos      { return e.At }
func (e *While) Position() Pos     { return e.At }
func (e *Break) Position() Pos     { return e.At }
func (e *Continue) Position() Pos  { return e.At }
func (e *Return) Position() Pos    { return e.At }
func (e *Tri) Position() Pos       { return e.At }

func (*Lit) exprNode()       {}
func (*Ident) exprNode()     {}
func (*PathExpr) exprNode()  {}
func (*TupleExpr) exprNode() {}
func (*Call) exprNode()      {}
func (*Construct) exprNode() {}
func (*Index) exprNode()     {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*Assign) exprNode()    {}
func (*Block) exprNode()     {}
func (*If) exprNode()        {}
func (*IfLet) exprNode()     {}
func (*Loop) exprNode()      {}
func (*While) exprNode()     {}
func (*Break) exprNode()     {}
func (*Continue) exprNode()  {}
func (*Return) exprNode()    {}
func (*Tri) exprNode()       {}

// IsBlockLike reports whether e ends in a block, so it needs no semicolon when
// used as a statement.
func IsBlockLike(e Expr) bool {
	switch e.(type) {
	case *Block, *If, *IfLet, *Loop, *While:
		return true
	}
	return false
}

// IsJump reports whether e is a break, continue or return expression.
func IsJump(e Expr) bool {
	switch e.(type) {
	case *Break, *Continue, *Return:
		return true
	}
	return false
}

// ---- statements ----

// Let binds Pattern to Value. With Else set it is a let-else: Else runs when
// the pattern does not match and must not fall through.
type Let struct {
	At      Pos
	Pattern Pattern
	Value   Expr
	Else    *Block
}

// ExprStmt evaluates X for its effect.
type ExprStmt struct {
	At Pos
	X  Expr
}

func (s *Let) Position() Pos      { return s.At }
func (s *ExprStmt) Position() Pos { return s.At }

func (*Let) stmtNode()      {}
func (*ExprStmt) stmtNode() {}

// ---- patterns ----

// PWild matches anything and binds nothing.
type PWild struct {
	At Pos
}

// PLit matches an equal literal.
type PLit struct {
	At    Pos
	Value Value
}

// PRange matches ordered values between Lo and Hi. A nil bound is open.
type PRange struct {
	At        Pos
	Lo        Value
	Hi        Value
	Inclusive bool
}

// PBind binds the matched value to a new local, optionally checking Sub first.
type PBind struct {
	At   Pos
	Name string
	Mut  bool
	Sub  Pattern
}

// PSet assigns the matched value to an existing mutable local.
type PSet struct {
	At   Pos
	Name string
	Sub  Pattern
}

// PTuple matches a tuple of the same length element-wise.
type PTuple struct {
	At    Pos
	Elems []Pattern
}

// PVariant matches a variant by name, then its fields by position.
type PVariant struct {
	At   Pos
	Path string
	Args []Pattern
}

func (p *PWild) Position() Pos    { return p.At }
func (p *PLit) Position() Pos     { return p.At }
func (p *PRange) Position() Pos   { return p.At }
func (p *PBind) Position() Pos    { return p.At }
func (p *PSet) Position() Pos     { return p.At }
func (p *PTuple) Position() Pos   { return p.At }
func (p *PVariant) Position() Pos { return p.At }

func (*PWild) patternNode()    {}
func (*PLit) patternNode()     {}
func (*PRange) patternNode()   {}
func (*PBind) patternNode()    {}
func (*PSet) patternNode()     {}
func (*PTuple) patternNode()   {}
func (*PVariant) patternNode() {}

// PatternBindings returns the names p binds or assigns, in source order.
func PatternBindings(p Pattern) []string {
	var names []string
	WalkPattern(p, func(q Pattern) {
		switch q := q.(type) {
		case *PBind:
			names = append(names, q.Name)
		case *PSet:
			names = append(names, q.Name)
		}
	})
	return names
}

// WalkPattern calls fn for p and every sub-pattern, parents first.
func WalkPattern(p Pattern, fn func(Pattern)) {
	if p == nil {
		return
	}
	fn(p)
	switch p := p.(type) {
	case *PBind:
		WalkPattern(p.Sub, fn)
	case *PSet:
		WalkPattern(p.Sub, fn)
	case *PTuple:
		for _, e := range p.Elems {
			WalkPattern(e, fn)
		}
	case *PVariant:
		for _, a := range p.Args {
			WalkPattern(a, fn)
		}
	}
}

// ---- items ----

// Param is a function parameter.
type Param struct {
	Name string
	Mut  bool
}

// FnDecl declares a function.
type FnDecl struct {
	At     Pos
	Name   string
	Params []Param
	Body   *Block
}

// VariantDecl declares one variant and the number of fields it carries.
type VariantDecl struct {
	At    Pos
	Name  string
	Arity int
}

// EnumDecl declares a tagged union.
type EnumDecl struct {
	At       Pos
	Name     string
	Variants []VariantDecl
}

func (d *FnDecl) Position() Pos   { return d.At }
func (d *EnumDecl) Position() Pos { return d.At }

func (*FnDecl) itemNode()   {}
func (*EnumDecl) itemNode() {}

// File is a parsed source file.
type File struct {
	Name  string
	Items []Item
}

// Program is a compiled file: every invocation expanded, every name resolved.
type Program struct {
	File  *File
	Funcs map[string]*FnDecl
}

// Func returns the named function, or nil.
func (p *Program) Func(name string) *FnDecl {
	if p == nil {
		return nil
	}
	return p.Funcs[name]
}

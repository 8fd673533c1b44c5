package ir

import (
	"strconv"
	"strings"
)

// Operator precedence, lowest first. Shared by the parser and the printer so
// that formatted code always parses back to the same tree.
const (
	PrecLowest = iota
	PrecAssign
	PrecOr
	PrecAnd
	PrecCompare
	PrecAdd
	PrecMul
	PrecUnary
	PrecPostfix
	PrecPrimary
)

// BinaryPrecedence returns the precedence of a binary operator, or PrecLowest
// if op is not one.
func BinaryPrecedence(op string) int {
	switch op {
	case "||":
		return PrecOr
	case "&&":
		return PrecAnd
	case "==", "!=", "<", "<=", ">", ">=":
		return PrecCompare
	case "+", "-":
		return PrecAdd
	case "*", "/", "%":
		return PrecMul
	}
	return PrecLowest
}

const indentUnit = "    "

// FormatFile renders a file in canonical form.
func FormatFile(f *File) string {
	p := &printer{}
	for i, item := range f.Items {
		if i > 0 {
			p.sb.WriteString("\n\n")
		}
		p.item(item)
	}
	if len(f.Items) > 0 {
		p.sb.WriteByte('\n')
	}
	return p.sb.String()
}

// FormatExpr renders an expression in canonical form.
func FormatExpr(e Expr) string {
	p := &printer{}
	p.expr(e, PrecLowest)
	return p.sb.String()
}

// FormatStmt renders a statement in canonical form.
func FormatStmt(s Stmt) string {
	p := &printer{}
	p.stmt(s)
	return p.sb.String()
}

// FormatStmts renders a statement list, one statement per line.
func FormatStmts(stmts []Stmt) string {
	p := &printer{}
	for i, s := range stmts {
		if i > 0 {
			p.newline()
		}
		p.stmt(s)
	}
	return p.sb.String()
}

// FormatPattern renders a pattern in canonical form.
func FormatPattern(pat Pattern) string {
	p := &printer{}
	p.pattern(pat)
	return p.sb.String()
}

// FormatDescriptor renders an invocation as it would be written in source.
func FormatDescriptor(d *Descriptor) string {
	p := &printer{}
	p.descriptor(d)
	return p.sb.String()
}

type printer struct {
	sb    strings.Builder
	depth int
}

func (p *printer) newline() {
	p.sb.WriteByte('\n')
	for i := 0; i < p.depth; i++ {
		p.sb.WriteString(indentUnit)
	}
}

func (p *printer) item(it Item) {
	switch it := it.(type) {
	case *FnDecl:
		p.sb.WriteString("fn ")
		p.sb.WriteString(it.Name)
		p.sb.WriteByte('(')
		for i, param := range it.Params {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			if param.Mut {
				p.sb.WriteString("mut ")
			}
			p.sb.WriteString(param.Name)
		}
		p.sb.WriteString(") ")
		p.block(it.Body)
	case *EnumDecl:
		p.sb.WriteString("enum ")
		p.sb.WriteString(it.Name)
		if len(it.Variants) == 0 {
			p.sb.WriteString(" {}")
			return
		}
		p.sb.WriteString(" {")
		p.depth++
		for _, v := range it.Variants {
			p.newline()
			p.sb.WriteString(v.Name)
			if v.Arity > 0 {
				p.sb.WriteByte('(')
				for i := 0; i < v.Arity; i++ {
					if i > 0 {
						p.sb.WriteString(", ")
					}
					p.sb.WriteByte('_')
				}
				p.sb.WriteByte(')')
			}
			p.sb.WriteByte(',')
		}
		p.depth--
		p.newline()
		p.sb.WriteByte('}')
	}
}

func (p *printer) block(b *Block) {
	if b == nil || (len(b.Stmts) == 0 && b.Tail == nil) {
		p.sb.WriteString("{}")
		return
	}
	p.sb.WriteByte('{')
	p.depth++
	for _, s := range b.Stmts {
		p.newline()
		p.stmt(s)
	}
	if b.Tail != nil {
		p.newline()
		p.expr(b.Tail, PrecLowest)
	}
	p.depth--
	p.newline()
	p.sb.WriteByte('}')
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *Let:
		p.sb.WriteString("let ")
		p.pattern(s.Pattern)
		if s.Value != nil {
			p.sb.WriteString(" = ")
			p.expr(s.Value, PrecLowest)
		}
		if s.Else != nil {
			p.sb.WriteString(" else ")
			p.block(s.Else)
		}
		p.sb.WriteByte(';')
	case *ExprStmt:
		p.expr(s.X, PrecLowest)
		if !IsBlockLike(s.X) {
			p.sb.WriteByte(';')
		}
	}
}

func exprPrec(e Expr) int {
	switch e := e.(type) {
	case *Assign, *Break, *Continue, *Return:
		return PrecAssign
	case *Binary:
		return BinaryPrecedence(e.Op)
	case *Unary:
		return PrecUnary
	case *Index, *Call, *Construct:
		return PrecPostfix
	case *Lit:
		if i, ok := e.Value.(Int); ok && i < 0 {
			return PrecUnary
		}
	}
	return PrecPrimary
}

func (p *printer) expr(e Expr, min int) {
	if exprPrec(e) < min {
		p.sb.WriteByte('(')
		p.expr(e, PrecLowest)
		p.sb.WriteByte(')')
		return
	}
	switch e := e.(type) {
	case *Lit:
		p.sb.WriteString(e.Value.String())
	case *Ident:
		p.sb.WriteString(e.Name)
	case *PathExpr:
		p.sb.WriteString(strings.Join(e.Segments, "::"))
	case *TupleExpr:
		p.sb.WriteByte('(')
		p.exprList(e.Elems)
		if len(e.Elems) == 1 {
			p.sb.WriteByte(',')
		}
		p.sb.WriteByte(')')
	case *Call:
		p.sb.WriteString(e.Func)
		p.sb.WriteByte('(')
		p.exprList(e.Args)
		p.sb.WriteByte(')')
	case *Construct:
		p.sb.WriteString(e.Path)
		if len(e.Args) > 0 {
			p.sb.WriteByte('(')
			p.exprList(e.Args)
			p.sb.WriteByte(')')
		}
	case *Index:
		p.expr(e.X, PrecPostfix)
		p.sb.WriteByte('.')
		p.sb.WriteString(strconv.Itoa(e.Index))
	case *Unary:
		p.sb.WriteString(e.Op)
		p.expr(e.X, PrecUnary)
	case *Binary:
		prec := BinaryPrecedence(e.Op)
		p.expr(e.X, prec)
		p.sb.WriteByte(' ')
		p.sb.WriteString(e.Op)
		p.sb.WriteByte(' ')
		p.expr(e.Y, prec+1)
	case *Assign:
		p.sb.WriteString(e.Name)
		p.sb.WriteByte(' ')
		p.sb.WriteString(e.Op)
		p.sb.WriteByte(' ')
		p.expr(e.Value, PrecAssign)
	case *Block:
		p.block(e)
	case *If:
		p.sb.WriteString("if ")
		p.expr(e.Cond, PrecLowest)
		p.sb.WriteByte(' ')
		p.block(e.Then)
		p.elseBranch(e.Else)
	case *IfLet:
		p.sb.WriteString("if let ")
		p.pattern(e.Pattern)
		p.sb.WriteString(" = ")
		p.expr(e.Value, PrecLowest)
		p.sb.WriteByte(' ')
		p.block(e.Then)
		p.elseBranch(e.Else)
	case *Loop:
		p.label(e.Label)
		p.sb.WriteString("loop ")
		p.block(e.Body)
	case *While:
		p.label(e.Label)
		p.sb.WriteString("while ")
		p.expr(e.Cond, PrecLowest)
		p.sb.WriteByte(' ')
		p.block(e.Body)
	case *Break:
		p.sb.WriteString("break")
		if e.Label != "" {
			p.sb.WriteString(" '")
			p.sb.WriteString(e.Label)
		}
		if e.Value != nil {
			p.sb.WriteByte(' ')
			p.expr(e.Value, PrecAssign)
		}
	case *Continue:
		p.sb.WriteString("continue")
		if e.Label != "" {
			p.sb.WriteString(" '")
			p.sb.WriteString(e.Label)
		}
	case *Return:
		p.sb.WriteString("return")
		if e.Value != nil {
			p.sb.WriteByte(' ')
			p.expr(e.Value, PrecAssign)
		}
	case *Tri:
		p.descriptor(e.Desc)
	}
}

func (p *printer) label(l string) {
	if l == "" {
		return
	}
	p.sb.WriteByte('\'')
	p.sb.WriteString(l)
	p.sb.WriteString(": ")
}

func (p *printer) elseBranch(e Expr) {
	if e == nil {
		return
	}
	p.sb.WriteString(" else ")
	if b, ok := e.(*Block); ok {
		p.block(b)
		return
	}
	p.expr(e, PrecLowest)
}

func (p *printer) exprList(list []Expr) {
	for i, e := range list {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.expr(e, PrecLowest)
	}
}

func (p *printer) pattern(pat Pattern) {
	switch pat := pat.(type) {
	case *PWild:
		p.sb.WriteByte('_')
	case *PLit:
		p.sb.WriteString(pat.Value.String())
	case *PRange:
		if pat.Lo != nil {
			p.sb.WriteString(pat.Lo.String())
		}
		if pat.Inclusive {
			p.sb.WriteString("..=")
		} else {
			p.sb.WriteString("..")
		}
		if pat.Hi != nil {
			p.sb.WriteString(pat.Hi.String())
		}
	case *PBind:
		if pat.Mut {
			p.sb.WriteString("mut ")
		}
		p.sb.WriteString(pat.Name)
		if pat.Sub != nil {
			p.sb.WriteString(" @ ")
			p.pattern(pat.Sub)
		}
	case *PSet:
		p.sb.WriteString("set ")
		p.sb.WriteString(pat.Name)
		if pat.Sub != nil {
			p.sb.WriteString(" @ ")
			p.pattern(pat.Sub)
		}
	case *PTuple:
		p.sb.WriteByte('(')
		for i, e := range pat.Elems {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.pattern(e)
		}
		if len(pat.Elems) == 1 {
			p.sb.WriteByte(',')
		}
		p.sb.WriteByte(')')
	case *PVariant:
		p.sb.WriteString(pat.Path)
		if len(pat.Args) > 0 {
			p.sb.WriteByte('(')
			for i, a := range pat.Args {
				if i > 0 {
					p.sb.WriteString(", ")
				}
				p.pattern(a)
			}
			p.sb.WriteByte(')')
		}
	}
}

func (p *printer) descriptor(d *Descriptor) {
	p.sb.WriteString("tri!(")
	p.expr(d.Scrutinee, PrecLowest)
	p.sb.WriteString(" => ")
	p.shape(d)
	p.sb.WriteByte(' ')
	p.sb.WriteString(d.Operator.Token())
	p.sb.WriteByte(' ')
	p.exprList(d.Trailing)
	p.sb.WriteByte(')')
}

func (p *printer) shape(d *Descriptor) {
	s := d.Shape
	if s.Kind == ShapeLiteral {
		p.sb.WriteByte('[')
		for i, pat := range s.Patterns {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.pattern(pat)
		}
		p.sb.WriteByte(']')
		return
	}
	p.sb.WriteString(s.PathString())
	open, close := "", ""
	switch s.Delim {
	case DelimParen:
		open, close = "(", ")"
	case DelimBracket:
		open, close = "[", "]"
	default:
		return
	}
	p.sb.WriteString(open)
	for i, c := range d.Captures {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.capture(c)
	}
	p.sb.WriteString(close)
}

func (p *printer) capture(c Capture) {
	switch c.Mode {
	case BindDiscard:
		p.pattern(c.Pattern)
		return
	case BindSet:
		p.sb.WriteString("set ")
	case BindFresh:
		if c.Mut {
			p.sb.WriteString("mut ")
		}
	}
	p.sb.WriteString(c.Name)
	if c.Pattern != nil {
		p.sb.WriteString(" @ ")
		p.pattern(c.Pattern)
	}
	if c.Init != nil {
		p.sb.WriteString(" = ")
		p.expr(c.Init, PrecLowest)
	}
}

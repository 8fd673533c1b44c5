package syntax

import (
	"strings"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// ParseInvocation reads the inside of a single tri! invocation, without the
// surrounding "tri!(" and ")".
func ParseInvocation(file, src string, opts ...Option) (*ir.Descriptor, error) {
	p, err := newParser(file, src, opts)
	if err != nil {
		return nil, err
	}
	d, err := p.parseInvocation(p.tok().Pos, "")
	if err != nil {
		return nil, err
	}
	p.accept(";")
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return d, nil
}

// parseTri reads tri!( ... ) or tri!{ ... }.
func (p *parser) parseTri() (ir.Expr, error) {
	at := p.advance().Pos // tri
	p.advance()           // !

	var close string
	switch {
	case p.accept("("):
		close = ")"
	case p.accept("{"):
		close = "}"
	default:
		return nil, p.unexpected("\"(\" or \"{\" after tri!")
	}

	d, err := p.parseInvocation(at, close)
	if err != nil {
		return nil, err
	}
	p.accept(";")
	if _, err := p.expect(close); err != nil {
		return nil, err
	}
	return &ir.Tri{At: at, Desc: d}, nil
}

// parseInvocation reads Expr "=>" Shape TriOp Trailing. close is the token
// that ends the invocation, or "" when it runs to end of input.
func (p *parser) parseInvocation(at ir.Pos, close string) (*ir.Descriptor, error) {
	scrutinee, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("=>"); err != nil {
		return nil, err
	}

	d := &ir.Descriptor{At: at, Scrutinee: scrutinee}
	shape, captures, err := p.parseShape()
	if err != nil {
		return nil, err
	}
	d.Shape = shape
	d.Captures = captures

	opTok := p.tok()
	if opTok.Kind != TriOp {
		return nil, p.unknownOperator(close)
	}
	p.advance()
	op, _ := ir.OperatorFromToken(opTok.Text)
	d.Operator = op

	if p.atInvocationEnd(close) {
		return nil, errorf(opTok.Pos, ErrTrailingArity,
			"operator %s requires a trailing expression", opTok.Text)
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		d.Trailing = append(d.Trailing, e)
		if !p.accept(",") || p.atInvocationEnd(close) {
			break
		}
	}
	return d, nil
}

func (p *parser) atInvocationEnd(close string) bool {
	t := p.tok()
	if t.Kind == EOF {
		return true
	}
	if t.Kind != Punct {
		return false
	}
	return t.Text == ";" || (close != "" && t.Text == close)
}

// unknownOperator reports the token run found where an operator belongs.
// Adjacent punctuation is joined so "<<" is reported whole.
func (p *parser) unknownOperator(close string) *Error {
	t := p.tok()
	if p.atInvocationEnd(close) {
		return errorf(t.Pos, ErrSyntax, "expected tri operator (one of %s), found %s",
			operatorList(), t)
	}
	if t.Kind != Punct {
		return errorf(t.Pos, ErrUnknownOperator, "unknown tri operator %s; want one of %s",
			t, operatorList())
	}
	text := t.Text
	end := t.End
	for i := p.pos + 1; i < len(p.toks); i++ {
		next := p.toks[i]
		if next.Kind != Punct && next.Kind != TriOp {
			break
		}
		if next.Pos.Line != t.Pos.Line || next.Pos.Col != end {
			break
		}
		text += next.Text
		end = next.End
	}
	return errorf(t.Pos, ErrUnknownOperator, "unknown tri operator %q; want one of %s",
		text, operatorList())
}

func operatorList() string {
	toks := make([]string, len(ir.Operators))
	for i, op := range ir.Operators {
		toks[i] = op.Token()
	}
	return strings.Join(toks, " ")
}

// parseShape reads the literal-pattern form or a variant path with optional
// capture slots.
func (p *parser) parseShape() (ir.Shape, []ir.Capture, error) {
	t := p.tok()
	if p.accept("[") {
		shape := ir.Shape{At: t.Pos, Kind: ir.ShapeLiteral}
		for !p.is("]") {
			pat, err := p.parsePattern()
			if err != nil {
				return ir.Shape{}, nil, err
			}
			shape.Patterns = append(shape.Patterns, pat)
			if !p.accept(",") {
				break
			}
		}
		if _, err := p.expect("]"); err != nil {
			return ir.Shape{}, nil, err
		}
		if len(shape.Patterns) == 0 {
			return ir.Shape{}, nil, errorf(t.Pos, ErrSyntax, "literal shape needs at least one pattern")
		}
		return shape, nil, nil
	}

	first, err := p.expectIdent()
	if err != nil {
		return ir.Shape{}, nil, errorf(t.Pos, ErrSyntax, "expected variant path or [patterns] after =>, found %s", t)
	}
	shape := ir.Shape{At: t.Pos, Kind: ir.ShapeVariant, Path: []string{first.Text}}
	for p.accept("::") {
		seg, err := p.expectIdent()
		if err != nil {
			return ir.Shape{}, nil, err
		}
		shape.Path = append(shape.Path, seg.Text)
	}

	var close string
	switch {
	case p.accept("("):
		shape.Delim, close = ir.DelimParen, ")"
	case p.accept("["):
		shape.Delim, close = ir.DelimBracket, "]"
	default:
		return shape, nil, nil
	}

	var captures []ir.Capture
	for !p.is(close) {
		c, err := p.parseSlot()
		if err != nil {
			return ir.Shape{}, nil, err
		}
		captures = append(captures, c)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(close); err != nil {
		return ir.Shape{}, nil, err
	}
	return shape, captures, nil
}

// parseSlot reads one capture slot. A slot is a pattern with an optional
// initial value; a top-level binding makes it a fresh or set slot, anything
// else is a discard slot.
func (p *parser) parseSlot() (ir.Capture, error) {
	at := p.tok().Pos
	pat, err := p.parsePattern()
	if err != nil {
		return ir.Capture{}, err
	}

	var c ir.Capture
	switch pat := pat.(type) {
	case *ir.PBind:
		c = ir.Capture{At: at, Mode: ir.BindFresh, Name: pat.Name, Mut: pat.Mut, Pattern: pat.Sub}
	case *ir.PSet:
		c = ir.Capture{At: at, Mode: ir.BindSet, Name: pat.Name, Pattern: pat.Sub}
	default:
		c = ir.Capture{At: at, Mode: ir.BindDiscard, Pattern: pat}
	}

	if p.is("=") {
		eq := p.advance()
		if c.Mode == ir.BindDiscard {
			return ir.Capture{}, errorf(eq.Pos, ErrSyntax, "initial value needs a binding slot")
		}
		init, err := p.parseExpr()
		if err != nil {
			return ir.Capture{}, err
		}
		c.Init = init
	}
	return c, nil
}

package syntax

import (
	"strconv"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// parsePattern reads one pattern. A bare identifier is a binding; the compiler
// later turns bindings that name unit variants into variant patterns.
func (p *parser) parsePattern() (ir.Pattern, error) {
	t := p.tok()

	switch {
	case t.Kind == Punct && (t.Text == ".." || t.Text == "..="):
		p.advance()
		hi, err := p.parseRangeBound()
		if err != nil {
			return nil, err
		}
		return &ir.PRange{At: t.Pos, Hi: hi, Inclusive: t.Text == "..="}, nil

	case t.Kind == Int || t.Kind == String || (t.Kind == Punct && t.Text == "-"):
		lo, err := p.parseRangeBound()
		if err != nil {
			return nil, err
		}
		return p.finishLiteralPattern(t.Pos, lo)

	case t.Kind == Punct && t.Text == "(":
		return p.parseTuplePattern()

	case t.Kind == Ident:
		return p.parseIdentPattern()
	}
	return nil, p.unexpected("pattern")
}

// finishLiteralPattern turns a leading literal into a range when ".." follows.
func (p *parser) finishLiteralPattern(at ir.Pos, lo ir.Value) (ir.Pattern, error) {
	if !p.is("..") && !p.is("..=") {
		return &ir.PLit{At: at, Value: lo}, nil
	}
	inclusive := p.advance().Text == "..="
	if !inclusive && !p.startsRangeBound() {
		return &ir.PRange{At: at, Lo: lo}, nil
	}
	hi, err := p.parseRangeBound()
	if err != nil {
		return nil, err
	}
	if _, ok := ir.Compare(lo, hi); !ok {
		return nil, errorf(at, ErrSyntax, "range bounds %s and %s have different types", lo, hi)
	}
	return &ir.PRange{At: at, Lo: lo, Hi: hi, Inclusive: inclusive}, nil
}

func (p *parser) startsRangeBound() bool {
	t := p.tok()
	return t.Kind == Int || t.Kind == String || (t.Kind == Punct && t.Text == "-")
}

func (p *parser) parseRangeBound() (ir.Value, error) {
	t := p.tok()
	switch {
	case t.Kind == String:
		p.advance()
		return ir.Str(t.Text), nil
	case t.Kind == Int:
		p.advance()
		n, _ := strconv.ParseInt(t.Text, 10, 64)
		return ir.Int(n), nil
	case t.Kind == Punct && t.Text == "-":
		p.advance()
		num := p.tok()
		if num.Kind != Int {
			return nil, p.unexpected("integer after \"-\"")
		}
		p.advance()
		n, err := strconv.ParseInt("-"+num.Text, 10, 64)
		if err != nil {
			return nil, errorf(num.Pos, ErrSyntax, "integer -%s out of range", num.Text)
		}
		return ir.Int(n), nil
	}
	return nil, p.unexpected("literal")
}

func (p *parser) parseTuplePattern() (ir.Pattern, error) {
	open := p.advance()
	if p.accept(")") {
		return &ir.PLit{At: open.Pos, Value: ir.Unit{}}, nil
	}
	first, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if p.accept(")") {
		return first, nil
	}
	if _, err := p.expect(","); err != nil {
		return nil, err
	}
	elems := []ir.Pattern{first}
	for !p.is(")") {
		e, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return &ir.PTuple{At: open.Pos, Elems: elems}, nil
}

func (p *parser) parseIdentPattern() (ir.Pattern, error) {
	t := p.tok()
	switch t.Text {
	case "true", "false":
		p.advance()
		return &ir.PLit{At: t.Pos, Value: ir.Bool(t.Text == "true")}, nil
	case "_":
		p.advance()
		return &ir.PWild{At: t.Pos}, nil
	case "mut":
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return p.finishBinding(&ir.PBind{At: t.Pos, Name: name.Text, Mut: true})
	case "set":
		if next := p.peekAt(1); next.Kind == Ident && !IsKeyword(next.Text) {
			p.advance()
			name := p.advance()
			set := &ir.PSet{At: t.Pos, Name: name.Text}
			if p.accept("@") {
				sub, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				set.Sub = sub
			}
			return set, nil
		}
	}
	if IsKeyword(t.Text) {
		return nil, p.unexpected("pattern")
	}

	p.advance()
	segs := []string{t.Text}
	for p.accept("::") {
		seg, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg.Text)
	}

	if len(segs) == 1 && !p.is("(") {
		return p.finishBinding(&ir.PBind{At: t.Pos, Name: t.Text})
	}

	v := &ir.PVariant{At: t.Pos, Path: joinPath(segs)}
	if p.accept("(") {
		for !p.is(")") {
			arg, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			v.Args = append(v.Args, arg)
			if !p.accept(",") {
				break
			}
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (p *parser) finishBinding(b *ir.PBind) (ir.Pattern, error) {
	if p.accept("@") {
		sub, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		b.Sub = sub
	}
	return b, nil
}

func joinPath(segs []string) string {
	out := segs[0]
	for _, s := range segs[1:] {
		out += "::" + s
	}
	return out
}

package syntax

import (
	"strconv"
	"strings"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// Parse reads a whole source file.
func Parse(file, src string, opts ...Option) (*ir.File, error) {
	p, err := newParser(file, src, opts)
	if err != nil {
		return nil, err
	}
	return p.parseFile()
}

// ParseExpr reads a single expression, as used for standalone snippets.
func ParseExpr(file, src string, opts ...Option) (ir.Expr, error) {
	p, err := newParser(file, src, opts)
	if err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return e, nil
}

type parser struct {
	file string
	toks []Token
	pos  int
}

func newParser(file, src string, opts []Option) (*parser, error) {
	toks, err := Lex(file, src, opts...)
	if err != nil {
		return nil, err
	}
	return &parser{file: file, toks: toks}, nil
}

// ---- token helpers ----

func (p *parser) tok() Token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (p *parser) is(text string) bool {
	t := p.tok()
	return (t.Kind == Punct || t.Kind == TriOp) && t.Text == text
}

func (p *parser) isKeyword(kw string) bool {
	t := p.tok()
	return t.Kind == Ident && t.Text == kw
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(text string) (Token, error) {
	if !p.is(text) {
		return Token{}, p.unexpected(strconv.Quote(text))
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.unexpected(strconv.Quote(kw))
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent() (Token, error) {
	t := p.tok()
	if t.Kind != Ident || IsKeyword(t.Text) {
		return Token{}, p.unexpected("identifier")
	}
	return p.advance(), nil
}

func (p *parser) expectEOF() error {
	if p.tok().Kind != EOF {
		return p.unexpected("end of input")
	}
	return nil
}

func (p *parser) unexpected(want string) *Error {
	t := p.tok()
	return errorf(t.Pos, ErrSyntax, "expected %s, found %s", want, t)
}

// ---- items ----

func (p *parser) parseFile() (*ir.File, error) {
	f := &ir.File{Name: p.file}
	for p.tok().Kind != EOF {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		f.Items = append(f.Items, item)
	}
	return f, nil
}

func (p *parser) parseItem() (ir.Item, error) {
	switch {
	case p.isKeyword("fn"):
		return p.parseFn()
	case p.isKeyword("enum"):
		return p.parseEnum()
	}
	return nil, p.unexpected("\"fn\" or \"enum\"")
}

func (p *parser) parseFn() (*ir.FnDecl, error) {
	at := p.advance().Pos
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	fn := &ir.FnDecl{At: at, Name: name.Text}
	for !p.is(")") {
		mut := false
		if p.isKeyword("mut") {
			p.advance()
			mut = true
		}
		param, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, ir.Param{Name: param.Text, Mut: mut})
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (p *parser) parseEnum() (*ir.EnumDecl, error) {
	at := p.advance().Pos
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	enum := &ir.EnumDecl{At: at, Name: name.Text}
	for !p.is("}") {
		vname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		v := ir.VariantDecl{At: vname.Pos, Name: vname.Text}
		if p.accept("(") {
			for !p.is(")") {
				// Field types are not checked; only their count matters.
				if _, err := p.expectIdent(); err != nil {
					return nil, err
				}
				v.Arity++
				if !p.accept(",") {
					break
				}
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
		}
		enum.Variants = append(enum.Variants, v)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return enum, nil
}

// ---- statements ----

func (p *parser) parseBlock() (*ir.Block, error) {
	open, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	b := &ir.Block{At: open.Pos}
	for !p.is("}") {
		if p.tok().Kind == EOF {
			return nil, p.unexpected("\"}\"")
		}
		if p.accept(";") {
			continue
		}
		if p.isKeyword("let") {
			s, err := p.parseLet()
			if err != nil {
				return nil, err
			}
			b.Stmts = append(b.Stmts, s)
			continue
		}

		at := p.tok().Pos
		blockLike := p.atBlockLikeStart()
		var e ir.Expr
		if blockLike {
			e, err = p.parseBlockLike()
		} else {
			e, err = p.parseExpr()
		}
		if err != nil {
			return nil, err
		}

		switch {
		case p.accept(";"):
			b.Stmts = append(b.Stmts, &ir.ExprStmt{At: at, X: e})
		case p.is("}"):
			b.Tail = e
		case blockLike || p.endedWithBrace():
			b.Stmts = append(b.Stmts, &ir.ExprStmt{At: at, X: e})
		default:
			return nil, p.unexpected("\";\" or \"}\"")
		}
	}
	p.advance()
	return b, nil
}

// endedWithBrace reports whether the previous token closed a brace form, which
// lets tri! { ... } stand as a statement without a semicolon.
func (p *parser) endedWithBrace() bool {
	if p.pos == 0 {
		return false
	}
	prev := p.toks[p.pos-1]
	return prev.Kind == Punct && prev.Text == "}"
}

func (p *parser) atBlockLikeStart() bool {
	t := p.tok()
	switch {
	case t.Kind == Punct && t.Text == "{":
		return true
	case t.Kind == Label:
		return true
	case t.Kind == Ident:
		switch t.Text {
		case "if", "loop", "while":
			return true
		}
	}
	return false
}

func (p *parser) parseLet() (ir.Stmt, error) {
	at := p.advance().Pos
	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	let := &ir.Let{At: at, Pattern: pat, Value: val}
	if p.isKeyword("else") {
		p.advance()
		els, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		let.Else = els
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return let, nil
}

// ---- expressions ----

func (p *parser) parseExpr() (ir.Expr, error) {
	t := p.tok()
	if t.Kind == Ident && !IsKeyword(t.Text) {
		next := p.peekAt(1)
		if next.Kind == Punct && assignOps[next.Text] {
			p.advance()
			op := p.advance().Text
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &ir.Assign{At: t.Pos, Op: op, Name: t.Text, Value: val}, nil
		}
	}
	return p.parseBinary(ir.PrecOr)
}

func (p *parser) parseBinary(min int) (ir.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.tok()
		if t.Kind != Punct {
			return x, nil
		}
		prec := ir.BinaryPrecedence(t.Text)
		if prec == ir.PrecLowest || prec < min {
			return x, nil
		}
		p.advance()
		y, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		x = &ir.Binary{At: t.Pos, Op: t.Text, X: x, Y: y}
	}
}

func (p *parser) parseUnary() (ir.Expr, error) {
	if p.is("-") || p.is("!") {
		t := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ir.Unary{At: t.Pos, Op: t.Text, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ir.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is("."):
			dot := p.advance()
			t := p.tok()
			if t.Kind != Int {
				return nil, p.unexpected("field index")
			}
			p.advance()
			idx, err := strconv.Atoi(t.Text)
			if err != nil {
				return nil, errorf(t.Pos, ErrSyntax, "field index %s out of range", t.Text)
			}
			x = &ir.Index{At: dot.Pos, X: x, Index: idx}
		case p.is("("):
			name, ok := calleeName(x)
			if !ok {
				return nil, errorf(p.tok().Pos, ErrSyntax, "only named functions and variants can be called")
			}
			args, err := p.parseExprList("(", ")")
			if err != nil {
				return nil, err
			}
			x = &ir.Call{At: x.Position(), Func: name, Args: args}
		default:
			return x, nil
		}
	}
}

func calleeName(x ir.Expr) (string, bool) {
	switch x := x.(type) {
	case *ir.Ident:
		return x.Name, true
	case *ir.PathExpr:
		return strings.Join(x.Segments, "::"), true
	}
	return "", false
}

func (p *parser) parseExprList(open, close string) ([]ir.Expr, error) {
	if _, err := p.expect(open); err != nil {
		return nil, err
	}
	var list []ir.Expr
	for !p.is(close) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(close); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *parser) parsePrimary() (ir.Expr, error) {
	t := p.tok()
	switch t.Kind {
	case Int:
		p.advance()
		n, _ := strconv.ParseInt(t.Text, 10, 64)
		return &ir.Lit{At: t.Pos, Value: ir.Int(n)}, nil
	case String:
		p.advance()
		return &ir.Lit{At: t.Pos, Value: ir.Str(t.Text)}, nil
	case Label:
		return p.parseBlockLike()
	case Punct:
		switch t.Text {
		case "(":
			return p.parseParen()
		case "{":
			return p.parseBlock()
		}
	case Ident:
		return p.parseIdentExpr()
	}
	return nil, p.unexpected("expression")
}

func (p *parser) parseParen() (ir.Expr, error) {
	open := p.advance()
	if p.accept(")") {
		return &ir.Lit{At: open.Pos, Value: ir.Unit{}}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.accept(")") {
		return first, nil
	}
	if _, err := p.expect(","); err != nil {
		return nil, err
	}
	elems := []ir.Expr{first}
	for !p.is(")") {
		e, err := p.parseExpr()
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
	return &ir.TupleExpr{At: open.Pos, Elems: elems}, nil
}

func (p *parser) parseIdentExpr() (ir.Expr, error) {
	t := p.tok()
	switch t.Text {
	case "true", "false":
		p.advance()
		return &ir.Lit{At: t.Pos, Value: ir.Bool(t.Text == "true")}, nil
	case "if", "loop", "while":
		return p.parseBlockLike()
	case "break":
		p.advance()
		br := &ir.Break{At: t.Pos}
		if p.tok().Kind == Label {
			br.Label = p.advance().Text
		}
		if p.startsExpr() {
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			br.Value = v
		}
		return br, nil
	case "continue":
		p.advance()
		c := &ir.Continue{At: t.Pos}
		if p.tok().Kind == Label {
			c.Label = p.advance().Text
		}
		return c, nil
	case "return":
		p.advance()
		r := &ir.Return{At: t.Pos}
		if p.startsExpr() {
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			r.Value = v
		}
		return r, nil
	case "tri":
		if next := p.peekAt(1); next.Kind == Punct && next.Text == "!" {
			return p.parseTri()
		}
	}
	if IsKeyword(t.Text) {
		return nil, p.unexpected("expression")
	}

	p.advance()
	if !p.is("::") {
		return &ir.Ident{At: t.Pos, Name: t.Text}, nil
	}
	segs := []string{t.Text}
	for p.accept("::") {
		seg, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg.Text)
	}
	return &ir.PathExpr{At: t.Pos, Segments: segs}, nil
}

// startsExpr reports whether the current token can begin an expression, used
// to decide if break and return carry a value.
func (p *parser) startsExpr() bool {
	t := p.tok()
	switch t.Kind {
	case EOF, TriOp:
		return false
	case Punct:
		switch t.Text {
		case "(", "{", "-", "!":
			return true
		}
		return false
	case Ident:
		switch t.Text {
		case "else":
			return false
		}
	}
	return true
}

func (p *parser) parseBlockLike() (ir.Expr, error) {
	t := p.tok()
	if t.Kind == Punct && t.Text == "{" {
		return p.parseBlock()
	}

	label := ""
	at := t.Pos
	if t.Kind == Label {
		label = p.advance().Text
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		if !p.isKeyword("loop") && !p.isKeyword("while") {
			return nil, p.unexpected("\"loop\" or \"while\" after label")
		}
	}

	switch {
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("loop"):
		p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ir.Loop{At: at, Label: label, Body: body}, nil
	case p.isKeyword("while"):
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ir.While{At: at, Label: label, Cond: cond, Body: body}, nil
	}
	return nil, p.unexpected("block")
}

func (p *parser) parseIf() (ir.Expr, error) {
	at := p.advance().Pos
	if p.isKeyword("let") {
		p.advance()
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("="); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		then, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		els, err := p.parseElse()
		if err != nil {
			return nil, err
		}
		return &ir.IfLet{At: at, Pattern: pat, Value: val, Then: then, Else: els}, nil
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	els, err := p.parseElse()
	if err != nil {
		return nil, err
	}
	return &ir.If{At: at, Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) parseElse() (ir.Expr, error) {
	if !p.isKeyword("else") {
		return nil, nil
	}
	p.advance()
	if p.isKeyword("if") {
		return p.parseIf()
	}
	return p.parseBlock()
}

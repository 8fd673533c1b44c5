package syntax

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// Option configures reading.
type Option func(*config)

type config struct {
	allowHygienic bool
}

// AllowHygienic accepts identifiers with the reserved hygiene prefix. It is
// meant for reading expander output back in; user source never needs it.
func AllowHygienic() Option {
	return func(c *config) { c.allowHygienic = true }
}

type lexer struct {
	file string
	src  string
	off  int
	line int
	col  int
	cfg  config
}

// Lex splits src into tokens, ending with a single EOF token. The source is
// normalized to NFC first so identifiers and strings compare canonically.
func Lex(file, src string, opts ...Option) ([]Token, error) {
	l := &lexer{file: file, src: ir.NormalizeText(src), line: 1, col: 1}
	for _, opt := range opts {
		opt(&l.cfg)
	}

	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

func (l *lexer) pos() ir.Pos {
	return ir.Pos{File: l.file, Line: l.line, Col: l.col}
}

func (l *lexer) peek() rune {
	if l.off >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	return r
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpaceAndComments() {
	for l.off < len(l.src) {
		r := l.peek()
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case strings.HasPrefix(l.src[l.off:], "//"):
			for l.off < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexer) next() (Token, error) {
	l.skipSpaceAndComments()
	start := l.pos()
	if l.off >= len(l.src) {
		return Token{Kind: EOF, Pos: start, End: start.Col}, nil
	}

	r := l.peek()
	switch {
	case isIdentStart(r):
		return l.ident(start)
	case r >= '0' && r <= '9':
		return l.number(start)
	case r == '"':
		return l.str(start)
	case r == '\'':
		return l.label(start)
	}
	return l.punct(start)
}

func (l *lexer) ident(start ir.Pos) (Token, error) {
	begin := l.off
	for l.off < len(l.src) && isIdentPart(l.peek()) {
		l.advance()
	}
	text := l.src[begin:l.off]
	if strings.HasPrefix(text, ir.HygienePrefix) && !l.cfg.allowHygienic {
		return Token{}, errorf(start, ErrSyntax,
			"identifier %q uses the reserved prefix %q", text, ir.HygienePrefix)
	}
	return Token{Kind: Ident, Text: text, Pos: start, End: l.col}, nil
}

func (l *lexer) number(start ir.Pos) (Token, error) {
	begin := l.off
	for l.off < len(l.src) {
		r := l.peek()
		if (r < '0' || r > '9') && r != '_' {
			break
		}
		l.advance()
	}
	raw := l.src[begin:l.off]
	if l.off < len(l.src) && isIdentStart(l.peek()) {
		return Token{}, errorf(start, ErrSyntax, "invalid digit in number %q", raw+string(l.peek()))
	}
	digits := strings.ReplaceAll(raw, "_", "")
	if _, err := strconv.ParseInt(digits, 10, 64); err != nil {
		return Token{}, errorf(start, ErrSyntax, "integer %s out of range", raw)
	}
	return Token{Kind: Int, Text: digits, Pos: start, End: l.col}, nil
}

func (l *lexer) str(start ir.Pos) (Token, error) {
	begin := l.off
	l.advance() // opening quote
	for {
		if l.off >= len(l.src) {
			return Token{}, errorf(start, ErrSyntax, "unterminated string")
		}
		r := l.advance()
		if r == '\\' {
			if l.off >= len(l.src) {
				return Token{}, errorf(start, ErrSyntax, "unterminated string")
			}
			l.advance()
			continue
		}
		if r == '"' {
			break
		}
	}
	val, err := strconv.Unquote(l.src[begin:l.off])
	if err != nil {
		return Token{}, errorf(start, ErrSyntax, "invalid string literal %s", l.src[begin:l.off])
	}
	return Token{Kind: String, Text: val, Pos: start, End: l.col}, nil
}

func (l *lexer) label(start ir.Pos) (Token, error) {
	l.advance() // quote
	if l.off >= len(l.src) || !isIdentStart(l.peek()) {
		return Token{}, errorf(start, ErrSyntax, "expected label name after '")
	}
	begin := l.off
	for l.off < len(l.src) && isIdentPart(l.peek()) {
		l.advance()
	}
	return Token{Kind: Label, Text: l.src[begin:l.off], Pos: start, End: l.col}, nil
}

func (l *lexer) punct(start ir.Pos) (Token, error) {
	rest := l.src[l.off:]
	take := func(kind Kind, text string) Token {
		for range text {
			l.advance()
		}
		return Token{Kind: kind, Text: text, Pos: start, End: l.col}
	}

	for _, p := range punct3 {
		if strings.HasPrefix(rest, p) {
			return take(Punct, p), nil
		}
	}
	for _, p := range triOps {
		if strings.HasPrefix(rest, p) {
			return take(TriOp, p), nil
		}
	}
	for _, p := range punct2 {
		if strings.HasPrefix(rest, p) {
			return take(Punct, p), nil
		}
	}
	r := l.peek()
	if strings.ContainsRune(punct1, r) {
		return take(Punct, string(r)), nil
	}
	return Token{}, errorf(start, ErrSyntax, "unexpected character %q", r)
}

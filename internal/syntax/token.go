package syntax

import (
	"fmt"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Int
	String
	Label
	Punct
	TriOp
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case Int:
		return "integer"
	case String:
		return "string"
	case Label:
		return "label"
	case Punct:
		return "punctuation"
	case TriOp:
		return "tri operator"
	}
	return "unknown"
}

// Token is one lexeme. For String tokens Text holds the unquoted value; for
// Label tokens it holds the name without the leading quote.
type Token struct {
	Kind Kind
	Text string
	Pos  ir.Pos
	// End is the column just past the token, used to detect adjacent tokens.
	End int
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case String:
		return fmt.Sprintf("%q", t.Text)
	case Label:
		return "'" + t.Text
	}
	return fmt.Sprintf("%q", t.Text)
}

// keywords cannot be used as identifiers. "set" and "tri" are contextual and
// deliberately absent.
var keywords = map[string]bool{
	"fn":       true,
	"enum":     true,
	"let":      true,
	"mut":      true,
	"if":       true,
	"else":     true,
	"loop":     true,
	"while":    true,
	"break":    true,
	"continue": true,
	"return":   true,
	"true":     true,
	"false":    true,
}

// IsKeyword reports whether s is reserved.
func IsKeyword(s string) bool { return keywords[s] }

// Multi-character punctuation, longest first within each length.
var (
	punct3 = []string{"..="}
	punct2 = []string{
		"::", "..", "=>", "==", "!=", "<=", ">=", "&&", "||",
		"+=", "-=", "*=", "/=", "%=",
	}
	triOps = []string{"<>", "->", "#>", "%>", ">>"}
	punct1 = "()[]{},;:.@=!?+-*/%<>"
)

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
}

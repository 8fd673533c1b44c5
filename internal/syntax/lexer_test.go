package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func texts(toks []Token) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Kind == EOF {
			continue
		}
		out = append(out, t.Text)
	}
	return out
}

func TestLexTriOperatorsGreedy(t *testing.T) {
	toks, err := Lex("t.tri", "a <> b -> c #> d %> e >> f")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "<>", "b", "->", "c", "#>", "d", "%>", "e", ">>", "f"}, texts(toks))
	for _, i := range []int{1, 3, 5, 7, 9} {
		assert.Equal(t, TriOp, toks[i].Kind, toks[i].Text)
	}
}

func TestLexPunctuation(t *testing.T) {
	toks, err := Lex("t.tri", "0..=9 a::B x += 1 <= >= != == && ||")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"0", "..=", "9", "a", "::", "B", "x", "+=", "1", "<=", ">=", "!=", "==", "&&", "||"},
		texts(toks))
}

func TestLexRangeIsNotFieldAccess(t *testing.T) {
	toks, err := Lex("t.tri", "1..5 x.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "..", "5", "x", ".", "0"}, texts(toks))
}

func TestLexLiterals(t *testing.T) {
	toks, err := Lex("t.tri", `1_000 "a\tb" 'outer`)
	require.NoError(t, err)

	assert.Equal(t, []Kind{Int, String, Label, EOF}, kinds(toks))
	assert.Equal(t, "1000", toks[0].Text)
	assert.Equal(t, "a\tb", toks[1].Text)
	assert.Equal(t, "outer", toks[2].Text)
}

func TestLexPositions(t *testing.T) {
	toks, err := Lex("t.tri", "fn\n  main")
	require.NoError(t, err)

	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 1, toks[0].Pos.Col)
	assert.Equal(t, 2, toks[1].Pos.Line)
	assert.Equal(t, 3, toks[1].Pos.Col)
	assert.Equal(t, "t.tri", toks[1].Pos.File)
}

func TestLexSkipsComments(t *testing.T) {
	toks, err := Lex("t.tri", "a // comment <> here\nb")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, texts(toks))
}

func TestLexNormalizesIdentifiers(t *testing.T) {
	composed, err := Lex("t.tri", "caf\u00e9")
	require.NoError(t, err)
	decomposed, err := Lex("t.tri", "cafe\u0301")
	require.NoError(t, err)

	assert.Equal(t, composed[0].Text, decomposed[0].Text)
}

func TestLexRejectsHygienicPrefix(t *testing.T) {
	_, err := Lex("t.tri", "let __tri_0001 = 1;")
	require.Error(t, err)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrSyntax, se.Code)
	assert.Contains(t, se.Message, "reserved prefix")

	_, err = Lex("t.tri", "let __tri_0001 = 1;", AllowHygienic())
	assert.NoError(t, err)
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unterminated string", `"abc`, "unterminated string"},
		{"stray character", "a $ b", "unexpected character"},
		{"overflow", "99999999999999999999", "out of range"},
		{"bad digit", "12ab", "invalid digit"},
		{"empty label", "' x", "label name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex("t.tri", tt.src)
			require.Error(t, err)
			assert.True(t, IsSyntaxError(err))
			assert.Contains(t, err.Error(), tt.msg)
			assert.Contains(t, err.Error(), "[E001]")
		})
	}
}

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ident(name string) *Ident { return &Ident{Name: name} }

func lit(v Value) *Lit { return &Lit{Value: v} }

func TestFormatExprPrecedence(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{
			name: "mul binds tighter than add",
			expr: &Binary{Op: "+", X: ident("a"), Y: &Binary{Op: "*", X: ident("b"), Y: ident("c")}},
			want: "a + b * c",
		},
		{
			name: "parens when lower precedence on the left",
			expr: &Binary{Op: "*", X: &Binary{Op: "+", X: ident("a"), Y: ident("b")}, Y: ident("c")},
			want: "(a + b) * c",
		},
		{
			name: "right operand of same precedence is parenthesized",
			expr: &Binary{Op: "-", X: ident("a"), Y: &Binary{Op: "-", X: ident("b"), Y: ident("c")}},
			want: "a - (b - c)",
		},
		{
			name: "unary over binary",
			expr: &Unary{Op: "!", X: &Binary{Op: "&&", X: ident("a"), Y: ident("b")}},
			want: "!(a && b)",
		},
		{
			name: "index of call",
			expr: &Index{X: &Call{Func: "pair", Args: []Expr{lit(Int(1))}}, Index: 0},
			want: "pair(1).0",
		},
		{
			name: "one tuple",
			expr: &TupleExpr{Elems: []Expr{ident("x")}},
			want: "(x,)",
		},
		{
			name: "compound assignment",
			expr: &Assign{Op: "+=", Name: "n", Value: lit(Int(1))},
			want: "n += 1",
		},
		{
			name: "labeled break with value",
			expr: &Break{Label: "outer", Value: ident("v")},
			want: "break 'outer v",
		},
		{
			name: "unit construct has no parens",
			expr: &Construct{Path: "None", Variant: "None"},
			want: "None",
		},
		{
			name: "string literal is quoted",
			expr: lit(Str("hi")),
			want: `"hi"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatExpr(tt.expr))
		})
	}
}

func TestFormatBlocksAndStatements(t *testing.T) {
	body := &Block{
		Stmts: []Stmt{
			&Let{
				Pattern: &PVariant{Path: "Some", Args: []Pattern{&PBind{Name: "x", Mut: true}}},
				Value:   ident("opt"),
				Else:    &Block{Stmts: []Stmt{&ExprStmt{X: &Return{Value: lit(Int(0))}}}},
			},
			&ExprStmt{X: &Loop{Label: "a", Body: &Block{Stmts: []Stmt{&ExprStmt{X: &Break{}}}}}},
		},
		Tail: ident("x"),
	}
	fn := &FnDecl{Name: "f", Params: []Param{{Name: "opt"}}, Body: body}

	want := `fn f(opt) {
    let Some(mut x) = opt else {
        return 0;
    };
    'a: loop {
        break;
    }
    x
}
`
	assert.Equal(t, want, FormatFile(&File{Items: []Item{fn}}))
}

func TestFormatEnum(t *testing.T) {
	enum := &EnumDecl{Name: "Shape", Variants: []VariantDecl{
		{Name: "Empty"},
		{Name: "Pair", Arity: 2},
	}}

	want := `enum Shape {
    Empty,
    Pair(_, _),
}
`
	assert.Equal(t, want, FormatFile(&File{Items: []Item{enum}}))
}

func TestFormatPattern(t *testing.T) {
	tests := []struct {
		name string
		pat  Pattern
		want string
	}{
		{"wildcard", &PWild{}, "_"},
		{"inclusive range", &PRange{Lo: Int(1), Hi: Int(9), Inclusive: true}, "1..=9"},
		{"open range", &PRange{Hi: Int(0)}, "..0"},
		{"guarded bind", &PBind{Name: "n", Sub: &PRange{Lo: Int(0), Hi: Int(10)}}, "n @ 0..10"},
		{"set", &PSet{Name: "acc"}, "set acc"},
		{"tuple", &PTuple{Elems: []Pattern{&PLit{Value: Int(1)}, &PWild{}}}, "(1, _)"},
		{"variant", &PVariant{Path: "Shape::Pair", Args: []Pattern{&PBind{Name: "a"}, &PWild{}}}, "Shape::Pair(a, _)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPattern(tt.pat))
		})
	}
}

func TestFormatDescriptor(t *testing.T) {
	d := &Descriptor{
		Scrutinee: ident("opt"),
		Shape:     Shape{Kind: ShapeVariant, Path: []string{"Some"}, Delim: DelimBracket},
		Captures: []Capture{
			{Mode: BindFresh, Name: "x", Mut: true, Init: lit(Int(0))},
		},
		Operator: OpWhile,
		Trailing: []Expr{&Assign{Op: "+=", Name: "x", Value: lit(Int(1))}},
	}
	assert.Equal(t, "tri!(opt => Some[mut x = 0] >> x += 1)", FormatDescriptor(d))

	lits := &Descriptor{
		Scrutinee: ident("n"),
		Shape:     Shape{Kind: ShapeLiteral, Patterns: []Pattern{&PLit{Value: Int(1)}, &PWild{}}},
		Operator:  OpFail,
		Trailing:  []Expr{lit(Str("bad"))},
	}
	assert.Equal(t, `tri!(n => [1, _] -> "bad")`, FormatDescriptor(lits))
}

func TestOperatorTokens(t *testing.T) {
	for _, op := range Operators {
		got, ok := OperatorFromToken(op.Token())
		assert.True(t, ok, op.String())
		assert.Equal(t, op, got)
	}

	_, ok := OperatorFromToken("=>")
	assert.False(t, ok)
}

package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

func TestParseValue(t *testing.T) {
	cat := pairCatalog(t)
	tests := []struct {
		src  string
		want ir.Value
	}{
		{`42`, ir.Int(42)},
		{`-7`, ir.Int(-7)},
		{`true`, ir.Bool(true)},
		{`"a\"b"`, ir.Str(`a"b`)},
		{`()`, ir.Unit{}},
		{`(1, "x")`, ir.Tuple{ir.Int(1), ir.Str("x")}},
		{`(1,)`, ir.Tuple{ir.Int(1)}},
		{`None`, ir.None()},
		{`Some(Ok(3))`, ir.Some(ir.Ok(ir.Int(3)))},
		{`Pair::Both(1, Neither)`, &ir.Variant{Name: "Both", Fields: []ir.Value{ir.Int(1), &ir.Variant{Name: "Neither"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseValue(tt.src, cat)
			require.NoError(t, err)
			assert.True(t, ir.Equal(tt.want, got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseValueRoundTrip(t *testing.T) {
	cat := pairCatalog(t)
	values := []ir.Value{
		ir.Str("line\nbreak"),
		ir.Tuple{ir.Some(ir.Str("é")), ir.Err(ir.Unit{}), ir.Int(-3)},
		&ir.Variant{Name: "Both", Fields: []ir.Value{ir.Bool(false), ir.None()}},
	}
	for _, v := range values {
		got, err := ParseValue(v.String(), cat)
		require.NoError(t, err, v.String())
		assert.True(t, ir.Equal(v, got), "want %s, got %s", v, got)
	}
}

func TestParseValueErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"expression", `1 + 2`},
		{"variable", `x`},
		{"wrong arity", `Some(1, 2)`},
		{"wrong enum", `Option::Ok(1)`},
		{"syntax", `(1,`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseValue(tt.src, nil)
			assert.Error(t, err)
		})
	}
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

func TestMatch_Literals(t *testing.T) {
	tests := []struct {
		name  string
		p     ir.Pattern
		v     ir.Value
		match bool
	}{
		{"equal int", &ir.PLit{Value: ir.Int(10)}, ir.Int(10), true},
		{"other int", &ir.PLit{Value: ir.Int(10)}, ir.Int(9), false},
		{"int against string", &ir.PLit{Value: ir.Int(1)}, ir.Str("1"), false},
		{"bool", &ir.PLit{Value: ir.Bool(true)}, ir.Bool(true), true},
		{"wildcard", &ir.PWild{}, ir.None(), true},
		{"inclusive upper bound", &ir.PRange{Lo: ir.Int(0), Hi: ir.Int(9), Inclusive: true}, ir.Int(9), true},
		{"exclusive upper bound", &ir.PRange{Lo: ir.Int(0), Hi: ir.Int(9)}, ir.Int(9), false},
		{"below range", &ir.PRange{Lo: ir.Int(0), Hi: ir.Int(9)}, ir.Int(-1), false},
		{"open range", &ir.PRange{Lo: ir.Int(100)}, ir.Int(1 << 40), true},
		{"string range", &ir.PRange{Lo: ir.Str("a"), Hi: ir.Str("m")}, ir.Str("hello"), true},
		{"range against other type", &ir.PRange{Lo: ir.Int(0)}, ir.Str("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs, ok := match(tt.p, tt.v)
			assert.Equal(t, tt.match, ok)
			assert.Empty(t, bs)
		})
	}
}

func TestMatch_VariantBindsInOrder(t *testing.T) {
	p := &ir.PVariant{Path: "Shape::Rect", Args: []ir.Pattern{
		&ir.PBind{Name: "w"},
		&ir.PBind{Name: "h", Mut: true},
	}}
	v := &ir.Variant{Name: "Rect", Fields: []ir.Value{ir.Int(3), ir.Int(4)}}

	bs, ok := match(p, v)
	require.True(t, ok)
	assert.Equal(t, []binding{
		{name: "w", value: ir.Int(3)},
		{name: "h", value: ir.Int(4), mut: true},
	}, bs)
}

func TestMatch_FailureBindsNothing(t *testing.T) {
	// the first element matches and would bind before the second fails
	p := &ir.PTuple{Elems: []ir.Pattern{
		&ir.PBind{Name: "a"},
		&ir.PLit{Value: ir.Int(0)},
	}}

	bs, ok := match(p, ir.Tuple{ir.Int(1), ir.Int(2)})
	assert.False(t, ok)
	assert.Nil(t, bs)
}

func TestMatch_Shapes(t *testing.T) {
	some := &ir.PVariant{Path: "Some", Args: []ir.Pattern{&ir.PWild{}}}

	_, ok := match(some, ir.None())
	assert.False(t, ok, "different variant")

	_, ok = match(some, &ir.Variant{Name: "Some", Fields: []ir.Value{ir.Int(1), ir.Int(2)}})
	assert.False(t, ok, "different field count")

	_, ok = match(&ir.PTuple{Elems: []ir.Pattern{&ir.PWild{}, &ir.PWild{}}}, ir.Tuple{ir.Int(1)})
	assert.False(t, ok, "different tuple length")

	_, ok = match(&ir.PTuple{Elems: []ir.Pattern{&ir.PWild{}}}, ir.Int(1))
	assert.False(t, ok, "not a tuple")
}

func TestMatch_GuardedCaptures(t *testing.T) {
	p := &ir.PBind{Name: "n", Sub: &ir.PRange{Lo: ir.Int(1), Hi: ir.Int(5)}}

	bs, ok := match(p, ir.Int(3))
	require.True(t, ok)
	assert.Equal(t, []binding{{name: "n", value: ir.Int(3)}}, bs)

	_, ok = match(p, ir.Int(5))
	assert.False(t, ok)

	set := &ir.PSet{Name: "total", Sub: &ir.PLit{Value: ir.Int(7)}}
	bs, ok = match(set, ir.Int(7))
	require.True(t, ok)
	assert.Equal(t, []binding{{name: "total", value: ir.Int(7), set: true}}, bs)
}

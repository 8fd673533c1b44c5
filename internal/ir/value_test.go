package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueSealed(t *testing.T) {
	// Verify all types implement Value (compile-time check via assignment)
	var _ Value = Unit{}
	var _ Value = Int(42)
	var _ Value = Bool(true)
	var _ Value = Str("test")
	var _ Value = Tuple{Int(1), Int(2)}
	var _ Value = &Variant{Name: "None"}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		val  Value
		want string
	}{
		{"unit", Unit{}, "()"},
		{"int", Int(-7), "-7"},
		{"bool", Bool(false), "false"},
		{"string is quoted", Str("a\"b"), `"a\"b"`},
		{"pair", Tuple{Int(1), Str("x")}, `(1, "x")`},
		{"one tuple keeps comma", Tuple{Int(1)}, "(1,)"},
		{"unit variant", None(), "None"},
		{"nested variant", Some(Ok(Int(3))), "Some(Ok(3))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.val.String())
		})
	}
}

func TestNewTuple(t *testing.T) {
	assert.Equal(t, Unit{}, NewTuple())
	assert.Equal(t, Int(1), NewTuple(Int(1)))
	assert.Equal(t, Tuple{Int(1), Bool(true)}, NewTuple(Int(1), Bool(true)))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same int", Int(1), Int(1), true},
		{"different int", Int(1), Int(2), false},
		{"int vs string", Int(1), Str("1"), false},
		{"unit", Unit{}, Unit{}, true},
		{"tuples", Tuple{Int(1), Str("a")}, Tuple{Int(1), Str("a")}, true},
		{"tuple length", Tuple{Int(1), Int(2)}, Tuple{Int(1), Int(2), Int(3)}, false},
		{"variants", Some(Int(1)), Some(Int(1)), true},
		{"variant name", Ok(Int(1)), Err(Int(1)), false},
		{"variant field", Some(Int(1)), Some(Int(2)), false},
		{"nil", nil, Int(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestCompare(t *testing.T) {
	c, ok := Compare(Int(1), Int(2))
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = Compare(Str("b"), Str("a"))
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	c, ok = Compare(Int(3), Int(3))
	assert.True(t, ok)
	assert.Equal(t, 0, c)

	_, ok = Compare(Int(1), Str("1"))
	assert.False(t, ok, "mixed types are not comparable")

	_, ok = Compare(Bool(true), Bool(false))
	assert.False(t, ok, "bools are not ordered")
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "int", TypeName(Int(0)))
	assert.Equal(t, "string", TypeName(Str("")))
	assert.Equal(t, "variant", TypeName(None()))
	assert.Equal(t, "tuple", TypeName(Tuple{Int(1), Int(2)}))
	assert.Equal(t, "unit", TypeName(Unit{}))
}

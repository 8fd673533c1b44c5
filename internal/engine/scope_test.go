package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

func TestScope_ShadowingAndLookup(t *testing.T) {
	outer := newScope(nil)
	outer.declare("x", ir.Int(1), false)

	inner := newScope(outer)
	inner.declare("x", ir.Int(2), false)

	sl, ok := inner.lookup("x")
	require.True(t, ok)
	assert.Equal(t, ir.Int(2), sl.value)

	sl, ok = outer.lookup("x")
	require.True(t, ok)
	assert.Equal(t, ir.Int(1), sl.value)

	_, ok = inner.lookup("y")
	assert.False(t, ok)
}

func TestScope_AssignWritesThrough(t *testing.T) {
	outer := newScope(nil)
	outer.declare("n", ir.Int(0), true)
	inner := newScope(outer)

	require.NoError(t, inner.assign(ir.Pos{}, "n", ir.Int(5)))
	sl, _ := outer.lookup("n")
	assert.Equal(t, ir.Int(5), sl.value)
}

func TestScope_AssignErrors(t *testing.T) {
	s := newScope(nil)
	s.declare("fixed", ir.Int(0), false)

	err := s.assign(ir.Pos{Line: 3, Col: 5}, "fixed", ir.Int(1))
	assert.Equal(t, ErrCodeTypeMismatch, CodeOf(err))
	assert.Contains(t, err.Error(), "3:5")

	err = s.assign(ir.Pos{}, "missing", ir.Int(1))
	assert.Equal(t, ErrCodeUndefined, CodeOf(err))
}

func TestScope_Bind(t *testing.T) {
	outer := newScope(nil)
	outer.declare("total", ir.Int(0), true)
	inner := newScope(outer)

	err := inner.bind(ir.Pos{}, []binding{
		{name: "total", value: ir.Int(9), set: true},
		{name: "fresh", value: ir.Str("a"), mut: true},
	})
	require.NoError(t, err)

	sl, _ := outer.lookup("total")
	assert.Equal(t, ir.Int(9), sl.value)
	_, ok := outer.lookup("fresh")
	assert.False(t, ok, "fresh bindings stay in the inner scope")

	sl, ok = inner.lookup("fresh")
	require.True(t, ok)
	assert.True(t, sl.mut)
}

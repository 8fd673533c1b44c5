package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpansionBindings(t *testing.T) {
	res := mustCompile(t, `
fn main(opt, n) {
    let mut total = 0;
    tri!(opt => Some[mut a] <> 0);
    tri!(opt => Some[set total] -> "none");
    let b = tri!(opt => Some(b) <> 1);
    tri!(n => [x @ 0..10] #> return -1);
    tri!(n => [y @ 0..10] %> return -2);
    a + b + x + total
}
`)
	require.Len(t, res.Expansions, 5)

	tests := []Bindings{
		{Escaping: []string{"a"}},
		{Assigned: []string{"total"}},
		{Local: []string{"b"}},
		{Escaping: []string{"x"}},
		{Local: []string{"y"}},
	}
	for i, want := range tests {
		assert.Equal(t, want, res.Expansions[i].Bindings, "expansion %d", i)
	}
}

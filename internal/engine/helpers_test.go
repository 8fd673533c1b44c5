package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EMcConnell20/tri-ton/internal/compiler"
	"github.com/EMcConnell20/tri-ton/internal/ir"
	"github.com/EMcConnell20/tri-ton/internal/syntax"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// compileProgram parses and compiles src with the builtin variants.
func compileProgram(t *testing.T, src string) *ir.Program {
	t.Helper()
	f, err := syntax.Parse("test.tri", src)
	require.NoError(t, err)
	res, err := compiler.Compile(f, nil, compiler.WithLogger(quietLogger()))
	require.NoError(t, err)
	return res.Program
}

func newTestEngine(t *testing.T, src string, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append([]EngineOption{WithLogger(quietLogger())}, opts...)
	return New(compileProgram(t, src), opts...)
}

// callMain runs main and fails the test on any error.
func callMain(t *testing.T, src string, args ...ir.Value) ir.Value {
	t.Helper()
	v, err := newTestEngine(t, src).Call(context.Background(), "main", args...)
	require.NoError(t, err)
	return v
}

// requireValue compares with ir.Equal, which treats a variant with no
// fields the same whether its field slice is nil or empty.
func requireValue(t *testing.T, want, got ir.Value) {
	t.Helper()
	require.NotNil(t, got)
	require.True(t, ir.Equal(want, got), "want %s, got %s", want, got)
}

package compiler

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EMcConnell20/tri-ton/internal/ir"
	"github.com/EMcConnell20/tri-ton/internal/syntax"
)

// quietLogger drops compile diagnostics in tests.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustInvocation(t *testing.T, src string) *ir.Descriptor {
	t.Helper()
	d, err := syntax.ParseInvocation("test.tri", src)
	require.NoError(t, err)
	return d
}

func compileSource(t *testing.T, src string) (*Result, error) {
	t.Helper()
	f, err := syntax.Parse("test.tri", src)
	require.NoError(t, err)
	return Compile(f, nil, WithLogger(quietLogger()))
}

func mustCompile(t *testing.T, src string) *Result {
	t.Helper()
	res, err := compileSource(t, src)
	require.NoError(t, err)
	return res
}

// compileCodes compiles src and returns the codes of the errors it reports.
func compileCodes(t *testing.T, src string) []string {
	t.Helper()
	_, err := compileSource(t, src)
	require.Error(t, err)
	list, ok := AsErrorList(err)
	require.True(t, ok, "expected an ErrorList, got %T", err)
	return list.Codes()
}

// pairCatalog extends the builtins with enum Pair { Both(_, _), Neither }.
func pairCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat := NewCatalog()
	errs := cat.AddEnum("Pair", []ir.VariantDecl{
		{Name: "Both", Arity: 2},
		{Name: "Neither"},
	}, ir.Pos{})
	require.Empty(t, errs)
	return cat
}

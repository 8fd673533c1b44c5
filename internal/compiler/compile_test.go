package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMcConnell20/tri-ton/internal/ir"
	"github.com/EMcConnell20/tri-ton/internal/syntax"
)

func TestCompileDeclarationErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		codes []string
	}{
		{"duplicate function", `fn f() {} fn f() {}`, []string{ErrDuplicateDecl}},
		{"builtin name", `fn len(x) { x }`, []string{ErrDuplicateDecl}},
		{"variant name", `fn Some(x) { x }`, []string{ErrDuplicateDecl}},
		{"duplicate enum", `enum E { A } enum E { B }`, []string{ErrDuplicateDecl}},
		{"duplicate variant", `enum E { A, B } enum F { A }`, []string{ErrDuplicateDecl}},
		{"builtin variant", `enum Maybe { Some(_), Nothing }`, []string{ErrDuplicateDecl}},
		{"duplicate parameter", `fn f(a, a) {}`, []string{ErrDuplicateName}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.codes, compileCodes(t, tt.src))
		})
	}
}

func TestCompileCollectsErrorsInSourceOrder(t *testing.T) {
	src := `fn main(opt) {
    let a = tri!(opt => Some[a, b] <> 0);
    tri!(opt => Some[x = 1] -> 2);
}
`
	_, err := compileSource(t, src)
	list, ok := AsErrorList(err)
	require.True(t, ok)
	assert.Equal(t, []string{ErrArityMismatch, ErrInitOutsideLoop}, list.Codes())
	assert.Equal(t, 2, list[0].Pos.Line)
	assert.Equal(t, 3, list[1].Pos.Line)
}

func TestCompileValidationErrorsSkipResolve(t *testing.T) {
	// undefined_name would be E111, but resolve never runs on a file with
	// invocation errors
	_, err := compileSource(t, `fn main() { undefined_name; tri!(1 => Nope <> 0); }`)
	list, ok := AsErrorList(err)
	require.True(t, ok)
	assert.Equal(t, []string{ErrUnknownVariant}, list.Codes())
}

func TestCompileDoesNotModifyInput(t *testing.T) {
	src := `fn main(opt) {
    tri!(opt => Some[x] <> 0);
    x
}
`
	f, err := syntax.Parse("test.tri", src)
	require.NoError(t, err)
	before := ir.FormatFile(f)

	res, err := Compile(f, nil, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, before, ir.FormatFile(f))
	assert.NotEqual(t, before, ir.FormatFile(res.Program.File))
}

func TestCompileExpandedFileParsesBack(t *testing.T) {
	res := mustCompile(t, `
fn step(n) {
    if n < 10 { Some(n) } else { None }
}

fn main() {
    let v = tri!(step(3) => Some(x) <> 0);
    tri!(step(bar) => Some[mut bar = 0] >> bar += 1);
    v + bar
}
`)
	out := ir.FormatFile(res.Program.File)
	again, err := syntax.Parse("expanded.tri", out, syntax.AllowHygienic())
	require.NoError(t, err)
	assert.Equal(t, out, ir.FormatFile(again))
}

func TestCompileReportsExpansions(t *testing.T) {
	res := mustCompile(t, `
fn main(opt) {
    tri!(opt => Some[x] <> 0);
    let y = tri!(opt => Some(y) <> 1);
    x + y
}
`)
	type row struct {
		Function, Operator, Context string
		Form                        Form
		Line                        int
	}
	var got []row
	for _, e := range res.Expansions {
		got = append(got, row{e.Function, e.Operator, e.Context, e.Form, e.Pos.Line})
	}
	want := []row{
		{"main", "fall", ContextStatement, FormBinding, 3},
		{"main", "fall", ContextExpression, FormValue, 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("expansions mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileUsesProjectCatalog(t *testing.T) {
	f, err := syntax.Parse("test.tri", `fn main(s) { tri!(s => Circle[r] -> "not a circle"); r }`)
	require.NoError(t, err)

	_, err = Compile(f, nil, WithLogger(quietLogger()))
	list, ok := AsErrorList(err)
	require.True(t, ok)
	assert.Equal(t, []string{ErrUnknownVariant}, list.Codes())

	cat := NewCatalog()
	require.Empty(t, cat.AddEnum("Shape", []ir.VariantDecl{{Name: "Circle", Arity: 1}}, ir.Pos{}))
	_, err = Compile(f, cat, WithLogger(quietLogger()))
	require.NoError(t, err)

	// the caller's catalog is not extended by the file's enums
	g, err := syntax.Parse("test.tri", `enum Color { Red } fn main() { Red }`)
	require.NoError(t, err)
	_, err = Compile(g, cat, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.False(t, cat.HasVariant("Red"))
}

func TestCompileWarnsAboutRecursion(t *testing.T) {
	res := mustCompile(t, `
fn even(n) { if n == 0 { true } else { odd(n - 1) } }
fn odd(n) { if n == 0 { false } else { even(n - 1) } }
fn fact(n) { if n == 0 { 1 } else { n * fact(n - 1) } }
fn main() { fact(3) }
`)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, []string{"even", "odd", "even"}, res.Warnings[0].Path)
	assert.Equal(t, []string{"fact", "fact"}, res.Warnings[1].Path)
}

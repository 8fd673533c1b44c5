package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMcConnell20/tri-ton/internal/store"
)

func TestExpandPrintsProgram(t *testing.T) {
	path := writeFile(t, t.TempDir(), "prog.tri", failProgram)

	stdout, _, err := execute(t, "expand", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `return Err("missing");`)
	assert.Contains(t, stdout, "fn main(opt)")
	assert.NotContains(t, stdout, "tri!")
}

func TestExpandJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "prog.tri", failProgram)

	stdout, _, err := execute(t, "--format", "json", "expand", path)
	require.NoError(t, err)

	var result ExpandResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, path, result.File)
	assert.NotEmpty(t, result.Key)
	assert.False(t, result.Cached)
	assert.Contains(t, result.Output, `return Err("missing");`)

	var expansions []map[string]any
	require.NoError(t, json.Unmarshal(result.Expansions, &expansions))
	require.Len(t, expansions, 1)
	assert.Equal(t, "fail", expansions[0]["operator"])
	assert.Equal(t, "binding", expansions[0]["form"])
}

func TestExpandCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.tri", failProgram)
	cache := filepath.Join(dir, "cache.db")

	first, _, err := execute(t, "--format", "json", "expand", "--cache", cache, path)
	require.NoError(t, err)
	var miss ExpandResult
	decodeResponse(t, first, &miss)
	assert.False(t, miss.Cached)

	second, _, err := execute(t, "--format", "json", "expand", "--cache", cache, path)
	require.NoError(t, err)
	var hit ExpandResult
	decodeResponse(t, second, &hit)
	assert.True(t, hit.Cached)
	assert.Equal(t, miss.Key, hit.Key)
	assert.Equal(t, miss.Output, hit.Output)
	assert.JSONEq(t, string(miss.Expansions), string(hit.Expansions))
}

func TestExpandCacheKeepsWarnings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rec.tri", recursiveProgram)
	cache := filepath.Join(dir, "cache.db")

	_, firstErr, err := execute(t, "expand", "--cache", cache, path)
	require.NoError(t, err)
	assert.Contains(t, firstErr, "rec.tri: warning:")

	_, secondErr, err := execute(t, "expand", "--cache", cache, path)
	require.NoError(t, err)
	assert.Equal(t, firstErr, secondErr)

	stdout, _, err := execute(t, "--format", "json", "expand", "--cache", cache, path)
	require.NoError(t, err)
	var hit ExpandResult
	decodeResponse(t, stdout, &hit)
	assert.True(t, hit.Cached)
	require.Len(t, hit.Warnings, 1)
	assert.Equal(t, []string{"even", "odd", "even"}, hit.Warnings[0].Path)
}

func TestExpandCachePrunesOtherVersions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.tri", failProgram)
	cache := filepath.Join(dir, "cache.db")

	st, err := store.Open(cache)
	require.NoError(t, err)
	_, _, err = st.SaveExpansion(context.Background(), store.Expansion{
		Key:           "stale",
		File:          "old.tri",
		Source:        "fn main() {}",
		CatalogDigest: "old",
		Output:        "fn main() {}",
		EngineVersion: "0.0.1",
		IRVersion:     "0",
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, _, err = execute(t, "expand", "--cache", cache, path)
	require.NoError(t, err)

	st, err = store.Open(cache)
	require.NoError(t, err)
	defer st.Close()
	all, err := st.ListExpansions(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, path, all[0].File)
}

func TestExpandCacheFromProject(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.tri", failProgram)
	cache := filepath.Join(dir, "project-cache.db")
	config := writeFile(t, dir, "tri.cue", "config: cache: \""+filepath.ToSlash(cache)+"\"\n")

	_, _, err := execute(t, "--config", config, "expand", path)
	require.NoError(t, err)
	_, err = os.Stat(cache)
	assert.NoError(t, err, "the project cache should have been created")
}

func TestExpandOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.tri", failProgram)
	outPath := filepath.Join(dir, "prog.out.tri")

	stdout, _, err := execute(t, "expand", "-o", outPath, path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `return Err("missing");`)
}

func TestExpandDiagnostics(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.tri", badProgram)

	_, stderr, err := execute(t, "expand", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "error[E102]")
	assert.Contains(t, stderr, "  | ")
	assert.Contains(t, stderr, "^")
}

func TestExpandDiagnosticsJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.tri", badProgram)

	stdout, _, err := execute(t, "--format", "json", "expand", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var data struct {
		Diagnostics []Diagnostic `json:"diagnostics"`
	}
	resp := decodeResponse(t, stdout, &data)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeDiagnostics, resp.Error.Code)
	require.NotEmpty(t, data.Diagnostics)
	assert.Equal(t, "E102", data.Diagnostics[0].Code)
	assert.Equal(t, path, data.Diagnostics[0].File)
}

func TestExpandStdin(t *testing.T) {
	var out strings.Builder
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&strings.Builder{})
	cmd.SetIn(strings.NewReader(failProgram))
	cmd.SetArgs([]string{"expand", "-"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `return Err("missing");`)
}

func TestExpandMissingFile(t *testing.T) {
	_, _, err := execute(t, "expand", filepath.Join(t.TempDir(), "nope.tri"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExpandMissingConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "prog.tri", failProgram)

	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "tri.cue"), "expand", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for cppdoc commands:
// - version prints the build information and index schema version; help explains both
// - extract prints an indented tree and JSON with overload positions
// - extract --strict fails on error diagnostics; otherwise they are printed
// - extract rejects unknown formats
// - index creates the database; search finds declarations afterwards
// - tree shows a namespace reopened in two headers once, and honours --depth
// - tree reports unknown names
// - formatNumber groups thousands
//
// Note: these tests cannot use t.Parallel() because commands share package
// level flag variables.

const fixtures = "../../testdata/headers"

func resetFlags() {
	cfgFile, rootDir, verbose = "", "", false
	extractFormat, extractStrict = "text", false
	quietFlag, watchFlag = false, false
	searchKind, searchFile, searchLimit, searchJSON = "", "", 15, false
	treeDepth = 0
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(fixtures, name))
	require.NoError(t, err)
	return string(content)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cppdoc dev (commit none, built unknown)")
	assert.Contains(t, out, "Index schema: 1")

	help, err := execute(t, "version", "--help")
	require.NoError(t, err)
	assert.Contains(t, help, "schema_version")
	assert.Contains(t, help, ".cppdoc/symbols.db")
}

func TestExtractCommand_Text(t *testing.T) {
	out, err := execute(t, "extract", filepath.Join(fixtures, "overload.h"))
	require.NoError(t, err)

	assert.Contains(t, out, "class Overload")
	assert.Contains(t, out, "  method int round(float x) [public]")
	assert.Contains(t, out, "  destructor ~Overload() [public]")
	assert.NotContains(t, out, "!")
}

func TestExtractCommand_JSON(t *testing.T) {
	out, err := execute(t, "extract", "--format", "json", filepath.Join(fixtures, "overload.h"), filepath.Join(fixtures, "simple.h"))
	require.NoError(t, err)

	var results []jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	class := results[0].Symbols[0]
	assert.Equal(t, "class", class.Kind)
	assert.Equal(t, "Overload", class.QualifiedName)
	require.Len(t, class.Children, 8)

	var rounds []*jsonNode
	for _, c := range class.Children {
		if c.Name == "round" {
			rounds = append(rounds, c)
		}
	}
	require.Len(t, rounds, 3)
	for i, r := range rounds {
		require.NotNil(t, r.OverloadIndex)
		assert.Equal(t, i, *r.OverloadIndex)
		assert.Equal(t, "/Overload#round", r.Link)
	}
	assert.Empty(t, results[0].Diagnostics)
}

func TestExtractCommand_Diagnostics(t *testing.T) {
	path := filepath.Join(fixtures, "malformed.h")

	out, err := execute(t, "extract", path)
	require.NoError(t, err)
	assert.Contains(t, out, "! 5:")
	assert.Contains(t, out, "function void valid(int x)")

	_, err = execute(t, "extract", "--strict", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 headers have errors")
}

func TestExtractCommand_BadFormat(t *testing.T) {
	_, err := execute(t, "extract", "--format", "yaml", filepath.Join(fixtures, "simple.h"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestIndexAndSearchCommands(t *testing.T) {
	dir := newProject(t, map[string]string{
		"include/overload.h": fixture(t, "overload.h"),
		"include/simple.h":   fixture(t, "simple.h"),
		"build/generated.h":  "int generated();\n",
	})

	_, err := execute(t, "index", "-C", dir, "--quiet")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".cppdoc", "symbols.db"))

	out, err := execute(t, "search", "-C", dir, "round")
	require.NoError(t, err)
	assert.Contains(t, out, "include/overload.h:")
	assert.Contains(t, out, "method int round(float x)")
	assert.NotContains(t, out, "generated")

	out, err = execute(t, "search", "-C", dir, "--json", "--kind", "struct", "simple*")
	require.NoError(t, err)
	var hits []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "SimpleStruct", hits[0]["name"])

	out, err = execute(t, "search", "-C", dir, "nothingmatchesthis")
	require.NoError(t, err)
	assert.Contains(t, out, "No results")
}

func TestTreeCommand(t *testing.T) {
	dir := newProject(t, map[string]string{
		"a.h": "/// Utilities.\nnamespace util {\nint add(int a, int b);\n}\n",
		"b.h": "namespace util {\nint sub(int a, int b);\n}\n",
	})

	out, err := execute(t, "tree", "-C", dir)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "namespace util"))
	assert.Contains(t, out, "(a.h:2, b.h:1)")
	assert.Contains(t, out, "  function int add(int a, int b)")
	assert.Contains(t, out, "  function int sub(int a, int b)")

	out, err = execute(t, "tree", "-C", dir, "--depth", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "namespace util")
	assert.NotContains(t, out, "add")

	out, err = execute(t, "tree", "-C", dir, "util::sub")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "function int sub(int a, int b)"))

	_, err = execute(t, "tree", "-C", dir, "util::mul")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no symbol named util::mul")
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in))
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cppdoc/internal/extractor"
	"github.com/mvp-joe/cppdoc/internal/search"
	"github.com/mvp-joe/cppdoc/internal/storage"
)

// Test Plan for cppdoc MCP tools:
// - cppdoc_search returns ranked hits as JSON and honours kind filters and limits
// - cppdoc_search rejects a missing query
// - cppdoc_symbol returns every overload with signature, overload index and Markdown docs
// - cppdoc_symbol lists members when include_children is set
// - cppdoc_symbol renders template parameters
// - cppdoc_symbol reports unknown names as tool errors
// - NewServer registers both tools

type toolFixture struct {
	idx    *search.Index
	reader *storage.SymbolReader
}

func newToolFixture(t *testing.T) *toolFixture {
	t.Helper()
	db := storage.NewTestDB(t)
	w := storage.NewSymbolWriter(db)
	run, err := w.BeginRun()
	require.NoError(t, err)

	idx, err := search.New()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	ex := extractor.New(extractor.DefaultOptions())
	for _, name := range []string{"overload.h", "simple.h", "templates.h"} {
		src, err := os.ReadFile(filepath.Join("../../testdata/headers", name))
		require.NoError(t, err)
		res := ex.Extract(name, src)
		_, err = w.WriteFile(&storage.FileRecord{FilePath: name, FileHash: name, RunID: run.ID}, res.Root, res.Diagnostics)
		require.NoError(t, err)
		require.NoError(t, idx.IndexFile(context.Background(), name, res.Root))
	}
	return &toolFixture{idx: idx, reader: storage.NewSymbolReader(db)}
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return result, textContent.Text
}

func TestSearchTool(t *testing.T) {
	t.Parallel()

	f := newToolFixture(t)
	handler := createSearchHandler(f.idx)

	result, text := callTool(t, handler, "cppdoc_search", map[string]any{"query": "round"})
	require.False(t, result.IsError)

	var response SearchResponse
	require.NoError(t, json.Unmarshal([]byte(text), &response))
	assert.Equal(t, 3, response.Total)
	for _, h := range response.Results {
		assert.Equal(t, "Overload::round", h.QualifiedName)
	}

	_, text = callTool(t, handler, "cppdoc_search", map[string]any{"query": "round", "limit": "1"})
	require.NoError(t, json.Unmarshal([]byte(text), &response))
	assert.Equal(t, 1, response.Total)

	_, text = callTool(t, handler, "cppdoc_search", map[string]any{"query": "round", "kind": "function"})
	require.NoError(t, json.Unmarshal([]byte(text), &response))
	assert.Equal(t, 0, response.Total)
}

func TestSearchTool_MissingQuery(t *testing.T) {
	t.Parallel()

	f := newToolFixture(t)
	result, text := callTool(t, createSearchHandler(f.idx), "cppdoc_search", map[string]any{"limit": 3})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "query parameter is required")
}

func TestSymbolTool_Overloads(t *testing.T) {
	t.Parallel()

	f := newToolFixture(t)
	result, text := callTool(t, createSymbolHandler(f.reader), "cppdoc_symbol", map[string]any{"name": "Overload::round"})
	require.False(t, result.IsError)

	var response SymbolResponse
	require.NoError(t, json.Unmarshal([]byte(text), &response))
	require.Len(t, response.Symbols, 3)

	first := response.Symbols[0]
	assert.Equal(t, "method", first.Kind)
	assert.Equal(t, "overload.h", first.File)
	assert.Equal(t, "int round(float x)", first.Signature)
	require.NotNil(t, first.OverloadIndex)
	assert.Equal(t, 0, *first.OverloadIndex)
	assert.Contains(t, first.Documentation, "#### Parameters")
	assert.Equal(t, 2, *response.Symbols[2].OverloadIndex)
}

func TestSymbolTool_Children(t *testing.T) {
	t.Parallel()

	f := newToolFixture(t)
	_, text := callTool(t, createSymbolHandler(f.reader), "cppdoc_symbol", map[string]any{
		"name":             "::SimpleStruct",
		"include_children": true,
	})

	var response SymbolResponse
	require.NoError(t, json.Unmarshal([]byte(text), &response))
	require.Len(t, response.Symbols, 1)
	assert.Equal(t, "struct", response.Symbols[0].Kind)
	require.Len(t, response.Symbols[0].Children, 1)
	assert.Equal(t, "field", response.Symbols[0].Children[0].Kind)
}

func TestSymbolTool_Template(t *testing.T) {
	t.Parallel()

	f := newToolFixture(t)
	_, text := callTool(t, createSymbolHandler(f.reader), "cppdoc_symbol", map[string]any{"name": "Template::method1"})

	var response SymbolResponse
	require.NoError(t, json.Unmarshal([]byte(text), &response))
	require.Len(t, response.Symbols, 1)
	require.Len(t, response.Symbols[0].Template, 3)
	assert.Equal(t, "typename R", response.Symbols[0].Template[0])
}

func TestSymbolTool_Unknown(t *testing.T) {
	t.Parallel()

	f := newToolFixture(t)
	handler := createSymbolHandler(f.reader)

	result, text := callTool(t, handler, "cppdoc_symbol", map[string]any{"name": "Nope::missing"})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "no symbol named Nope::missing")

	result, _ = callTool(t, handler, "cppdoc_symbol", map[string]any{})
	assert.True(t, result.IsError)
}

func TestNewServer_RegistersTools(t *testing.T) {
	t.Parallel()

	f := newToolFixture(t)
	s := NewServer(ServerConfig{}, nil, f.idx, f.reader)

	response := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(response)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cppdoc_search"`)
	assert.Contains(t, string(data), `"cppdoc_symbol"`)
}

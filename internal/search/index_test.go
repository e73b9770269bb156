package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cppdoc/internal/extractor"
)

// Test Plan for Symbol Search:
// - Every non-root node of a file becomes one document
// - Names, signatures and documentation are searchable
// - Kind and file filters narrow results
// - Re-indexing a file replaces its documents; RemoveFile drops them
// - A cancelled context stops indexing

func newIndex(t *testing.T, files ...string) *Index {
	t.Helper()
	idx, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	ex := extractor.New(extractor.DefaultOptions())
	for _, name := range files {
		src, err := os.ReadFile(filepath.Join("../../testdata/headers", name))
		require.NoError(t, err)
		require.NoError(t, idx.IndexFile(context.Background(), name, ex.Extract(name, src).Root))
	}
	return idx
}

func TestIndex_CountsDocuments(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, "overload.h", "simple.h")

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(16), count)
}

func TestIndex_SearchByName(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, "overload.h", "simple.h")

	hits, err := idx.Search(context.Background(), "round", nil)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for _, h := range hits {
		assert.Equal(t, "Overload::round", h.QualifiedName)
		assert.Equal(t, "method", h.Kind)
		assert.Equal(t, "overload.h", h.File)
		assert.Contains(t, h.Signature, "round(")
		assert.Positive(t, h.Line)
	}
}

func TestIndex_SearchDocumentation(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, "overload.h")

	hits, err := idx.Search(context.Background(), "uppercase", nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "toUpper", hits[0].Name)
	assert.Equal(t, "Convert string to uppercase.", hits[0].Summary)
	assert.NotEmpty(t, hits[0].Highlights)
}

func TestIndex_Filters(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, "overload.h", "simple.h")
	ctx := context.Background()

	hits, err := idx.Search(ctx, "round", &Options{Kind: "class"})
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search(ctx, "simple*", &Options{Kind: "struct"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "SimpleStruct", hits[0].Name)

	hits, err = idx.Search(ctx, "field", &Options{File: "simple*"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, "simple.h", h.File)
	}

	hits, err = idx.Search(ctx, "round", &Options{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndex_ReindexAndRemove(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, "overload.h", "simple.h", "simple.h")

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(16), count)

	require.NoError(t, idx.RemoveFile("overload.h"))
	count, err = idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), count)

	hits, err := idx.Search(context.Background(), "round", nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_CancelledContext(t *testing.T) {
	t.Parallel()

	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := extractor.New(extractor.DefaultOptions()).Extract("x.h", []byte("int a; int b;"))
	assert.ErrorIs(t, idx.IndexFile(ctx, "x.h", res.Root), context.Canceled)
}

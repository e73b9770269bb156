// Package search maintains an in-memory full-text index over extracted
// symbols.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// Options narrows a search.
type Options struct {
	Kind  string // exact kind name, e.g. "method"
	File  string // wildcard over the file path, e.g. "include/*"
	Limit int    // 1-100, default 15
}

// Hit is one matching symbol.
type Hit struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	QualifiedName string   `json:"qualified_name"`
	Kind          string   `json:"kind"`
	File          string   `json:"file"`
	Line          int      `json:"line"`
	Summary       string   `json:"summary,omitempty"`
	Signature     string   `json:"signature,omitempty"`
	Score         float64  `json:"score"`
	Highlights    []string `json:"highlights,omitempty"`
}

// Index is a bleve index of symbol documents keyed by file.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
	files map[string]int // documents indexed per file
}

// New creates an empty in-memory index.
func New() (*Index, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Index{index: index, files: make(map[string]int)}, nil
}

// buildMapping creates the index mapping for symbol documents.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	text := func(analyzer string) *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = analyzer
		m.Store = true
		m.Index = true
		return m
	}

	doc := text("standard")
	doc.IncludeTermVectors = true // phrase search and highlighting

	line := bleve.NewNumericFieldMapping()
	line.Store = true
	line.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", text("standard"))
	docMapping.AddFieldMappingsAt("qualified_name", text("keyword"))
	docMapping.AddFieldMappingsAt("kind", text("keyword"))
	docMapping.AddFieldMappingsAt("file", text("keyword"))
	docMapping.AddFieldMappingsAt("doc", doc)
	docMapping.AddFieldMappingsAt("signature", text("standard"))
	docMapping.AddFieldMappingsAt("line", line)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// IndexFile replaces the documents of file with the symbols under root.
func (i *Index) IndexFile(ctx context.Context, file string, root *symbols.Node) error {
	const batchSize = 1000

	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.index.NewBatch()
	for n := range i.files[file] {
		batch.Delete(docID(file, n))
	}

	count := 0
	var walkErr error
	root.Walk(func(n *symbols.Node) bool {
		if n.Kind == symbols.KindRoot {
			return true
		}
		if walkErr != nil {
			return false
		}
		if count%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				walkErr = err
				return false
			}
		}
		if err := batch.Index(docID(file, count), document(file, n)); err != nil {
			walkErr = fmt.Errorf("failed to add %s to batch: %w", n.QualifiedName(), err)
			return false
		}
		count++
		if batch.Size() >= batchSize {
			if err := i.index.Batch(batch); err != nil {
				walkErr = fmt.Errorf("failed to execute batch: %w", err)
				return false
			}
			batch = i.index.NewBatch()
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	if batch.Size() > 0 {
		if err := i.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}

	i.files[file] = count
	return nil
}

// RemoveFile drops every document of file.
func (i *Index) RemoveFile(file string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.index.NewBatch()
	for n := range i.files[file] {
		batch.Delete(docID(file, n))
	}
	delete(i.files, file)
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to remove %s: %w", file, err)
	}
	return nil
}

func docID(file string, n int) string {
	return file + "#" + strconv.Itoa(n)
}

// document converts a node to a bleve document.
func document(file string, n *symbols.Node) map[string]interface{} {
	doc := map[string]interface{}{
		"name":           n.Name,
		"qualified_name": n.QualifiedName(),
		"kind":           n.Kind.String(),
		"file":           file,
		"doc":            n.Doc.Text(),
		"line":           n.Span.Start.Line,
	}
	if n.Signature != nil {
		doc["signature"] = n.Signature.String(n.Name)
	} else if n.Type != "" {
		doc["signature"] = symbols.Declarator(n.Type, n.Name)
	}
	return doc
}

// Search executes a query using bleve QueryStringQuery syntax.
func (i *Index) Search(ctx context.Context, queryStr string, options *Options) ([]*Hit, error) {
	if options == nil {
		options = &Options{}
	}

	limit := options.Limit
	if limit <= 0 || limit > 100 {
		limit = 15
	}

	queries := []query.Query{bleve.NewQueryStringQuery(queryStr)}

	if options.Kind != "" {
		kindQuery := bleve.NewTermQuery(options.Kind)
		kindQuery.SetField("kind")
		queries = append(queries, kindQuery)
	}

	if options.File != "" {
		fileQuery := bleve.NewWildcardQuery(options.File)
		fileQuery.SetField("file")
		queries = append(queries, fileQuery)
	}

	var finalQuery query.Query = queries[0]
	if len(queries) > 1 {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	req.Fields = []string{"name", "qualified_name", "kind", "file", "doc", "signature", "line"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Fields = []string{"doc"}

	i.mu.RLock()
	defer i.mu.RUnlock()

	result, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]*Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hit := &Hit{ID: h.ID, Score: h.Score}
		hit.Name, _ = h.Fields["name"].(string)
		hit.QualifiedName, _ = h.Fields["qualified_name"].(string)
		hit.Kind, _ = h.Fields["kind"].(string)
		hit.File, _ = h.Fields["file"].(string)
		hit.Signature, _ = h.Fields["signature"].(string)
		if line, ok := h.Fields["line"].(float64); ok {
			hit.Line = int(line)
		}
		if doc, ok := h.Fields["doc"].(string); ok {
			hit.Summary = symbols.DocComment(strings.Split(doc, "\n")).Summary()
		}
		for _, fragments := range h.Fragments {
			hit.Highlights = append(hit.Highlights, fragments...)
		}
		if len(hit.Highlights) > 3 {
			hit.Highlights = hit.Highlights[:3]
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.DocCount()
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}

// Package indexer keeps a project's headers extracted, persisted and
// searchable. A run discovers headers, skips unchanged ones by content hash,
// extracts the rest in parallel and replaces their stored symbols.
package indexer

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/cppdoc/internal/extractor"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
	"github.com/mvp-joe/cppdoc/internal/search"
	"github.com/mvp-joe/cppdoc/internal/storage"
)

// DefaultCacheSize is used when Config.CacheSize is not positive.
const DefaultCacheSize = 1024

// Indexer indexes the headers of one project.
type Indexer interface {
	// Index runs discovery and brings storage up to date.
	Index(ctx context.Context) (*Stats, error)

	// Watch re-indexes on header changes until ctx is cancelled.
	Watch(ctx context.Context, onUpdate func(*Stats, error)) error

	// Results returns the latest extraction of every indexed header, ordered
	// by path.
	Results() []*extractor.Result

	// Close releases the extraction cache.
	Close() error
}

// Config contains configuration for the indexer.
type Config struct {
	// Root directory of the project
	RootDir string

	HeaderPatterns []string
	IgnorePatterns []string

	// Extraction results kept in memory, keyed by path and content hash
	CacheSize int

	// Quiet period before a watched change triggers a run
	Debounce time.Duration

	Extract extractor.Options
}

// Stats summarises one run.
type Stats struct {
	RunID           string
	FilesDiscovered int
	FilesExtracted  int
	FilesCached     int
	FilesUnchanged  int
	FilesRemoved    int
	Symbols         int
	Errors          int
	Warnings        int
	Duration        time.Duration
}

// Option configures optional collaborators.
type Option func(*indexer)

// WithProgress reports progress to p.
func WithProgress(p ProgressReporter) Option {
	return func(ix *indexer) { ix.progress = p }
}

// WithSearch keeps idx in sync with every stored file.
func WithSearch(idx *search.Index) Option {
	return func(ix *indexer) { ix.search = idx }
}

type indexer struct {
	cfg       *Config
	discovery *FileDiscovery
	extractor *extractor.Extractor
	cache     otter.Cache[string, *extractor.Result]
	writer    *storage.SymbolWriter
	reader    *storage.SymbolReader
	search    *search.Index
	progress  ProgressReporter

	runMu   sync.Mutex
	mu      sync.RWMutex
	results map[string]*extractor.Result
}

// New creates an indexer over db. The database must already carry the schema.
func New(cfg *Config, db *sql.DB, opts ...Option) (Indexer, error) {
	discovery, err := NewFileDiscovery(cfg.RootDir, cfg.HeaderPatterns, cfg.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid header patterns: %w", err)
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := otter.MustBuilder[string, *extractor.Result](size).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction cache: %w", err)
	}

	ix := &indexer{
		cfg:       cfg,
		discovery: discovery,
		extractor: extractor.New(cfg.Extract),
		cache:     cache,
		writer:    storage.NewSymbolWriter(db),
		reader:    storage.NewSymbolReader(db),
		progress:  NoOpProgressReporter{},
		results:   make(map[string]*extractor.Result),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// pending is one discovered header within a run.
type pending struct {
	rel     string
	hash    string
	size    int64
	content []byte
	result  *extractor.Result
	store   bool
}

func (ix *indexer) Index(ctx context.Context) (*Stats, error) {
	ix.runMu.Lock()
	defer ix.runMu.Unlock()

	start := time.Now()
	stats := &Stats{}

	ix.progress.OnDiscoveryStart()
	paths, err := ix.discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover headers: %w", err)
	}
	stats.FilesDiscovered = len(paths)
	ix.progress.OnDiscoveryComplete(len(paths))

	run, err := ix.writer.BeginRun()
	if err != nil {
		return nil, err
	}
	stats.RunID = run.ID

	files, err := ix.classify(paths, stats)
	if err != nil {
		return nil, err
	}
	if err := ix.extract(ctx, files, stats); err != nil {
		return nil, err
	}

	ix.progress.OnFileProcessingStart(len(files))
	current := make(map[string]*extractor.Result, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.store {
			_, err := ix.writer.WriteFile(&storage.FileRecord{
				FilePath:  f.rel,
				FileHash:  f.hash,
				RunID:     run.ID,
				SizeBytes: f.size,
			}, f.result.Root, f.result.Diagnostics)
			if err != nil {
				return nil, err
			}
		}
		if ix.search != nil && ix.changed(f) {
			if err := ix.search.IndexFile(ctx, f.rel, f.result.Root); err != nil {
				return nil, fmt.Errorf("failed to index %s for search: %w", f.rel, err)
			}
		}
		current[f.rel] = f.result
		ix.progress.OnFileProcessed(f.rel)
	}

	removed, err := ix.removeVanished(current)
	if err != nil {
		return nil, err
	}
	stats.FilesRemoved = removed

	ix.mu.Lock()
	ix.results = current
	ix.mu.Unlock()

	for _, res := range current {
		stats.Symbols += countSymbols(res.Root)
		for _, d := range res.Diagnostics {
			if d.Severity == symbols.SeverityError {
				stats.Errors++
			} else {
				stats.Warnings++
			}
		}
	}

	run.FileCount = len(current)
	run.SymbolCount = stats.Symbols
	run.ErrorCount = stats.Errors
	if err := ix.writer.FinishRun(run); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	ix.progress.OnComplete(stats)
	return stats, nil
}

// classify reads and hashes each header and decides what it needs: nothing,
// a cached result, or a fresh extraction.
func (ix *indexer) classify(paths []string, stats *Stats) ([]*pending, error) {
	files := make([]*pending, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		sum := sha256.Sum256(content)
		f := &pending{
			rel:     ix.discovery.Rel(path),
			hash:    hex.EncodeToString(sum[:]),
			size:    int64(len(content)),
			content: content,
		}

		stored, err := ix.reader.GetFile(f.rel)
		if err != nil {
			return nil, err
		}
		f.store = stored == nil || stored.FileHash != f.hash

		if !f.store {
			stats.FilesUnchanged++
		}

		if res, ok := ix.cache.Get(cacheKey(f.rel, f.hash)); ok {
			f.result = res
			stats.FilesCached++
		}
		files = append(files, f)
	}
	return files, nil
}

// extract runs the extractor over every header without a result.
func (ix *indexer) extract(ctx context.Context, files []*pending, stats *Stats) error {
	var todo []*pending
	var sources []extractor.Source
	for _, f := range files {
		if f.result == nil {
			todo = append(todo, f)
			sources = append(sources, extractor.Source{Name: f.rel, Content: f.content})
		}
	}
	if len(sources) == 0 {
		return nil
	}

	results, err := ix.extractor.ExtractAll(ctx, sources)
	if err != nil {
		return err
	}
	for i, res := range results {
		f := todo[i]
		f.result = res
		ix.cache.Set(cacheKey(f.rel, f.hash), res)
		if res.HasErrors() {
			log.Printf("Warning: %s has %d diagnostics", f.rel, len(res.Diagnostics))
		}
	}
	stats.FilesExtracted = len(results)
	return nil
}

// changed reports whether the search index needs f again.
func (ix *indexer) changed(f *pending) bool {
	if f.store {
		return true
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.results[f.rel] != f.result
}

// removeVanished deletes stored files that discovery no longer returns.
func (ix *indexer) removeVanished(current map[string]*extractor.Result) (int, error) {
	stored, err := ix.reader.GetAllFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, file := range stored {
		if _, ok := current[file.FilePath]; ok {
			continue
		}
		if err := ix.writer.DeleteFile(file.FilePath); err != nil {
			return removed, err
		}
		if ix.search != nil {
			if err := ix.search.RemoveFile(file.FilePath); err != nil {
				return removed, fmt.Errorf("failed to remove %s from search: %w", file.FilePath, err)
			}
		}
		removed++
	}
	return removed, nil
}

func (ix *indexer) Results() []*extractor.Result {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]*extractor.Result, 0, len(ix.results))
	for _, res := range ix.results {
		out = append(out, res)
	}
	slices.SortFunc(out, func(a, b *extractor.Result) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (ix *indexer) Close() error {
	ix.cache.Close()
	return nil
}

func cacheKey(rel, hash string) string {
	return rel + "@" + hash
}

func countSymbols(root *symbols.Node) int {
	n := 0
	root.Walk(func(node *symbols.Node) bool {
		if node.Kind != symbols.KindRoot {
			n++
		}
		return true
	})
	return n
}

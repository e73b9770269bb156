// Package extractor turns C++ header source into a tree of documented
// symbols. Each call is an independent single pass: lexing, comment
// association, declaration parsing, tree building and overload grouping.
package extractor

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/cppdoc/internal/extractor/comments"
	"github.com/mvp-joe/cppdoc/internal/extractor/lexer"
	"github.com/mvp-joe/cppdoc/internal/extractor/overload"
	"github.com/mvp-joe/cppdoc/internal/extractor/parser"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
	"github.com/mvp-joe/cppdoc/internal/extractor/tree"
)

// Options configures an Extractor.
type Options struct {
	Comments comments.Options

	// Workers bounds ExtractAll parallelism. Zero means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Comments: comments.DefaultOptions()}
}

// Source is one named source unit.
type Source struct {
	Name    string
	Content []byte
}

// Result is the outcome of extracting one source unit. The tree is complete
// and must not be modified once returned.
type Result struct {
	Name        string
	Root        *symbols.Node
	Diagnostics []symbols.Diagnostic
}

// HasErrors reports whether any error-severity diagnostic was produced.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == symbols.SeverityError {
			return true
		}
	}
	return false
}

// Extractor holds immutable options and is safe for concurrent use.
type Extractor struct {
	opts Options
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Extract runs one pass over src. It never fails: problems are reported as
// diagnostics next to the best-effort tree.
func (e *Extractor) Extract(name string, src []byte) *Result {
	var report symbols.Report
	toks := comments.Collect(lexer.Tokenize(src), e.opts.Comments, &report)
	b := tree.New(&report)
	parser.Parse(toks, b, &report)
	root := b.Finish()
	overload.Group(root)
	report.Sort()
	return &Result{Name: name, Root: root, Diagnostics: report.Diagnostics}
}

// ExtractAll extracts every source in parallel and returns the results in
// input order. Cancellation is observed between sources only.
func (e *Extractor) ExtractAll(ctx context.Context, sources []Source) ([]*Result, error) {
	results := make([]*Result, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	workers := e.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("extract %s: %w", src.Name, err)
			}
			results[i] = e.Extract(src.Name, src.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

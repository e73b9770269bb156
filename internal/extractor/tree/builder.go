// Package tree assembles parser events into an owned symbol tree.
package tree

import (
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// Builder implements parser.Sink with a scope stack rooted at the implicit
// global namespace.
type Builder struct {
	root   *symbols.Node
	stack  []*symbols.Node
	report *symbols.Report
}

// New returns a Builder reporting collisions to r.
func New(r *symbols.Report) *Builder {
	root := symbols.NewRoot()
	return &Builder{root: root, stack: []*symbols.Node{root}, report: r}
}

func (b *Builder) top() *symbols.Node {
	return b.stack[len(b.stack)-1]
}

// Enter opens a scope. A namespace already present in the current scope is
// reopened instead of duplicated.
func (b *Builder) Enter(n *symbols.Node) *symbols.Node {
	cur := b.top()
	if n.Kind == symbols.KindNamespace {
		for _, c := range cur.Children {
			if c.Kind == symbols.KindNamespace && c.Name == n.Name {
				if c.Doc.Empty() {
					c.Doc = n.Doc
				}
				b.stack = append(b.stack, c)
				return c
			}
		}
	}
	b.add(cur, n)
	b.stack = append(b.stack, n)
	return n
}

// Declare appends a leaf declaration to the current scope.
func (b *Builder) Declare(n *symbols.Node) {
	b.add(b.top(), n)
}

// Leave closes the current scope. The root is never popped.
func (b *Builder) Leave(end symbols.Position) {
	if len(b.stack) == 1 {
		return
	}
	cur := b.top()
	if end.Offset > cur.Span.End.Offset {
		cur.Span.End = end
	}
	b.stack = b.stack[:len(b.stack)-1]
}

// Scope returns the qualified name of the current scope.
func (b *Builder) Scope() string {
	return b.top().QualifiedName()
}

// Finish returns the root. Scopes left open by truncated input stay in the
// tree as they were when input ended.
func (b *Builder) Finish() *symbols.Node {
	b.stack = b.stack[:1]
	return b.root
}

func (b *Builder) add(scope, n *symbols.Node) {
	switch {
	case n.Name == "":
	case n.Kind.IsRecord() || n.Kind == symbols.KindEnum:
		for _, c := range scope.Children {
			if c.Name == n.Name && (c.Kind.IsRecord() || c.Kind == symbols.KindEnum) {
				b.report.Add(symbols.NameCollisionWarning, n.Span.Start, n.Name, scope.QualifiedName(),
					"%s %q is already defined in this scope at line %d", n.Kind, n.Name, c.Span.Start.Line)
				break
			}
		}
	default:
		if prev := duplicateOf(scope, n); prev != nil {
			prev.SupersededBy = n
			b.report.Add(symbols.DuplicateDeclarationWarning, n.Span.Start, declKey(n), scope.QualifiedName(),
				"%s %q redeclares line %d", n.Kind, n.Name, prev.Span.Start.Line)
		}
	}
	scope.AppendChild(n)
}

// duplicateOf finds the live sibling that n redeclares.
func duplicateOf(scope, n *symbols.Node) *symbols.Node {
	key := declKey(n)
	for i := len(scope.Children) - 1; i >= 0; i-- {
		c := scope.Children[i]
		if c.SupersededBy != nil || c.Kind != n.Kind || c.Name != n.Name {
			continue
		}
		if declKey(c) == key {
			return c
		}
	}
	return nil
}

func declKey(n *symbols.Node) string {
	if n.Signature != nil {
		return n.Signature.Key(n.Name)
	}
	return n.Name
}

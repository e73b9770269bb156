package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// Test Plan for Symbol Tree Builder:
// - Declarations attach to the innermost open scope with Parent set
// - Reopening a namespace merges into the existing node and adopts a missing doc
// - A second record of the same name in one scope is kept with a NameCollisionWarning
// - A redeclared function supersedes the earlier node and reports a DuplicateDeclarationWarning
// - Overloads with different signatures are not duplicates
// - Leave extends the span end and never pops the root
// - Scope reports the qualified name of the innermost scope

func at(line int) symbols.Span {
	return symbols.Span{Start: symbols.Position{Line: line, Offset: line * 10}}
}

func fn(name string, line int, params ...string) *symbols.Node {
	sig := &symbols.Signature{}
	for _, p := range params {
		sig.Params = append(sig.Params, symbols.Param{Type: p})
	}
	return &symbols.Node{Kind: symbols.KindFunction, Name: name, Span: at(line), Signature: sig}
}

func TestBuilder_ScopesAndParents(t *testing.T) {
	t.Parallel()

	var r symbols.Report
	b := New(&r)

	ns := b.Enter(&symbols.Node{Kind: symbols.KindNamespace, Name: "geo", Span: at(1)})
	cls := b.Enter(&symbols.Node{Kind: symbols.KindClass, Name: "Shape", Span: at(2)})
	assert.Equal(t, "geo::Shape", b.Scope())

	b.Declare(&symbols.Node{Kind: symbols.KindField, Name: "area", Span: at(3)})
	b.Leave(symbols.Position{Line: 4, Offset: 45})
	b.Leave(symbols.Position{Line: 5, Offset: 55})
	assert.Equal(t, "", b.Scope())

	root := b.Finish()
	require.Empty(t, r.Diagnostics)
	require.Len(t, root.Children, 1)
	assert.Same(t, ns, root.Children[0])
	assert.Same(t, root, ns.Parent)
	assert.Same(t, cls, ns.Children[0])
	assert.Same(t, cls, cls.Children[0].Parent)
	assert.Equal(t, 4, cls.Span.End.Line)
	assert.Equal(t, 5, ns.Span.End.Line)
}

func TestBuilder_ReopenedNamespaceMerges(t *testing.T) {
	t.Parallel()

	var r symbols.Report
	b := New(&r)

	first := b.Enter(&symbols.Node{Kind: symbols.KindNamespace, Name: "util", Span: at(1)})
	b.Declare(fn("a", 2))
	b.Leave(symbols.Position{Line: 3, Offset: 30})

	again := b.Enter(&symbols.Node{Kind: symbols.KindNamespace, Name: "util", Span: at(5), Doc: symbols.DocComment{"Helpers."}})
	b.Declare(fn("b", 6))
	b.Leave(symbols.Position{Line: 7, Offset: 70})

	root := b.Finish()
	assert.Same(t, first, again)
	require.Len(t, root.Children, 1)
	assert.Equal(t, []string{"a", "b"}, []string{first.Children[0].Name, first.Children[1].Name})
	assert.Equal(t, symbols.DocComment{"Helpers."}, first.Doc)
	assert.Equal(t, 7, first.Span.End.Line)
	assert.Empty(t, r.Diagnostics)
}

func TestBuilder_RecordCollision(t *testing.T) {
	t.Parallel()

	var r symbols.Report
	b := New(&r)

	b.Enter(&symbols.Node{Kind: symbols.KindClass, Name: "A", Span: at(1)})
	b.Leave(symbols.Position{Line: 2, Offset: 20})
	b.Enter(&symbols.Node{Kind: symbols.KindStruct, Name: "A", Span: at(4)})
	b.Leave(symbols.Position{Line: 5, Offset: 50})

	root := b.Finish()
	assert.Len(t, root.ChildrenNamed("A"), 2)
	require.Len(t, r.Diagnostics, 1)
	d := r.Diagnostics[0]
	assert.Equal(t, symbols.NameCollisionWarning, d.Kind)
	assert.Equal(t, symbols.SeverityWarning, d.Severity)
	assert.Equal(t, 4, d.Pos.Line)
	assert.Contains(t, d.Message, "line 1")
}

func TestBuilder_DuplicateSupersedes(t *testing.T) {
	t.Parallel()

	var r symbols.Report
	b := New(&r)

	first := fn("reset", 1)
	second := fn("reset", 3)
	other := fn("reset", 5, "int")
	b.Declare(first)
	b.Declare(second)
	b.Declare(other)

	root := b.Finish()
	assert.Len(t, root.Children, 3)
	assert.Same(t, second, first.SupersededBy)
	assert.Nil(t, second.SupersededBy)
	assert.Nil(t, other.SupersededBy)

	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, symbols.DuplicateDeclarationWarning, r.Diagnostics[0].Kind)
	assert.Equal(t, "reset()", r.Diagnostics[0].Text)
	assert.Equal(t, 3, r.Diagnostics[0].Pos.Line)
}

func TestBuilder_LeaveAtRootIsIgnored(t *testing.T) {
	t.Parallel()

	var r symbols.Report
	b := New(&r)
	b.Leave(symbols.Position{Line: 1})
	b.Declare(fn("f", 2))

	root := b.Finish()
	assert.Equal(t, symbols.KindRoot, root.Kind)
	require.Len(t, root.Children, 1)
}

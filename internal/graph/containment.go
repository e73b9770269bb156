// Package graph merges the symbol trees of several headers into one
// containment graph. Namespaces reopened across files share a vertex; every
// other declaration keeps its own.
package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/cppdoc/internal/extractor"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// RootID is the vertex ID of the global namespace.
const RootID = "/"

// Decl is one source declaration merged into a vertex.
type Decl struct {
	File string
	Node *symbols.Node
}

// Vertex is one scope or member of the merged tree.
type Vertex struct {
	ID            string
	Kind          symbols.Kind
	Name          string
	QualifiedName string
	Decls         []Decl
	order         int
}

// Containment is a directed graph with an edge from every scope to each of
// its members.
type Containment struct {
	g    graph.Graph[string, *Vertex]
	next int
}

// New creates a graph holding only the global namespace.
func New() *Containment {
	c := &Containment{
		g: graph.New(func(v *Vertex) string { return v.ID }, graph.Directed()),
	}
	_ = c.g.AddVertex(&Vertex{ID: RootID, Kind: symbols.KindRoot})
	c.next = 1
	return c
}

// Build merges the results in order.
func Build(results []*extractor.Result) (*Containment, error) {
	c := New()
	for _, r := range results {
		if err := c.AddFile(r.Name, r.Root); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddFile merges the tree of one file.
func (c *Containment) AddFile(file string, root *symbols.Node) error {
	for _, child := range root.Children {
		if err := c.add(RootID, file, child); err != nil {
			return err
		}
	}
	return nil
}

func (c *Containment) add(parent, file string, n *symbols.Node) error {
	id := vertexID(file, n)

	v, err := c.g.Vertex(id)
	switch {
	case errors.Is(err, graph.ErrVertexNotFound):
		v = &Vertex{
			ID:            id,
			Kind:          n.Kind,
			Name:          n.Name,
			QualifiedName: n.QualifiedName(),
			order:         c.next,
		}
		c.next++
		if err := c.g.AddVertex(v); err != nil {
			return fmt.Errorf("failed to add vertex %s: %w", id, err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up vertex %s: %w", id, err)
	}
	v.Decls = append(v.Decls, Decl{File: file, Node: n})

	if err := c.g.AddEdge(parent, id); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return fmt.Errorf("failed to add edge %s -> %s: %w", parent, id, err)
	}

	for _, child := range n.Children {
		if err := c.add(id, file, child); err != nil {
			return err
		}
	}
	return nil
}

// vertexID merges named namespaces by link and keeps other declarations
// apart by their source position.
func vertexID(file string, n *symbols.Node) string {
	if n.Kind == symbols.KindNamespace && n.Name != "" {
		return n.Link()
	}
	return fmt.Sprintf("%s@%s:%d:%d", n.Link(), file, n.Span.Start.Line, n.Span.Start.Col)
}

// Vertex returns the vertex with the given ID.
func (c *Containment) Vertex(id string) (*Vertex, error) {
	return c.g.Vertex(id)
}

// Find returns every vertex with the given qualified name in graph order.
func (c *Containment) Find(qualifiedName string) ([]*Vertex, error) {
	adj, err := c.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	var out []*Vertex
	for id := range adj {
		v, err := c.g.Vertex(id)
		if err != nil {
			return nil, err
		}
		if v.Kind != symbols.KindRoot && v.QualifiedName == qualifiedName {
			out = append(out, v)
		}
	}
	sortVertices(out)
	return out, nil
}

// Children returns the direct members of id in the order first seen.
func (c *Containment) Children(id string) ([]*Vertex, error) {
	adj, err := c.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	edges, ok := adj[id]
	if !ok {
		return nil, fmt.Errorf("vertex %s: %w", id, graph.ErrVertexNotFound)
	}
	out := make([]*Vertex, 0, len(edges))
	for target := range edges {
		v, err := c.g.Vertex(target)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	sortVertices(out)
	return out, nil
}

// Descendants returns every vertex reachable from id, excluding id itself.
func (c *Containment) Descendants(id string) ([]*Vertex, error) {
	var out []*Vertex
	err := graph.DFS(c.g, id, func(k string) bool {
		if k == id {
			return false
		}
		v, err := c.g.Vertex(k)
		if err == nil {
			out = append(out, v)
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	sortVertices(out)
	return out, nil
}

// Walk visits id and its members depth-first. Returning false from fn skips
// the members of that vertex.
func (c *Containment) Walk(id string, fn func(v *Vertex, depth int) bool) error {
	v, err := c.g.Vertex(id)
	if err != nil {
		return err
	}
	return c.walk(v, 0, fn)
}

func (c *Containment) walk(v *Vertex, depth int, fn func(*Vertex, int) bool) error {
	if !fn(v, depth) {
		return nil
	}
	children, err := c.Children(v.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := c.walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the number of vertices and edges.
func (c *Containment) Size() (vertices, edges int, err error) {
	if vertices, err = c.g.Order(); err != nil {
		return 0, 0, err
	}
	if edges, err = c.g.Size(); err != nil {
		return 0, 0, err
	}
	return vertices, edges, nil
}

func sortVertices(vs []*Vertex) {
	slices.SortFunc(vs, func(a, b *Vertex) int { return a.order - b.order })
}

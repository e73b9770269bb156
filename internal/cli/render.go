package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mvp-joe/cppdoc/internal/extractor"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// jsonResult is the JSON form of one extracted header.
type jsonResult struct {
	File        string           `json:"file"`
	Symbols     []*jsonNode      `json:"symbols"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

type jsonNode struct {
	Kind          string                  `json:"kind"`
	Name          string                  `json:"name"`
	QualifiedName string                  `json:"qualified_name"`
	Link          string                  `json:"link"`
	Line          int                     `json:"line"`
	Access        string                  `json:"access,omitempty"`
	Group         string                  `json:"group,omitempty"`
	Doc           []string                `json:"doc,omitempty"`
	Template      []symbols.TemplateParam `json:"template,omitempty"`
	Signature     *symbols.Signature      `json:"signature,omitempty"`
	Type          string                  `json:"type,omitempty"`
	Value         string                  `json:"value,omitempty"`
	Bases         []symbols.Base          `json:"bases,omitempty"`
	Definition    string                  `json:"definition,omitempty"`
	Specifiers    []string                `json:"specifiers,omitempty"`
	Scoped        bool                    `json:"scoped,omitempty"`
	OverloadIndex *int                    `json:"overload_index,omitempty"`
	Superseded    bool                    `json:"superseded,omitempty"`
	Children      []*jsonNode             `json:"children,omitempty"`
}

type jsonDiagnostic struct {
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Severity string `json:"severity"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Text     string `json:"text,omitempty"`
	Scope    string `json:"scope,omitempty"`
}

func toJSONResult(res *extractor.Result) *jsonResult {
	out := &jsonResult{File: res.Name, Symbols: []*jsonNode{}}
	for _, c := range res.Root.Children {
		out.Symbols = append(out.Symbols, toJSONNode(c))
	}
	for _, d := range res.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, jsonDiagnostic{
			Line:     d.Pos.Line,
			Col:      d.Pos.Col,
			Severity: d.Severity.String(),
			Kind:     d.Kind.String(),
			Message:  d.Message,
			Text:     d.Text,
			Scope:    d.Scope,
		})
	}
	return out
}

func toJSONNode(n *symbols.Node) *jsonNode {
	out := &jsonNode{
		Kind:          n.Kind.String(),
		Name:          n.Name,
		QualifiedName: n.QualifiedName(),
		Link:          n.Link(),
		Line:          n.Span.Start.Line,
		Access:        n.Access.String(),
		Group:         n.Group,
		Doc:           n.Doc,
		Template:      n.Template,
		Signature:     n.Signature,
		Type:          n.Type,
		Value:         n.Value,
		Bases:         n.Bases,
		Specifiers:    n.Specifiers,
		Scoped:        n.Scoped,
		Superseded:    n.SupersededBy != nil,
	}
	if n.Definition != symbols.Declared {
		out.Definition = n.Definition.String()
	}
	if n.Overload != nil {
		idx := n.Overload.Index(n)
		out.OverloadIndex = &idx
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toJSONNode(c))
	}
	return out
}

// describe renders a one-line summary of a declaration for the text tree.
func describe(n *symbols.Node) string {
	var b strings.Builder
	b.WriteString(n.Kind.String())
	b.WriteByte(' ')
	switch {
	case n.Signature != nil:
		b.WriteString(n.Signature.String(n.Name))
	case n.Type != "" && n.Kind != symbols.KindEnum:
		b.WriteString(symbols.Declarator(n.Type, n.Name))
	case n.Name == "" && n.Kind == symbols.KindNamespace:
		b.WriteString("(anonymous)")
	default:
		b.WriteString(n.Name)
	}
	if n.Value != "" {
		fmt.Fprintf(&b, " = %s", n.Value)
	}
	if n.Access != symbols.AccessNone {
		fmt.Fprintf(&b, " [%s]", n.Access)
	}
	if n.Definition != symbols.Declared {
		fmt.Fprintf(&b, " = %s", n.Definition)
	}
	if summary := n.Doc.Summary(); summary != "" {
		fmt.Fprintf(&b, "  // %s", summary)
	}
	return b.String()
}

// printTree writes the indented text form of one result.
func printTree(w io.Writer, res *extractor.Result) {
	fmt.Fprintf(w, "%s\n", res.Name)
	for _, c := range res.Root.Children {
		c.Walk(func(n *symbols.Node) bool {
			depth := 0
			for p := n.Parent; p != nil && p.Kind != symbols.KindRoot; p = p.Parent {
				depth++
			}
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth+1), describe(n))
			return true
		})
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "  ! %s\n", d)
	}
}

package symbols

import "strings"

// Kind discriminates the variants of Node.
type Kind int

const (
	KindRoot Kind = iota
	KindNamespace
	KindClass
	KindStruct
	KindUnion
	KindEnum
	KindEnumerator
	KindConstructor
	KindDestructor
	KindMethod
	KindFunction
	KindField
	KindVariable
	KindAlias
)

var kindNames = [...]string{
	KindRoot:        "global",
	KindNamespace:   "namespace",
	KindClass:       "class",
	KindStruct:      "struct",
	KindUnion:       "union",
	KindEnum:        "enum",
	KindEnumerator:  "enumerator",
	KindConstructor: "constructor",
	KindDestructor:  "destructor",
	KindMethod:      "method",
	KindFunction:    "function",
	KindField:       "field",
	KindVariable:    "variable",
	KindAlias:       "alias",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsScope reports whether nodes of this kind own member declarations.
func (k Kind) IsScope() bool {
	switch k {
	case KindRoot, KindNamespace, KindClass, KindStruct, KindUnion, KindEnum:
		return true
	}
	return false
}

// IsRecord reports whether the kind is a class-like type.
func (k Kind) IsRecord() bool {
	return k == KindClass || k == KindStruct || k == KindUnion
}

// IsCallable reports whether nodes of this kind carry a Signature.
func (k Kind) IsCallable() bool {
	switch k {
	case KindConstructor, KindDestructor, KindMethod, KindFunction:
		return true
	}
	return false
}

// Access is the member visibility inside a record body.
type Access int

const (
	AccessNone Access = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	}
	return ""
}

// Definition records how a declaration is provided.
type Definition int

const (
	Declared Definition = iota
	Defined
	Defaulted
	Deleted
	Pure
)

func (d Definition) String() string {
	switch d {
	case Defined:
		return "defined"
	case Defaulted:
		return "default"
	case Deleted:
		return "delete"
	case Pure:
		return "pure"
	}
	return "declared"
}

// Position is a location in a source unit. Line and Col are 1-based.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Col    int `json:"col"`
}

// Span covers a declaration from its first to its last token.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Base is one entry of a class base-specifier list.
type Base struct {
	Name    string `json:"name"`
	Access  Access `json:"-"`
	Virtual bool   `json:"virtual,omitempty"`
}

// Node is one extracted declaration. Children are owned; Parent is a
// navigation-only back reference.
type Node struct {
	Kind     Kind
	Name     string
	Doc      DocComment
	Span     Span
	Access   Access
	Group    string
	Template []TemplateParam

	// Callables.
	Signature *Signature

	// Fields, variables, aliases and enum underlying types.
	Type string

	// Initializer text or enumerator value.
	Value string

	Bases      []Base
	Definition Definition
	Specifiers []string

	// Scoped marks `enum class`.
	Scoped bool

	Parent   *Node
	Children []*Node

	// Overloads is filled on scope nodes by the overload pass.
	Overloads []*OverloadSet
	// Overload points back at the set this callable belongs to.
	Overload *OverloadSet

	// SupersededBy is set when a later declaration with the same key
	// replaced this one for documentation purposes.
	SupersededBy *Node
}

// NewRoot returns the implicit global namespace.
func NewRoot() *Node {
	return &Node{Kind: KindRoot}
}

// AppendChild attaches c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// Child returns the first direct child with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given name in source order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Lookup resolves a `::` separated path relative to n.
func (n *Node) Lookup(path string) *Node {
	cur := n
	for _, part := range strings.Split(path, "::") {
		if cur = cur.Child(part); cur == nil {
			return nil
		}
	}
	return cur
}

// OverloadSet returns the overload set for name in this scope, if any.
func (n *Node) OverloadSet(name string) *OverloadSet {
	for _, s := range n.Overloads {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// displayName is the path component used for qualified names.
func (n *Node) displayName() string {
	if n.Name == "" && n.Kind == KindNamespace {
		return "(anonymous)"
	}
	return n.Name
}

// QualifiedName joins the names of n and its ancestors with `::`.
func (n *Node) QualifiedName() string {
	var parts []string
	for cur := n; cur != nil && cur.Kind != KindRoot; cur = cur.Parent {
		parts = append(parts, cur.displayName())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// Link returns the documentation path of n: scopes are joined with `/`
// and members are attached with `#`.
func (n *Node) Link() string {
	if n.Kind == KindRoot {
		return "/"
	}
	parent := ""
	if n.Parent != nil && n.Parent.Kind != KindRoot {
		parent = n.Parent.Link()
	}
	if n.Kind.IsScope() {
		return parent + "/" + n.displayName()
	}
	if parent == "" {
		parent = "/"
	}
	return parent + "#" + n.displayName()
}

// EffectiveTemplate returns the template parameter lists that apply to n,
// outermost first, including those inherited from enclosing templated classes.
func (n *Node) EffectiveTemplate() [][]TemplateParam {
	var lists [][]TemplateParam
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Template != nil {
			lists = append([][]TemplateParam{cur.Template}, lists...)
		}
	}
	return lists
}

// Walk visits n and its descendants depth-first in source order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

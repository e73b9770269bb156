package symbols

import "strings"

// Param describes one function parameter. Types and defaults are kept as
// normalised source text.
type Param struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	Default  string `json:"default,omitempty"`
	Variadic bool   `json:"variadic,omitempty"`
}

// Signature is the callable payload of a Node.
type Signature struct {
	Params     []Param  `json:"params"`
	Return     string   `json:"return,omitempty"`
	Qualifiers []string `json:"qualifiers,omitempty"`

	// Variadic marks a trailing C-style ellipsis parameter.
	Variadic bool `json:"variadic,omitempty"`
}

// ParamTypes returns the ordered parameter type texts.
func (s *Signature) ParamTypes() []string {
	types := make([]string, len(s.Params))
	for i, p := range s.Params {
		types[i] = p.Type
	}
	return types
}

// Key identifies a signature within an overload set.
func (s *Signature) Key(name string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	b.WriteString(strings.Join(s.ParamTypes(), ", "))
	b.WriteByte(')')
	for _, q := range s.Qualifiers {
		switch q {
		case "override", "final":
			continue
		}
		b.WriteByte(' ')
		b.WriteString(q)
	}
	return b.String()
}

// String renders the signature the way it reads in a header.
func (s *Signature) String(name string) string {
	var b strings.Builder
	if s.Return != "" {
		b.WriteString(s.Return)
		b.WriteByte(' ')
	}
	b.WriteString(name)
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(Declarator(p.Type, p.Name))
		} else {
			b.WriteString(p.Type)
		}
		if p.Default != "" {
			b.WriteString(" = ")
			b.WriteString(p.Default)
		}
	}
	b.WriteByte(')')
	for _, q := range s.Qualifiers {
		b.WriteByte(' ')
		b.WriteString(q)
	}
	return b.String()
}

// Declarator puts name back where it was declared inside typ, as in
// `void (*cb)(int)` or `int table[2][3]`.
func Declarator(typ, name string) string {
	depth := 0
	for i := 0; i < len(typ); i++ {
		switch typ[i] {
		case '<':
			depth++
		case '>':
			depth--
		case '(':
			if depth > 0 {
				continue
			}
			if end := strings.IndexByte(typ[i:], ')'); end > 0 && pointerGroup(typ[i+1:i+end]) {
				return typ[:i+end] + name + typ[i+end:]
			}
		case '[':
			if depth == 0 {
				return strings.TrimRight(typ[:i], " ") + " " + name + typ[i:]
			}
		}
	}
	if strings.HasSuffix(typ, "&") || strings.HasSuffix(typ, "*") {
		return typ + name
	}
	return typ + " " + name
}

// pointerGroup reports the inside of `(*)`, `(&)` or `(Class::*)`.
func pointerGroup(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && strings.ContainsAny(s[len(s)-1:], "*&^")
}

// TemplateParamKind distinguishes template parameter forms.
type TemplateParamKind int

const (
	TemplateType TemplateParamKind = iota
	TemplateNonType
	TemplateTemplate
)

func (k TemplateParamKind) String() string {
	switch k {
	case TemplateNonType:
		return "non-type"
	case TemplateTemplate:
		return "template"
	}
	return "type"
}

// TemplateParam is one entry of a template header.
type TemplateParam struct {
	Kind     TemplateParamKind `json:"-"`
	Name     string            `json:"name,omitempty"`
	Type     string            `json:"type,omitempty"`
	Default  string            `json:"default,omitempty"`
	Variadic bool              `json:"variadic,omitempty"`
}

// OverloadSet groups same-named callables of one scope in declaration order.
type OverloadSet struct {
	Name    string
	Kind    Kind
	Members []*Node
}

// Signatures returns the members' signatures in declaration order.
func (o *OverloadSet) Signatures() []*Signature {
	sigs := make([]*Signature, len(o.Members))
	for i, m := range o.Members {
		sigs[i] = m.Signature
	}
	return sigs
}

// Index returns the position of n within the set, or -1.
func (o *OverloadSet) Index(n *Node) int {
	for i, m := range o.Members {
		if m == n {
			return i
		}
	}
	return -1
}

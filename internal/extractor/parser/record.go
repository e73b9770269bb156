package parser

import (
	"github.com/mvp-joe/cppdoc/internal/extractor/lexer"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// recordAhead reports whether the class-key at the cursor starts a class
// definition rather than an elaborated type in some other declaration.
func (p *Parser) recordAhead() bool {
	var n nesting
	prev := p.peek()
	for i := 1; ; i++ {
		t := p.peekAt(i)
		if n.flat() && t.Is("(") && isAttributeName(prev) {
			n.feed(prev, t)
			prev = t
			continue
		}
		if n.flat() {
			switch {
			case t.Is("{"):
				return true
			case t.Is(":") && !p.peekAt(i-1).Is("::"):
				return true
			case t.Kind == lexer.EOF, t.Is(";"), t.Is("("), t.Is("="), t.Is("}"), t.Is(","):
				return false
			}
		}
		n.feed(prev, t)
		prev = t
		if t.Kind == lexer.EOF {
			return false
		}
		if n.flat() && i > 1 && t.Kind == lexer.Identifier && prevIsName(p.peekAt(i-1)) {
			// Two names in a row: `struct stat buf`.
			if t.Text != "final" {
				return false
			}
		}
	}
}

func isAttributeName(t token) bool {
	return t.Is("alignas") || t.Text == "__attribute__" || t.Text == "__declspec"
}

func prevIsName(t token) bool {
	return t.Kind == lexer.Identifier && t.Text != "final"
}

func recordKind(t token) symbols.Kind {
	switch t.Text {
	case "struct":
		return symbols.KindStruct
	case "union":
		return symbols.KindUnion
	}
	return symbols.KindClass
}

// record parses a class, struct or union definition including any
// declarators that follow its closing brace.
func (p *Parser) record(sc *scope, pre prefix) {
	kw := p.next()
	kind := recordKind(kw)

	var nameToks []token
	var specifiers []string
	for {
		t := p.peek()
		switch {
		case t.Is("[") && p.peekAt(1).Is("["):
			p.skipBalanced("[", "]")
			continue
		case isAttributeName(t):
			p.next()
			p.skipBalanced("(", ")")
			continue
		case t.Text == "final" && (p.peekAt(1).Is("{") || p.peekAt(1).Is(":")):
			specifiers = append(specifiers, "final")
			p.next()
			continue
		case t.Kind == lexer.Identifier, t.Is("::"):
			nameToks = append(nameToks, p.next())
			continue
		case t.Is("<") && len(nameToks) > 0:
			start := p.pos
			p.skipBalanced("<", ">")
			nameToks = append(nameToks, p.toks[start:p.pos]...)
			continue
		}
		break
	}

	var bases []symbols.Base
	if p.peek().Is(":") {
		p.next()
		start := p.pos
		for !p.peek().Is("{") && p.peek().Kind != lexer.EOF {
			if p.peek().Is("<") {
				p.skipBalanced("<", ">")
				continue
			}
			p.next()
		}
		bases = parseBases(p.toks[start:p.pos], kind)
	}

	if !p.peek().Is("{") {
		p.errorf(symbols.SyntaxError, kw, render(nameToks), "expected '{' in %s definition", kw.Text)
		p.skipStatement()
		return
	}

	name := compact(nameToks)
	if name == "" && pre.typedef {
		name = p.typedefName()
	}

	n := &symbols.Node{
		Kind:       kind,
		Name:       name,
		Span:       symbols.Span{Start: pre.first.Pos()},
		Doc:        pre.doc,
		Template:   pre.template,
		Bases:      bases,
		Specifiers: specifiers,
		Definition: symbols.Defined,
	}
	sc.member(n)
	p.next()
	p.sink.Enter(n)
	inner := scope{kind: kind, name: baseName(nameToks), access: defaultAccess(kind), braced: true}
	if !p.body(inner) {
		return
	}
	closing := p.next()
	n.Span = span(pre.first, closing)
	p.sink.Leave(endPos(closing))

	p.trailingDeclarators(sc, pre, n, closing)
}

// typedefName peeks past the brace body of an anonymous typedef'd record
// and returns the first declarator name.
func (p *Parser) typedefName() string {
	depth := 0
	for i := 0; ; i++ {
		t := p.peekAt(i)
		switch {
		case t.Kind == lexer.EOF:
			return ""
		case t.Is("{"):
			depth++
		case t.Is("}"):
			depth--
		case depth == 0 && t.Kind == lexer.Identifier:
			return t.Text
		case depth == 0 && t.Is(";"):
			return ""
		}
	}
}

// trailingDeclarators handles `} name, *ptr;` after a record or enum body.
func (p *Parser) trailingDeclarators(sc *scope, pre prefix, typ *symbols.Node, closing token) {
	start := p.pos
	for !p.peek().Is(";") {
		t := p.peek()
		if t.Kind == lexer.EOF || t.Kind == lexer.Error || t.Is("}") || len(t.Doc) > 0 ||
			startsDeclaration(p.toks[p.pos-1], t, p.peekAt(1)) {
			p.errorf(symbols.SyntaxError, closing, typ.Name, "expected ';' after %s definition", typ.Kind)
			return
		}
		p.next()
	}
	toks := p.toks[start:p.pos]
	semi := p.next()
	if typ.Doc.Empty() {
		typ.Doc = trailingDoc(p.toks[start-1 : p.pos])
	}
	if len(toks) == 0 {
		return
	}

	typeName := typ.Name
	if typeName == "" {
		typeName = typ.Kind.String()
	}
	for _, decl := range splitTop(toks, ",") {
		decl = stripAttributes(decl)
		nameIdx := -1
		for i, t := range decl {
			if t.Kind == lexer.Identifier {
				nameIdx = i
				break
			}
		}
		if nameIdx < 0 {
			continue
		}
		if pre.typedef && decl[nameIdx].Text == typ.Name && nameIdx == 0 && len(decl) == 1 {
			// `typedef struct { ... } Name;` already named the record.
			continue
		}
		node := &symbols.Node{
			Name: decl[nameIdx].Text,
			Type: joinType(typeName, render(decl[:nameIdx]), render(arraySuffix(decl[nameIdx+1:]))),
			Span: span(decl[0], semi),
		}
		switch {
		case pre.typedef:
			node.Kind = symbols.KindAlias
		case sc.kind.IsRecord():
			node.Kind = symbols.KindField
		default:
			node.Kind = symbols.KindVariable
		}
		if eq := indexTop(decl, func(t token) bool { return t.Is("=") }); eq >= 0 {
			node.Value = render(decl[eq+1:])
		}
		sc.member(node)
		p.sink.Declare(node)
	}
}

func joinType(parts ...string) string {
	out := ""
	for _, s := range parts {
		if s == "" {
			continue
		}
		if out != "" && s != "[" && s[0] != '[' {
			out += " "
		}
		out += s
	}
	return out
}

// arraySuffix returns the leading run of `[N]` groups in toks.
func arraySuffix(toks []token) []token {
	i := 0
	for i < len(toks) && toks[i].Is("[") {
		end := matching(toks, i)
		if end < 0 {
			break
		}
		i = end + 1
	}
	return toks[:i]
}

// baseName is the unqualified name of a record without template arguments,
// as used by its constructors.
func baseName(nameToks []token) string {
	name := ""
	for i := 0; i < len(nameToks); i++ {
		t := nameToks[i]
		switch {
		case t.Is("<"):
			end := matching(nameToks, i)
			if end < 0 {
				return name
			}
			i = end
		case t.Kind == lexer.Identifier:
			name = t.Text
		}
	}
	return name
}

func parseBases(toks []token, kind symbols.Kind) []symbols.Base {
	var bases []symbols.Base
	for _, part := range splitTop(toks, ",") {
		part = stripAttributes(part)
		b := symbols.Base{Access: defaultAccess(kind)}
		var rest []token
		for _, t := range part {
			switch {
			case t.Is("virtual"):
				b.Virtual = true
			case isAccess(t):
				b.Access = accessOf(t)
			default:
				rest = append(rest, t)
			}
		}
		if len(rest) == 0 {
			continue
		}
		b.Name = render(rest)
		bases = append(bases, b)
	}
	return bases
}

// enumAhead reports an enum definition or opaque enum declaration.
func (p *Parser) enumAhead() bool {
	for i := 1; ; i++ {
		t := p.peekAt(i)
		switch {
		case t.Is("{"), t.Is(";"):
			return true
		case t.Kind == lexer.EOF, t.Is("("), t.Is("="), t.Is("}"), t.Is(","), t.Is("["):
			return false
		}
	}
}

func (p *Parser) enum(sc *scope, pre prefix) {
	kw := p.next()
	n := &symbols.Node{
		Kind:       symbols.KindEnum,
		Doc:        pre.doc,
		Span:       symbols.Span{Start: pre.first.Pos()},
		Template:   pre.template,
		Definition: symbols.Defined,
	}
	if p.peek().Is("class") || p.peek().Is("struct") {
		p.next()
		n.Scoped = true
	}
	var nameToks []token
	for {
		t := p.peek()
		switch {
		case t.Is("[") && p.peekAt(1).Is("["):
			p.skipBalanced("[", "]")
			continue
		case t.Kind == lexer.Identifier, t.Is("::"):
			nameToks = append(nameToks, p.next())
			continue
		}
		break
	}
	n.Name = compact(nameToks)
	if p.peek().Is(":") {
		p.next()
		start := p.pos
		for !p.peek().Is("{") && !p.peek().Is(";") && p.peek().Kind != lexer.EOF {
			p.next()
		}
		n.Type = render(p.toks[start:p.pos])
	}
	if p.peek().Is(";") {
		// Opaque declaration.
		p.next()
		return
	}
	if !p.peek().Is("{") {
		p.errorf(symbols.SyntaxError, kw, n.Name, "expected '{' in enum definition")
		p.skipStatement()
		return
	}
	if n.Name == "" && pre.typedef {
		n.Name = p.typedefName()
	}
	sc.member(n)
	p.next()
	p.sink.Enter(n)

	start := p.pos
	if !p.skipBalancedFrom(1) {
		p.errorf(symbols.ScopeMismatchError, p.peek(), n.Name, "unexpected end of input: missing '}'")
		p.eof = true
		return
	}
	closing := p.prev()
	body := p.toks[start : p.pos-1]
	p.enumerators(body)
	n.Span = span(pre.first, closing)
	p.sink.Leave(endPos(closing))

	p.trailingDeclarators(sc, pre, n, closing)
}

// skipBalancedFrom consumes tokens until the brace depth, starting at
// depth, returns to zero.
func (p *Parser) skipBalancedFrom(depth int) bool {
	for {
		t := p.next()
		switch {
		case t.Kind == lexer.EOF:
			return false
		case t.Is("{"):
			depth++
		case t.Is("}"):
			depth--
			if depth == 0 {
				return true
			}
		}
	}
}

func (p *Parser) enumerators(body []token) {
	parts := splitTop(body, ",")
	for i, part := range parts {
		tail := part
		if i < len(parts)-1 {
			// The separating comma carries `A, ///< doc`.
			tail = part[:len(part)+1]
		}
		part = stripAttributes(part)
		if len(part) == 0 {
			continue
		}
		if part[0].Kind != lexer.Identifier {
			p.errorf(symbols.SyntaxError, part[0], render(part), "invalid enumerator")
			continue
		}
		e := &symbols.Node{
			Kind: symbols.KindEnumerator,
			Name: part[0].Text,
			Doc:  part[0].Doc,
			Span: span(part[0], part[len(part)-1]),
		}
		if len(part) > 2 && part[1].Is("=") {
			e.Value = render(part[2:])
		}
		if e.Doc.Empty() {
			e.Doc = trailingDoc(tail)
		}
		p.sink.Declare(e)
	}
}

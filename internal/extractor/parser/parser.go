// Package parser recognises C++ declaration shapes in an annotated token
// stream and reports them to a Sink as scope and declaration events.
package parser

import (
	"github.com/mvp-joe/cppdoc/internal/extractor/lexer"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// Sink receives declarations in source order. Enter returns the node that
// becomes the current scope, which may be an existing node when a namespace
// is reopened.
type Sink interface {
	Enter(n *symbols.Node) *symbols.Node
	Declare(n *symbols.Node)
	Leave(end symbols.Position)
	Scope() string
}

// scope is the parse context of one body. It is passed by value so that the
// access cursor and group label never leak out of the body they belong to.
type scope struct {
	kind   symbols.Kind
	name   string
	access symbols.Access
	group  string
	braced bool
}

func (s scope) member(n *symbols.Node) {
	if s.kind.IsRecord() {
		n.Access = s.access
	}
	n.Group = s.group
}

func defaultAccess(k symbols.Kind) symbols.Access {
	switch k {
	case symbols.KindClass:
		return symbols.AccessPrivate
	case symbols.KindStruct, symbols.KindUnion:
		return symbols.AccessPublic
	}
	return symbols.AccessNone
}

// prefix carries what was consumed before the declaration proper.
type prefix struct {
	first    token
	doc      symbols.DocComment
	template []symbols.TemplateParam
	typedef  bool
	extern   bool
}

// Parser is a single-use recursive descent recogniser.
type Parser struct {
	toks   []token
	pos    int
	sink   Sink
	report *symbols.Report
	eof    bool
}

// Parse walks toks and reports declarations to sink and problems to r.
func Parse(toks []token, sink Sink, r *symbols.Report) {
	if n := len(toks); n == 0 || toks[n-1].Kind != lexer.EOF {
		var last token
		if n > 0 {
			last = toks[n-1]
		}
		toks = append(toks, token{Token: lexer.Token{Kind: lexer.EOF, Offset: last.End, End: last.End, Line: last.EndLine, EndLine: last.EndLine}})
	}
	p := &Parser{toks: toks, sink: sink, report: r}
	p.body(scope{kind: symbols.KindRoot})
}

func (p *Parser) peek() token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) prev() token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *Parser) errorf(kind symbols.DiagnosticKind, at token, text string, format string, args ...any) {
	p.report.Add(kind, at.Pos(), text, p.sink.Scope(), format, args...)
}

// body parses declarations until the closing brace of a braced scope or
// end of input. It reports false when input ended inside the scope.
func (p *Parser) body(sc scope) bool {
	for !p.eof {
		t := p.peek()
		switch {
		case t.Kind == lexer.EOF:
			if sc.braced {
				p.errorf(symbols.ScopeMismatchError, t, "", "unexpected end of input: missing '}'")
				p.eof = true
				return false
			}
			return true
		case t.Is("}"):
			if sc.braced {
				return true
			}
			p.errorf(symbols.ScopeMismatchError, t, t.Text, "unmatched '}'")
			p.next()
		case t.Is(";"), t.Kind == lexer.Directive, t.Kind == lexer.Error:
			p.next()
		case sc.kind.IsRecord() && isAccess(t) && p.peekAt(1).Is(":"):
			sc.access = accessOf(t)
			p.next()
			p.next()
		default:
			if t.HasGroup {
				sc.group = t.Group
			}
			p.declaration(&sc, prefix{first: t, doc: t.Doc})
		}
	}
	return false
}

func isAccess(t token) bool {
	return t.Is("public") || t.Is("protected") || t.Is("private")
}

func accessOf(t token) symbols.Access {
	switch t.Text {
	case "public":
		return symbols.AccessPublic
	case "protected":
		return symbols.AccessProtected
	}
	return symbols.AccessPrivate
}

// declaration dispatches on the leading keyword.
func (p *Parser) declaration(sc *scope, pre prefix) {
	t := p.peek()
	if pre.doc.Empty() {
		pre.doc = t.Doc
	}
	switch {
	case t.Is("template"):
		p.templated(sc, pre)
	case t.Is("namespace"), t.Is("inline") && p.peekAt(1).Is("namespace"):
		p.namespace(sc, pre)
	case t.Is("extern") && p.peekAt(1).Kind == lexer.String:
		p.linkage(sc, pre)
	case (t.Is("class") || t.Is("struct") || t.Is("union")) && p.recordAhead():
		p.record(sc, pre)
	case t.Is("enum") && p.enumAhead():
		p.enum(sc, pre)
	case t.Is("using"):
		p.using(sc, pre)
	case t.Is("typedef"):
		p.next()
		pre.typedef = true
		if (p.peek().Is("class") || p.peek().Is("struct") || p.peek().Is("union")) && p.recordAhead() {
			p.record(sc, pre)
			return
		}
		if p.peek().Is("enum") && p.enumAhead() {
			p.enum(sc, pre)
			return
		}
		p.generic(sc, pre)
	case t.Is("friend"), t.Is("static_assert"), isForward(p):
		p.skipStatement()
	default:
		p.generic(sc, pre)
	}
}

// isForward reports a forward declaration such as `class Foo;`.
func isForward(p *Parser) bool {
	t := p.peek()
	if !(t.Is("class") || t.Is("struct") || t.Is("union") || t.Is("enum")) {
		return false
	}
	for i := 1; ; i++ {
		u := p.peekAt(i)
		switch {
		case u.Is(";"):
			return true
		case u.Kind == lexer.Identifier, u.Is("::"), u.Is("class"), u.Is("struct"):
			continue
		}
		return false
	}
}

func (p *Parser) templated(sc *scope, pre prefix) {
	p.next()
	if !p.peek().Is("<") {
		// Explicit instantiation.
		p.skipStatement()
		return
	}
	params, ok := p.templateParams()
	if !ok {
		return
	}
	pre.template = params
	if p.peek().Is("requires") {
		p.skipRequires()
	}
	p.declaration(sc, pre)
}

// skipRequires drops a requires-clause preceding a declaration.
func (p *Parser) skipRequires() {
	p.next()
	for {
		switch t := p.peek(); {
		case t.Is("("):
			p.skipBalanced("(", ")")
		case t.Kind == lexer.Identifier:
			p.next()
			for p.peek().Is("::") && p.peekAt(1).Kind == lexer.Identifier {
				p.next()
				p.next()
			}
			if p.peek().Is("<") {
				p.skipBalanced("<", ">")
			}
		default:
			return
		}
		if !p.peek().Is("&&") && !p.peek().Is("||") {
			return
		}
		p.next()
	}
}

func (p *Parser) namespace(sc *scope, pre prefix) {
	if p.peek().Is("inline") {
		p.next()
	}
	kw := p.next()

	var names []string
	for {
		t := p.peek()
		switch {
		case t.Kind == lexer.Identifier:
			names = append(names, t.Text)
			p.next()
			continue
		case t.Is("::"), t.Is("inline"):
			p.next()
			continue
		}
		break
	}

	if p.peek().Is("=") {
		p.next()
		start := p.pos
		p.skipStatement()
		alias := &symbols.Node{
			Kind: symbols.KindAlias,
			Doc:  pre.doc,
			Span: span(pre.first, p.prev()),
			Type: render(trimSemicolon(p.toks[start:p.pos])),
		}
		if len(names) > 0 {
			alias.Name = names[len(names)-1]
		}
		sc.member(alias)
		p.sink.Declare(alias)
		return
	}
	if !p.peek().Is("{") {
		p.errorf(symbols.SyntaxError, kw, kw.Text, "expected '{' after namespace")
		p.skipStatement()
		return
	}
	open := p.next()
	if len(names) == 0 {
		names = []string{""}
	}
	for i, name := range names {
		n := &symbols.Node{Kind: symbols.KindNamespace, Name: name, Span: span(pre.first, open)}
		if i == len(names)-1 {
			n.Doc = pre.doc
		}
		p.sink.Enter(n)
	}
	if !p.body(scope{kind: symbols.KindNamespace, name: names[len(names)-1], braced: true}) {
		return
	}
	closing := p.next()
	for range names {
		p.sink.Leave(endPos(closing))
	}
}

// linkage handles `extern "C"` blocks and prefixes.
func (p *Parser) linkage(sc *scope, pre prefix) {
	p.next()
	p.next()
	if !p.peek().Is("{") {
		pre.extern = true
		p.declaration(sc, pre)
		return
	}
	p.next()
	inner := *sc
	inner.braced = true
	if !p.body(inner) {
		return
	}
	p.next()
}

func (p *Parser) using(sc *scope, pre prefix) {
	kw := p.next()
	if p.peek().Is("namespace") || !(p.peek().Kind == lexer.Identifier && p.peekAt(1).Is("=")) {
		// using-directive or using-declaration; neither declares a new name.
		p.skipStatement()
		return
	}
	name := p.next()
	p.next()
	start := p.pos
	p.skipStatement()
	n := &symbols.Node{
		Kind:     symbols.KindAlias,
		Name:     name.Text,
		Doc:      pre.doc,
		Span:     span(pre.first, p.prev()),
		Template: pre.template,
		Type:     render(stripAttributes(trimSemicolon(p.toks[start:p.pos]))),
	}
	if n.Doc.Empty() {
		n.Doc = trailingDoc(p.toks[start:p.pos])
	}
	if n.Type == "" {
		p.errorf(symbols.SyntaxError, kw, name.Text, "alias has no target type")
		return
	}
	sc.member(n)
	p.sink.Declare(n)
}

// skipStatement consumes tokens up to and including the next `;` at the
// current depth, or up to an unmatched `}` or a lexical error. A braced
// block ends the statement unless a `;` follows it directly. A documented
// token or a declaration on a later line ends an unterminated statement
// with a SyntaxError.
func (p *Parser) skipStatement() {
	start := p.pos
	for {
		t := p.peek()
		switch {
		case t.Kind == lexer.EOF, t.Kind == lexer.Error, t.Is("}"):
			return
		case p.pos > start && (len(t.Doc) > 0 || (endsOperand(p.prev()) && startsDeclaration(p.prev(), t, p.peekAt(1)))):
			p.errorf(symbols.SyntaxError, p.toks[start], truncateText(render(p.toks[start:p.pos])), "expected ';' at end of statement")
			return
		case t.Is(";"):
			p.next()
			return
		case t.Is("{"):
			if !p.skipBalanced("{", "}") {
				return
			}
			if p.peek().Is(";") {
				p.next()
			}
			return
		case t.Is("("):
			if !p.skipBalanced("(", ")") {
				return
			}
		default:
			p.next()
		}
	}
}

// skipBalanced consumes a bracketed group starting at the current token.
func (p *Parser) skipBalanced(open, closeTok string) bool {
	depth := 0
	for {
		t := p.peek()
		switch {
		case t.Kind == lexer.EOF:
			return false
		case t.Is(open):
			depth++
		case t.Is(closeTok):
			depth--
			if depth == 0 {
				p.next()
				return true
			}
		}
		p.next()
	}
}

func trimSemicolon(toks []token) []token {
	if n := len(toks); n > 0 && toks[n-1].Is(";") {
		return toks[:n-1]
	}
	return toks
}

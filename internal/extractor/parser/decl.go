package parser

import (
	"github.com/mvp-joe/cppdoc/internal/extractor/lexer"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// templateParams parses `<...>` at the cursor. An explicit specialization
// header `template<>` yields an empty, non-nil list.
func (p *Parser) templateParams() ([]symbols.TemplateParam, bool) {
	open := p.next()
	start := p.pos
	angle, paren := 1, 0
	for angle > 0 {
		t := p.peek()
		switch {
		case t.Kind == lexer.EOF:
			p.errorf(symbols.SyntaxError, open, "template", "unterminated template parameter list")
			return nil, false
		case t.Is("("):
			paren++
		case t.Is(")"):
			paren--
		case t.Is("<") && paren == 0:
			angle++
		case t.Is(">") && paren == 0:
			angle--
		}
		p.next()
	}
	toks := p.toks[start : p.pos-1]

	params := []symbols.TemplateParam{}
	if len(toks) == 0 {
		return params, true
	}
	for _, part := range splitTop(toks, ",") {
		if len(part) == 0 {
			p.errorf(symbols.SyntaxError, open, render(toks), "empty template parameter")
			continue
		}
		params = append(params, templateParam(part))
	}
	return params, true
}

func templateParam(part []token) symbols.TemplateParam {
	var tp symbols.TemplateParam
	if eq := indexTop(part, func(t token) bool { return t.Is("=") }); eq >= 0 {
		tp.Default = render(part[eq+1:])
		part = part[:eq]
	}

	if part[0].Is("template") {
		tp.Kind = symbols.TemplateTemplate
		// template<...> class [...] [Name]
		rest := part[1:]
		if len(rest) > 0 && rest[0].Is("<") {
			if end := matching(rest, 0); end >= 0 {
				rest = rest[end+1:]
			}
		}
		tp.Type = render(part[:len(part)-len(rest)])
		for _, t := range rest {
			switch {
			case t.Is("..."):
				tp.Variadic = true
			case t.Kind == lexer.Identifier:
				tp.Name = t.Text
			}
		}
		return tp
	}

	if (part[0].Is("typename") || part[0].Is("class")) && isTypeParam(part[1:]) {
		tp.Kind = symbols.TemplateType
		tp.Type = part[0].Text
		for _, t := range part[1:] {
			switch {
			case t.Is("..."):
				tp.Variadic = true
			case t.Kind == lexer.Identifier:
				tp.Name = t.Text
			}
		}
		return tp
	}

	// Non-type, or a constrained type parameter such as `std::integral T`.
	tp.Kind = symbols.TemplateNonType
	var typ []token
	for i, t := range part {
		switch {
		case t.Is("..."):
			tp.Variadic = true
		case i == len(part)-1 && i > 0 && t.Kind == lexer.Identifier && !part[i-1].Is("::"):
			tp.Name = t.Text
		default:
			typ = append(typ, t)
		}
	}
	tp.Type = render(typ)
	return tp
}

// isTypeParam reports whether the tokens after `typename`/`class` are an
// optional pack ellipsis and an optional name, as opposed to the start of a
// dependent type like `typename T::type N`.
func isTypeParam(rest []token) bool {
	if len(rest) > 0 && rest[0].Is("...") {
		rest = rest[1:]
	}
	switch len(rest) {
	case 0:
		return true
	case 1:
		return rest[0].Kind == lexer.Identifier
	}
	return false
}

var leadingSpecifiers = map[string]bool{
	"virtual": true, "static": true, "inline": true, "explicit": true,
	"constexpr": true, "consteval": true, "constinit": true, "friend": true,
	"extern": true, "mutable": true, "thread_local": true, "register": true,
}

var builtinTypes = map[string]bool{
	"void": true, "bool": true, "char": true, "char8_t": true, "char16_t": true,
	"char32_t": true, "wchar_t": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true, "auto": true,
}

var declarationKeywords = map[string]bool{
	"class": true, "struct": true, "union": true, "enum": true, "namespace": true,
	"template": true, "typedef": true, "using": true,
}

// run is the token range of one declaration up to its terminator.
type run struct {
	toks       []token
	tail       []token
	definition symbols.Definition
	ok         bool

	// lexical is set when a lexical error token cut the run short.
	lexical bool
}

// collect scans one declaration. A function body is consumed and marks the
// run Defined. The run is unterminated when input ends, when a lexical
// error token is reached, when a documented token or a declaration on a
// later line starts a new statement, or when the enclosing scope closes.
func (p *Parser) collect() run {
	start := p.pos
	var n nesting
	var prev token
	sawParams, sawAssign, initList := false, false, false
	for {
		t := p.peek()
		switch {
		case t.Kind == lexer.EOF:
			return run{toks: p.toks[start:p.pos]}
		case t.Kind == lexer.Error:
			return run{toks: p.toks[start:p.pos], lexical: true}
		case t.Is("}") && !n.inBraces():
			return run{toks: p.toks[start:p.pos]}
		case p.pos > start && len(t.Doc) > 0 && n.statementLevel():
			return run{toks: p.toks[start:p.pos]}
		case p.pos > start && n.statementLevel() && endsOperand(prev) &&
			startsDeclaration(prev, t, p.peekAt(1)) && !annotationOnly(p.toks[start:p.pos]):
			return run{toks: p.toks[start:p.pos]}
		}

		if n.statementLevel() {
			switch {
			case t.Is(";"):
				r := run{toks: p.toks[start:p.pos], ok: true}
				p.next()
				r.tail = p.toks[p.pos-1 : p.pos]
				return r
			case t.Is("{") && sawParams && !sawAssign && (!initList || prev.Is(")") || prev.Is("}")):
				r := run{toks: p.toks[start:p.pos], definition: symbols.Defined, ok: true}
				if !p.skipBalanced("{", "}") {
					r.ok = false
					return r
				}
				r.tail = p.toks[p.pos-1 : p.pos]
				if p.peek().Is(";") {
					p.next()
					r.tail = p.toks[p.pos-2 : p.pos]
				}
				return r
			}
		}

		if n.flat() {
			switch {
			case t.Is("(") && !sawAssign && (prev.Kind != lexer.Keyword || prev.Is("operator")):
				sawParams = true
			case t.Is("=") && !prev.Is("operator"):
				sawAssign = true
			case t.Is(":") && sawParams && !sawAssign:
				initList = true
			}
		}
		n.feed(prev, t)
		prev = t
		p.next()
	}
}

// endsOperand reports whether t can be the last token of an expression or
// a declarator.
func endsOperand(t token) bool {
	return t.Kind == lexer.Identifier || t.Kind.IsLiteral() || t.Is(")") || t.Is("]")
}

// startsDeclaration reports whether t, on a line after prev, opens a new
// declaration: a declaration keyword, a builtin type, a leading specifier,
// or a type name followed by a declarator name.
func startsDeclaration(prev, t, next token) bool {
	if t.Line <= prev.EndLine {
		return false
	}
	switch t.Kind {
	case lexer.Keyword:
		return declarationKeywords[t.Text] || builtinTypes[t.Text] || leadingSpecifiers[t.Text]
	case lexer.Identifier:
		return next.Kind == lexer.Identifier && next.Line == t.Line &&
			!virtSpecifier(t) && !virtSpecifier(next)
	}
	return false
}

func virtSpecifier(t token) bool {
	return t.Kind == lexer.Identifier && (t.Text == "override" || t.Text == "final")
}

// annotationOnly reports a run holding only attributes and at most one
// bare identifier, such as an export macro on the line before the
// declaration it marks.
func annotationOnly(toks []token) bool {
	toks = stripAttributes(toks)
	return len(toks) == 0 || (len(toks) == 1 && toks[0].Kind == lexer.Identifier)
}

// generic handles functions, methods, constructors, destructors, fields,
// variables and typedefs.
func (p *Parser) generic(sc *scope, pre prefix) {
	r := p.collect()
	if r.lexical {
		// Already reported by the lexer; body skips the error token.
		return
	}
	if !r.ok {
		text := render(r.toks)
		if len(r.toks) == 0 {
			text = pre.first.Text
		}
		p.errorf(symbols.SyntaxError, pre.first, truncateText(text), "expected ';' at end of declaration")
		if len(r.toks) == 0 && p.peek().Kind != lexer.EOF && !p.peek().Is("}") {
			p.next()
		}
		return
	}

	toks := stripAttributes(r.toks)
	var specifiers []string
	if pre.extern {
		specifiers = append(specifiers, `extern "C"`)
	}
	for len(toks) > 0 && leadingSpecifiers[toks[0].Text] && toks[0].Kind == lexer.Keyword {
		specifiers = append(specifiers, toks[0].Text)
		if toks[0].Is("explicit") && len(toks) > 1 && toks[1].Is("(") {
			if end := matching(toks, 1); end > 0 {
				toks = toks[end+1:]
				continue
			}
		}
		toks = toks[1:]
	}
	if len(toks) == 0 {
		if len(r.toks) > 0 {
			p.errorf(symbols.SyntaxError, pre.first, render(r.toks), "declaration declares nothing")
		}
		return
	}

	doc := pre.doc
	if doc.Empty() {
		doc = trailingDoc(append(append([]token{}, r.toks...), r.tail...))
	}
	last := pre.first
	if len(r.tail) > 0 {
		last = r.tail[len(r.tail)-1]
	} else if len(r.toks) > 0 {
		last = r.toks[len(r.toks)-1]
	}
	d := decl{
		sc:         sc,
		pre:        pre,
		doc:        doc,
		span:       span(pre.first, last),
		specifiers: specifiers,
		definition: r.definition,
	}

	if lp := paramList(toks); lp >= 0 && !pre.typedef {
		if p.callable(d, toks, lp) {
			return
		}
	}
	p.variables(d, toks)
}

// decl carries the shared attributes of one declaration statement.
type decl struct {
	sc         *scope
	pre        prefix
	doc        symbols.DocComment
	span       symbols.Span
	specifiers []string
	definition symbols.Definition
}

// paramList returns the index of the `(` opening a function parameter list,
// or -1 when toks declare objects.
func paramList(toks []token) int {
	lp := -1
	walk(toks, func(i int, n *nesting) bool {
		if !n.flat() {
			return true
		}
		t := toks[i]
		switch {
		case t.Is("=") && (i == 0 || !toks[i-1].Is("operator")):
			return false
		case t.Is("operator"):
			j := i + 1
			if j+1 < len(toks) && toks[j].Is("(") && toks[j+1].Is(")") {
				j += 2
			}
			for ; j < len(toks); j++ {
				if toks[j].Is("(") {
					lp = j
					break
				}
			}
			return false
		case t.Is("("):
			if i == 0 || pointerDeclarator(toks, i) {
				return false
			}
			prev := toks[i-1]
			if prev.Kind == lexer.Identifier || prev.Is(">") {
				lp = i
				return false
			}
		}
		return true
	})
	return lp
}

// pointerDeclarator reports `(*name)`, `(&name)` or `(Class::*name)` at i.
func pointerDeclarator(toks []token, i int) bool {
	j := i + 1
	for j+1 < len(toks) && toks[j].Kind == lexer.Identifier && toks[j+1].Is("::") {
		j += 2
	}
	return j < len(toks) && (toks[j].Is("*") || toks[j].Is("&") || toks[j].Is("&&") || toks[j].Is("^"))
}

// callable builds a function-like node. It returns false when the shape
// turns out to be a direct-initialised variable.
func (p *Parser) callable(d decl, toks []token, lp int) bool {
	rp := matching(toks, lp)
	if rp < 0 {
		p.errorf(symbols.SyntaxError, toks[lp], render(toks), "unbalanced parentheses in declaration")
		return true
	}

	// Locate the declarator name, walking back over qualifiers.
	var nameStart int
	var name string
	if op := operatorIndex(toks[:lp]); op >= 0 {
		nameStart = op
		name = compact(toks[op:lp])
	} else {
		end := lp - 1
		if toks[end].Is(">") {
			if open := matchingBack(toks, end); open > 0 {
				end = open - 1
			}
		}
		nameStart = end
		name = toks[end].Text
	}
	destructor := nameStart > 0 && toks[nameStart-1].Is("~")
	if destructor {
		nameStart--
		name = "~" + name
	}
	var qualifiers []string
	for nameStart >= 2 && toks[nameStart-1].Is("::") {
		q := nameStart - 2
		if toks[q].Is(">") {
			open := matchingBack(toks, q)
			if open <= 0 {
				break
			}
			q = open - 1
		}
		if toks[q].Kind != lexer.Identifier {
			break
		}
		qualifiers = append([]string{compact(toks[q : nameStart-1])}, qualifiers...)
		nameStart = q
	}
	if nameStart > 0 && toks[nameStart-1].Is("::") {
		// Leading `::` for the global namespace.
		nameStart--
	}

	params, variadic, direct := p.params(toks[lp+1 : rp])
	if direct && !destructor {
		return false
	}

	sig := &symbols.Signature{Params: params, Variadic: variadic, Return: render(toks[:nameStart])}
	definition := d.definition
	rest := toks[rp+1:]
loop:
	for i := 0; i < len(rest); i++ {
		t := rest[i]
		switch {
		case t.Is("const"), t.Is("volatile"), t.Is("&"), t.Is("&&"):
			sig.Qualifiers = append(sig.Qualifiers, t.Text)
		case virtSpecifier(t):
			sig.Qualifiers = append(sig.Qualifiers, t.Text)
		case t.Is("noexcept"), t.Is("throw"):
			q := []token{t}
			if i+1 < len(rest) && rest[i+1].Is("(") {
				if end := matching(rest, i+1); end > 0 {
					q = rest[i : end+1]
					i = end
				}
			}
			sig.Qualifiers = append(sig.Qualifiers, compact(q))
		case t.Is("->"):
			end := i + 1
			for end < len(rest) && !rest[end].Is("=") && !rest[end].Is("requires") &&
				!virtSpecifier(rest[end]) {
				end++
			}
			sig.Return = render(rest[i+1 : end])
			i = end - 1
		case t.Is("=") && i+1 < len(rest):
			switch v := rest[i+1]; {
			case v.Is("default"):
				definition = symbols.Defaulted
			case v.Is("delete"):
				definition = symbols.Deleted
			case v.Kind == lexer.Number && v.Text == "0":
				definition = symbols.Pure
			}
			break loop
		case t.Is(":") && definition == symbols.Defined, t.Is("try"), t.Is("requires"):
			// Member initialisers, function-try-block or trailing constraint.
			break loop
		case t.Kind == lexer.Identifier && t.Line == toks[rp].EndLine:
			// Annotation macro, optionally with arguments.
			if i+1 < len(rest) && rest[i+1].Is("(") {
				if end := matching(rest, i+1); end > 0 {
					i = end
				}
			}
		default:
			p.errorf(symbols.SyntaxError, t, truncateText(render(rest[i:])), "unexpected tokens after parameter list of %q", name)
			break loop
		}
	}

	n := &symbols.Node{
		Name:       name,
		Doc:        d.doc,
		Span:       d.span,
		Template:   d.pre.template,
		Signature:  sig,
		Definition: definition,
		Specifiers: d.specifiers,
	}
	if len(qualifiers) > 0 {
		n.Name = joinQualified(qualifiers, name)
	}

	owner := d.sc.name
	if len(qualifiers) > 0 {
		owner = baseOf(qualifiers[len(qualifiers)-1])
	}
	switch {
	case destructor:
		n.Kind = symbols.KindDestructor
		sig.Return = ""
	case sig.Return == "" && operatorIndex(toks[:lp]) >= 0:
		n.Kind = memberKind(d.sc)
	case sig.Return == "" && name == owner && (d.sc.kind.IsRecord() || len(qualifiers) > 0):
		n.Kind = symbols.KindConstructor
	case sig.Return == "":
		p.errorf(symbols.SyntaxError, d.pre.first, render(toks), "declaration of %q has no return type", name)
		return true
	default:
		n.Kind = memberKind(d.sc)
	}

	d.sc.member(n)
	p.sink.Declare(n)
	return true
}

// memberKind classifies a non-special callable. Out-of-class definitions
// keep their qualified name and count as functions of the enclosing scope.
func memberKind(sc *scope) symbols.Kind {
	if sc.kind.IsRecord() {
		return symbols.KindMethod
	}
	return symbols.KindFunction
}

func joinQualified(qualifiers []string, name string) string {
	out := ""
	for _, q := range qualifiers {
		out += q + "::"
	}
	return out + name
}

// baseOf strips template arguments from a qualifier such as `Foo<T>`.
func baseOf(q string) string {
	for i := 0; i < len(q); i++ {
		if q[i] == '<' {
			return q[:i]
		}
	}
	return q
}

// operatorIndex returns the position of a top-level `operator` keyword.
func operatorIndex(toks []token) int {
	return indexTop(toks, func(t token) bool { return t.Is("operator") })
}

// matchingBack returns the index of the `<` opening the `>` at close.
func matchingBack(toks []token, end int) int {
	depth := 0
	for i := end; i >= 0; i-- {
		switch {
		case toks[i].Is(">"):
			depth++
		case toks[i].Is("<"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// params parses a parameter list. direct reports an argument list of
// literals, meaning the declaration is a direct-initialised variable.
func (p *Parser) params(toks []token) (params []symbols.Param, variadic, direct bool) {
	params = []symbols.Param{}
	if len(toks) == 0 || (len(toks) == 1 && toks[0].Is("void")) {
		return params, false, false
	}
	direct = true
	for _, part := range splitTop(toks, ",") {
		part = stripAttributes(part)
		if len(part) == 0 {
			direct = false
			continue
		}
		if !(part[0].Kind.IsLiteral() || part[0].Is("true") || part[0].Is("false") || part[0].Is("nullptr")) {
			direct = false
		}
		if len(part) == 1 && part[0].Is("...") {
			variadic = true
			params = append(params, symbols.Param{Type: "..."})
			continue
		}
		params = append(params, param(part))
	}
	return params, variadic, direct
}

func param(part []token) symbols.Param {
	var prm symbols.Param
	if eq := indexTop(part, func(t token) bool { return t.Is("=") }); eq >= 0 {
		prm.Default = render(part[eq+1:])
		part = part[:eq]
	}
	for _, t := range part {
		if t.Is("...") {
			prm.Variadic = true
			break
		}
	}
	idx := declaratorName(part, false)
	if idx < 0 {
		prm.Type = render(part)
		return prm
	}
	prm.Name = part[idx].Text
	prm.Type = renderWithout(part, idx)
	return prm
}

// declaratorName returns the index of the name declared by part, or -1 for
// an abstract declarator such as `const Foo&`. When typed is set the type
// comes from an earlier declarator, as in the `*b` of `int a, *b`.
func declaratorName(part []token, typed bool) int {
	if i := indexTop(part, func(t token) bool { return t.Is("(") }); i > 0 && pointerDeclarator(part, i) {
		end := matching(part, i)
		for j := end - 1; j > i; j-- {
			if part[j].Kind == lexer.Identifier {
				return j
			}
		}
		return -1
	}

	end := len(part)
	if i := indexTop(part, func(t token) bool { return t.Is("[") || t.Is(":") || t.Is("{") || t.Is("(") || t.Is("=") }); i >= 0 {
		end = i
	}
	i := end - 1
	if i < 0 || part[i].Kind != lexer.Identifier || (i > 0 && part[i-1].Is("::")) {
		return -1
	}
	if typed {
		return i
	}
	for _, t := range part[:i] {
		if t.Kind == lexer.Identifier || builtinTypes[t.Text] || t.Is(">") || t.Is(")") {
			return i
		}
	}
	return -1
}

// renderWithout renders toks with the token at skip removed. A space is
// kept only where the source had one after the removed token.
func renderWithout(toks []token, skip int) string {
	before, after := render(toks[:skip]), render(toks[skip+1:])
	if before == "" || after == "" {
		return before + after
	}
	if toks[skip+1].Offset > toks[skip].End {
		return before + " " + after
	}
	return before + after
}

// variables declares each declarator of an object or typedef statement.
func (p *Parser) variables(d decl, toks []token) {
	var base []token
	for i, part := range splitTop(toks, ",") {
		idx := declaratorName(part, i > 0)
		if idx < 0 {
			if i == 0 {
				p.errorf(symbols.SyntaxError, d.pre.first, render(toks), "unrecognised declaration")
				return
			}
			continue
		}
		if i == 0 {
			b := idx
			for b > 0 && (part[b-1].Is("*") || part[b-1].Is("&") || part[b-1].Is("&&") || part[b-1].Is("(")) {
				b--
			}
			base = part[:b]
		}

		n := &symbols.Node{
			Name:       part[idx].Text,
			Span:       d.span,
			Specifiers: d.specifiers,
		}
		dtoks := part
		rest := part[idx+1:]
		switch at := indexTop(rest, func(t token) bool { return t.Is("=") || t.Is("{") }); {
		case len(rest) > 0 && rest[0].Is("(") && !d.pre.typedef:
			// Direct initialisation.
			n.Value = render(rest)
			dtoks = part[:idx+1]
		case at >= 0 && rest[at].Is("="):
			n.Value = render(rest[at+1:])
			dtoks = part[:idx+1+at]
		case at >= 0:
			n.Value = render(rest[at:])
			dtoks = part[:idx+1+at]
		}
		if colon := indexTop(dtoks, func(t token) bool { return t.Is(":") }); colon > idx {
			// Bit-field width.
			n.Value = render(dtoks[colon+1:])
			dtoks = dtoks[:colon]
		}
		n.Type = renderWithout(dtoks, idx)
		if i > 0 {
			n.Type = joinType(render(base), n.Type)
		} else {
			n.Doc = d.doc
			n.Template = d.pre.template
		}
		switch {
		case d.pre.typedef:
			n.Kind = symbols.KindAlias
		case d.sc.kind.IsRecord():
			n.Kind = symbols.KindField
		default:
			n.Kind = symbols.KindVariable
		}
		d.sc.member(n)
		p.sink.Declare(n)
	}
}

func truncateText(s string) string {
	if len(s) > 60 {
		return s[:60]
	}
	return s
}

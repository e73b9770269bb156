package parser

import (
	"strings"

	"github.com/mvp-joe/cppdoc/internal/extractor/comments"
	"github.com/mvp-joe/cppdoc/internal/extractor/lexer"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

type token = comments.Token

// nesting tracks bracket depth while scanning. Angle brackets are only
// opened after a name, so comparisons inside parentheses are discarded when
// the parenthesis closes.
type nesting struct {
	stack []byte
}

func (n *nesting) feed(prev, t token) {
	if t.Kind != lexer.Punct {
		return
	}
	switch t.Text {
	case "(", "[", "{":
		n.stack = append(n.stack, t.Text[0])
	case ")":
		n.popTo('(')
	case "]":
		n.popTo('[')
	case "}":
		n.popTo('{')
	case "<":
		if prev.Kind == lexer.Identifier || prev.Is("template") {
			n.stack = append(n.stack, '<')
		}
	case ">":
		if n.top() == '<' {
			n.stack = n.stack[:len(n.stack)-1]
		}
	}
}

func (n *nesting) popTo(open byte) {
	for len(n.stack) > 0 {
		top := n.stack[len(n.stack)-1]
		n.stack = n.stack[:len(n.stack)-1]
		if top == open {
			return
		}
	}
}

func (n *nesting) top() byte {
	if len(n.stack) == 0 {
		return 0
	}
	return n.stack[len(n.stack)-1]
}

// flat reports whether no bracket of any kind is open.
func (n *nesting) flat() bool {
	return len(n.stack) == 0
}

// statementLevel reports whether no parenthesis, bracket or brace is open;
// unmatched angle brackets are ignored.
func (n *nesting) statementLevel() bool {
	for _, b := range n.stack {
		if b != '<' {
			return false
		}
	}
	return true
}

func (n *nesting) inBraces() bool {
	for _, b := range n.stack {
		if b == '{' {
			return true
		}
	}
	return false
}

// walk calls fn for each token with the nesting state as it is before the
// token is fed. Returning false stops the walk.
func walk(toks []token, fn func(i int, n *nesting) bool) {
	var n nesting
	var prev token
	for i, t := range toks {
		if !fn(i, &n) {
			return
		}
		n.feed(prev, t)
		prev = t
	}
}

// splitTop splits toks at top-level occurrences of sep.
func splitTop(toks []token, sep string) [][]token {
	var parts [][]token
	start := 0
	walk(toks, func(i int, n *nesting) bool {
		if n.flat() && toks[i].Is(sep) {
			parts = append(parts, toks[start:i])
			start = i + 1
		}
		return true
	})
	return append(parts, toks[start:])
}

// indexTop returns the index of the first top-level token satisfying pred.
func indexTop(toks []token, pred func(token) bool) int {
	idx := -1
	walk(toks, func(i int, n *nesting) bool {
		if n.flat() && pred(toks[i]) {
			idx = i
			return false
		}
		return true
	})
	return idx
}

// matching returns the index of the bracket closing the one at open.
func matching(toks []token, open int) int {
	closer := map[string]string{"(": ")", "[": "]", "{": "}", "<": ">"}[toks[open].Text]
	opener := toks[open].Text
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].Is(opener):
			depth++
		case toks[i].Is(closer):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// render joins tokens, keeping a single space where the source had any
// whitespace or comment between them.
func render(toks []token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && t.Offset > toks[i-1].End {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// compact joins tokens without separators, for qualified names.
func compact(toks []token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && needsSpace(toks[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func needsSpace(a, b token) bool {
	word := func(t token) bool { return t.Kind == lexer.Identifier || t.Kind == lexer.Keyword }
	return word(a) && word(b)
}

func endPos(t token) symbols.Position {
	pos := symbols.Position{Offset: t.End, Line: t.EndLine, Col: t.Col + len(t.Text)}
	if i := strings.LastIndexByte(t.Text, '\n'); i >= 0 {
		pos.Col = len(t.Text) - i
	}
	return pos
}

func span(first, last token) symbols.Span {
	return symbols.Span{Start: first.Pos(), End: endPos(last)}
}

// stripAttributes drops `[[...]]`, `alignas(...)`, `__attribute__((...))`
// and `__declspec(...)` groups.
func stripAttributes(toks []token) []token {
	out := make([]token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Is("[") && i+1 < len(toks) && toks[i+1].Is("["):
			if end := matching(toks, i); end > 0 {
				i = end
				continue
			}
		case (t.Is("alignas") || t.Text == "__attribute__" || t.Text == "__declspec") && i+1 < len(toks) && toks[i+1].Is("("):
			if end := matching(toks, i+1); end > 0 {
				i = end
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func trailingDoc(toks []token) symbols.DocComment {
	for _, t := range toks {
		if len(t.TrailingDoc) > 0 {
			return t.TrailingDoc
		}
	}
	return nil
}

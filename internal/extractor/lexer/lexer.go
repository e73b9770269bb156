package lexer

import (
	"iter"
	"strings"
)

// punctuation longest-first; `>>` is deliberately absent so that nested
// template closers stay separate tokens.
var punctuation = []string{
	"<=>", "...", "<<=", "->*",
	"::", "->", "&&", "||", "<<", "==", "!=", "<=", ">=", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ".*", "##",
}

// Lexer produces tokens lazily from a source buffer. It never stops early:
// malformed input yields Error tokens and lexing continues after them.
type Lexer struct {
	src []byte

	off, line, col int
	lineStart      bool
}

// New returns a lexer positioned at the start of src.
func New(src []byte) *Lexer {
	l := &Lexer{src: src}
	l.Reset()
	return l
}

// Reset restarts the token sequence from the beginning of the source.
func (l *Lexer) Reset() {
	l.off, l.line, l.col = 0, 1, 1
	l.lineStart = true
}

// All resets the lexer and yields every token up to and including EOF.
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		l.Reset()
		for {
			tok := l.Next()
			if !yield(tok) || tok.Kind == EOF {
				return
			}
		}
	}
}

// Tokenize lexes the whole of src.
func Tokenize(src []byte) []Token {
	var toks []Token
	for tok := range New(src).All() {
		toks = append(toks, tok)
	}
	return toks
}

// Next returns the next token. After EOF it keeps returning EOF.
func (l *Lexer) Next() Token {
	l.skipSpace()
	if l.off >= len(l.src) {
		return Token{Kind: EOF, Offset: l.off, End: l.off, Line: l.line, Col: l.col, EndLine: l.line}
	}

	start, line, col := l.off, l.line, l.col
	c := l.src[l.off]
	lineStart := l.lineStart
	l.lineStart = false

	kind, msg := l.scan(c, lineStart)

	tok := Token{
		Kind:    kind,
		Text:    string(l.src[start:l.off]),
		Offset:  start,
		End:     l.off,
		Line:    line,
		Col:     col,
		EndLine: l.line,
		Message: msg,
	}
	if tok.End > tok.Offset && l.src[tok.End-1] == '\n' {
		tok.EndLine--
	}
	return tok
}

func (l *Lexer) scan(c byte, lineStart bool) (Kind, string) {
	switch {
	case c == '#' && lineStart:
		l.directive()
		return Directive, ""
	case c == '/' && l.peek(1) == '/':
		l.untilNewline()
		return Comment, ""
	case c == '/' && l.peek(1) == '*':
		if !l.blockComment() {
			return Error, "unterminated comment"
		}
		return Comment, ""
	case isIdentStart(c):
		return l.identifier()
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		l.number()
		return Number, ""
	case c == '"':
		if !l.quoted('"') {
			return Error, "unterminated string literal"
		}
		return String, ""
	case c == '\'':
		if !l.quoted('\'') {
			return Error, "unterminated character literal"
		}
		return Char, ""
	}

	for _, p := range punctuation {
		if l.hasPrefix(p) {
			l.advance(len(p))
			return Punct, ""
		}
	}
	if strings.IndexByte("{}[]()<>;:,.=+-*/%&|^!~?", c) >= 0 {
		l.advance(1)
		return Punct, ""
	}
	l.advance(1)
	return Error, "unexpected character"
}

func (l *Lexer) identifier() (Kind, string) {
	start := l.off
	for l.off < len(l.src) && isIdentPart(l.src[l.off]) {
		l.advance(1)
	}
	word := string(l.src[start:l.off])

	if l.off < len(l.src) {
		switch next := l.src[l.off]; {
		case next == '"' && (word == "R" || word == "u8R" || word == "uR" || word == "UR" || word == "LR"):
			if !l.rawString() {
				return Error, "unterminated raw string literal"
			}
			return String, ""
		case (next == '"' || next == '\'') && (word == "u8" || word == "u" || word == "U" || word == "L"):
			if !l.quoted(next) {
				return Error, "unterminated string literal"
			}
			if next == '\'' {
				return Char, ""
			}
			return String, ""
		}
	}

	if IsKeyword(word) {
		return Keyword, ""
	}
	return Identifier, ""
}

func (l *Lexer) number() {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case isIdentPart(c) || c == '.':
			l.advance(1)
		case c == '\'' && isIdentPart(l.peek(1)):
			l.advance(1)
		case (c == '+' || c == '-') && l.off > 0 && strings.IndexByte("eEpP", l.src[l.off-1]) >= 0:
			l.advance(1)
		default:
			return
		}
	}
}

// quoted consumes a string or char literal. The literal may not span lines.
func (l *Lexer) quoted(q byte) bool {
	l.advance(1)
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch c {
		case '\\':
			if l.peek(1) == '\n' || l.off+1 >= len(l.src) {
				l.advance(1)
				continue
			}
			l.advance(2)
		case '\n':
			return false
		case q:
			l.advance(1)
			return true
		default:
			l.advance(1)
		}
	}
	return false
}

func (l *Lexer) rawString() bool {
	l.advance(1)
	open := l.off
	for l.off < len(l.src) && l.src[l.off] != '(' && l.src[l.off] != '\n' {
		l.advance(1)
	}
	if l.off >= len(l.src) || l.src[l.off] != '(' {
		return false
	}
	closing := ")" + string(l.src[open:l.off]) + `"`
	l.advance(1)
	idx := strings.Index(string(l.src[l.off:]), closing)
	if idx < 0 {
		l.advance(len(l.src) - l.off)
		return false
	}
	l.advance(idx + len(closing))
	return true
}

func (l *Lexer) blockComment() bool {
	l.advance(2)
	for l.off < len(l.src) {
		if l.src[l.off] == '*' && l.peek(1) == '/' {
			l.advance(2)
			return true
		}
		l.advance(1)
	}
	return false
}

func (l *Lexer) directive() {
	for l.off < len(l.src) {
		c := l.src[l.off]
		if c == '\\' && l.peek(1) == '\n' {
			l.advance(2)
			continue
		}
		if c == '\n' {
			return
		}
		l.advance(1)
	}
}

func (l *Lexer) untilNewline() {
	for l.off < len(l.src) && l.src[l.off] != '\n' {
		l.advance(1)
	}
}

func (l *Lexer) skipSpace() {
	for l.off < len(l.src) {
		switch l.src[l.off] {
		case '\n':
			l.lineStart = true
			l.advance(1)
		case ' ', '\t', '\r', '\f', '\v':
			l.advance(1)
		case '\\':
			if l.peek(1) == '\n' {
				l.advance(2)
				continue
			}
			return
		default:
			return
		}
	}
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.off < len(l.src); i++ {
		if l.src[l.off] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.off++
	}
}

func (l *Lexer) peek(n int) byte {
	if l.off+n < len(l.src) {
		return l.src[l.off+n]
	}
	return 0
}

func (l *Lexer) hasPrefix(p string) bool {
	return l.off+len(p) <= len(l.src) && string(l.src[l.off:l.off+len(p)]) == p
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

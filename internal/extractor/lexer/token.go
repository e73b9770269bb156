package lexer

import (
	"fmt"

	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Identifier
	Keyword
	Punct
	Number
	String
	Char
	Comment
	Directive
	Error
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "eof"
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case Punct:
		return "punct"
	case Number:
		return "number"
	case String:
		return "string"
	case Char:
		return "char"
	case Comment:
		return "comment"
	case Directive:
		return "directive"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsLiteral reports whether the kind is a literal.
func (k Kind) IsLiteral() bool {
	return k == Number || k == String || k == Char
}

// Token is one lexeme. Offset and End are byte offsets into the source;
// Line and Col locate Offset, EndLine locates the last byte.
type Token struct {
	Kind    Kind
	Text    string
	Offset  int
	End     int
	Line    int
	Col     int
	EndLine int

	// Message explains an Error token.
	Message string
}

// Pos returns the token's start position.
func (t Token) Pos() symbols.Position {
	return symbols.Position{Offset: t.Offset, Line: t.Line, Col: t.Col}
}

// Is reports whether the token is punctuation or a keyword spelled s.
func (t Token) Is(s string) bool {
	return (t.Kind == Punct || t.Kind == Keyword) && t.Text == s
}

// IsName reports whether the token can name a declaration.
func (t Token) IsName() bool {
	return t.Kind == Identifier
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %d:%d", t.Kind, t.Text, t.Line, t.Col)
}

var keywords = map[string]bool{}

func init() {
	for _, kw := range []string{
		"alignas", "alignof", "asm", "auto", "bool", "break", "case", "catch",
		"char", "char8_t", "char16_t", "char32_t", "class", "concept", "const",
		"consteval", "constexpr", "constinit", "const_cast", "continue",
		"co_await", "co_return", "co_yield", "decltype", "default", "delete",
		"do", "double", "dynamic_cast", "else", "enum", "explicit", "export",
		"extern", "false", "float", "for", "friend", "goto", "if", "inline",
		"int", "long", "mutable", "namespace", "new", "noexcept", "nullptr",
		"operator", "private", "protected", "public", "register",
		"reinterpret_cast", "requires", "return", "short", "signed", "sizeof",
		"static", "static_assert", "static_cast", "struct", "switch",
		"template", "this", "thread_local", "throw", "true", "try", "typedef",
		"typeid", "typename", "union", "unsigned", "using", "virtual", "void",
		"volatile", "wchar_t", "while",
	} {
		keywords[kw] = true
	}
}

// IsKeyword reports whether s is a reserved C++ keyword.
func IsKeyword(s string) bool {
	return keywords[s]
}

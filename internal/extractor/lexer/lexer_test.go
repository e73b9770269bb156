package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Lexer:
// - Identifiers, keywords, punctuation and literals are classified
// - `>>` is split into two `>` tokens so nested template closers survive
// - `::`, `...` and `&&` are single tokens
// - Comments are kept as tokens with their full text
// - Line-start `#` lines become one Directive, including continuations
// - Positions track line and column across lines
// - Unterminated string and comment produce Error tokens and lexing continues
// - All() is restartable and always ends with EOF

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func texts(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestTokenize_Classification(t *testing.T) {
	t.Parallel()

	toks := Tokenize([]byte(`int round( long double x ) const; "s" 'c' 1'000u 0x1Fp-3`))

	assert.Equal(t, []string{"int", "round", "(", "long", "double", "x", ")", "const", ";", `"s"`, `'c'`, "1'000u", "0x1Fp-3", ""}, texts(toks))
	assert.Equal(t, []Kind{Keyword, Identifier, Punct, Keyword, Keyword, Identifier, Punct, Keyword, Punct, String, Char, Number, Number, EOF}, kinds(toks))
}

func TestTokenize_TemplateClosersStaySeparate(t *testing.T) {
	t.Parallel()

	toks := Tokenize([]byte("std::vector<std::vector<int>> v;"))

	assert.Equal(t, []string{"std", "::", "vector", "<", "std", "::", "vector", "<", "int", ">", ">", "v", ";", ""}, texts(toks))
}

func TestTokenize_CompoundPunctuation(t *testing.T) {
	t.Parallel()

	toks := Tokenize([]byte("Template( T &&...ts ) -> auto"))

	assert.Equal(t, []string{"Template", "(", "T", "&&", "...", "ts", ")", "->", "auto", ""}, texts(toks))
}

func TestTokenize_CommentsAreTokens(t *testing.T) {
	t.Parallel()

	src := "/// doc line\nint x; // plain\n/** block\n * more\n */"
	toks := Tokenize([]byte(src))

	require.Len(t, toks, 7)
	assert.Equal(t, Comment, toks[0].Kind)
	assert.Equal(t, "/// doc line", toks[0].Text)
	assert.Equal(t, Comment, toks[4].Kind)
	assert.Equal(t, "// plain", toks[4].Text)
	assert.Equal(t, Comment, toks[5].Kind)
	assert.Equal(t, 3, toks[5].Line)
	assert.Equal(t, 5, toks[5].EndLine)
}

func TestTokenize_Directives(t *testing.T) {
	t.Parallel()

	src := "#define TWICE(x) \\\n  ((x) * 2)\nint y; a # b"
	toks := Tokenize([]byte(src))

	require.GreaterOrEqual(t, len(toks), 4)
	assert.Equal(t, Directive, toks[0].Kind)
	assert.Contains(t, toks[0].Text, "((x) * 2)")
	assert.Equal(t, "int", toks[1].Text)
	assert.Equal(t, 3, toks[1].Line)

	// A `#` that does not start a line is not a directive.
	var hash Token
	for _, tok := range toks {
		if tok.Text == "#" {
			hash = tok
		}
	}
	assert.Equal(t, Error, hash.Kind)
}

func TestTokenize_Positions(t *testing.T) {
	t.Parallel()

	toks := Tokenize([]byte("class A\n{\n    int field;\n};"))

	field := toks[4]
	require.Equal(t, "field", field.Text)
	assert.Equal(t, 3, field.Line)
	assert.Equal(t, 9, field.Col)
	assert.Equal(t, 3, field.EndLine)
	assert.Equal(t, field.Offset+len("field"), field.End)
}

func TestTokenize_UnterminatedLiteralsRecover(t *testing.T) {
	t.Parallel()

	toks := Tokenize([]byte("const char *s = \"open;\nint ok;\n/* never closed"))

	var errs []Token
	for _, tok := range toks {
		if tok.Kind == Error {
			errs = append(errs, tok)
		}
	}
	require.Len(t, errs, 2)
	assert.Equal(t, "unterminated string literal", errs[0].Message)
	assert.Equal(t, 1, errs[0].Line)
	assert.Equal(t, "unterminated comment", errs[1].Message)
	assert.Equal(t, 3, errs[1].Line)

	assert.Contains(t, texts(toks), "ok")
	assert.Equal(t, EOF, toks[len(toks)-1].Kind)
}

func TestLexer_AllIsRestartable(t *testing.T) {
	t.Parallel()

	l := New([]byte("namespace N { }"))
	var first, second []Token
	for tok := range l.All() {
		first = append(first, tok)
	}
	for tok := range l.All() {
		second = append(second, tok)
	}

	assert.Equal(t, first, second)
	assert.Equal(t, EOF, first[len(first)-1].Kind)
	assert.Equal(t, EOF, l.Next().Kind)
}

func TestLexer_RawString(t *testing.T) {
	t.Parallel()

	toks := Tokenize([]byte(`auto s = R"x(a "quoted" )" b)x";`))

	assert.Equal(t, []Kind{Keyword, Identifier, Punct, String, Punct, EOF}, kinds(toks))
}

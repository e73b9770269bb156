package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cppdoc/internal/extractor/comments"
	"github.com/mvp-joe/cppdoc/internal/extractor/lexer"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
	"github.com/mvp-joe/cppdoc/internal/extractor/tree"
)

// Test Plan for Declaration Parser:
// - Namespaces: anonymous, nested `a::b`, inline, aliases
// - Records: bases with access and virtual, `final`, access cursor scoped to its own body
// - Constructors with initializer lists and inline bodies, out-of-class constructors
// - Template headers: type, non-type with default, template-template, explicit specialization
// - Functions: trailing return types, noexcept(expr), ref qualifiers, function pointer parameters
// - Objects: direct initialisation, brace initialisation, arrays, function pointer fields
// - typedef of anonymous struct names the struct
// - Skipped statements: forward declarations, friend, static_assert, using-directives
// - Declarations without a return type produce a SyntaxError and parsing continues
// - An unmatched `}` ends an unterminated member so the enclosing class still closes
// - A declaration on a later line ends an unterminated statement even without a doc comment,
//   while multi-line declarations, annotation macros and virt-specifiers stay joined
// - Unexpected tokens after a parameter list are reported and the callable is kept
// - A lexical error ends the statement it appears in

func parse(t *testing.T, src string) (*symbols.Node, *symbols.Report) {
	t.Helper()
	var r symbols.Report
	toks := comments.Collect(lexer.Tokenize([]byte(src)), comments.DefaultOptions(), &r)
	b := tree.New(&r)
	Parse(toks, b, &r)
	return b.Finish(), &r
}

func TestParse_Namespaces(t *testing.T) {
	t.Parallel()

	root, r := parse(t, `
namespace { int hidden; }
namespace outer::inner { void f(); }
inline namespace v1 { int versioned; }
namespace fs = std::filesystem;
`)
	require.Empty(t, r.Diagnostics)

	anon := root.Children[0]
	assert.Equal(t, symbols.KindNamespace, anon.Kind)
	assert.Equal(t, "", anon.Name)
	assert.Equal(t, "(anonymous)::hidden", anon.Children[0].QualifiedName())

	f := root.Lookup("outer::inner::f")
	require.NotNil(t, f)
	assert.Equal(t, symbols.KindFunction, f.Kind)

	assert.NotNil(t, root.Lookup("v1::versioned"))

	alias := root.Lookup("fs")
	require.NotNil(t, alias)
	assert.Equal(t, symbols.KindAlias, alias.Kind)
	assert.Equal(t, "std::filesystem", alias.Type)
}

func TestParse_RecordBasesAndAccess(t *testing.T) {
	t.Parallel()

	root, r := parse(t, `
class Derived final : public Base, protected virtual Mixin<int>, Other
{
    int secret;
public:
    struct Inner { int open; private: int closed; };
    int visible;
};
`)
	require.Empty(t, r.Diagnostics)

	d := root.Lookup("Derived")
	require.NotNil(t, d)
	assert.Equal(t, []string{"final"}, d.Specifiers)
	require.Len(t, d.Bases, 3)
	assert.Equal(t, symbols.Base{Name: "Base", Access: symbols.AccessPublic}, d.Bases[0])
	assert.Equal(t, symbols.Base{Name: "Mixin<int>", Access: symbols.AccessProtected, Virtual: true}, d.Bases[1])
	assert.Equal(t, symbols.AccessPrivate, d.Bases[2].Access)

	assert.Equal(t, symbols.AccessPrivate, d.Lookup("secret").Access)
	assert.Equal(t, symbols.AccessPublic, d.Lookup("Inner").Access)
	assert.Equal(t, symbols.AccessPublic, d.Lookup("Inner::open").Access)
	assert.Equal(t, symbols.AccessPrivate, d.Lookup("Inner::closed").Access)
	// The nested `private:` does not leak into the outer body.
	assert.Equal(t, symbols.AccessPublic, d.Lookup("visible").Access)
}

func TestParse_ConstructorsAndBodies(t *testing.T) {
	t.Parallel()

	root, r := parse(t, `
struct Point
{
    Point() : x(0), y{0} {}
    explicit Point( int v ) noexcept : x(v), y(v) { normalise(); }
    int x, y;
};

Point::Point( const Point &other ) : x(other.x) {}
`)
	require.Empty(t, r.Diagnostics)

	p := root.Lookup("Point")
	require.NotNil(t, p)
	assert.Equal(t, []string{"Point", "Point", "x", "y"}, names(p.Children))
	for _, c := range p.Children[:2] {
		assert.Equal(t, symbols.KindConstructor, c.Kind)
		assert.Equal(t, symbols.Defined, c.Definition)
	}
	assert.Equal(t, []string{"noexcept"}, p.Children[1].Signature.Qualifiers)

	out := root.Child("Point::Point")
	require.NotNil(t, out)
	assert.Equal(t, symbols.KindConstructor, out.Kind)
	assert.Equal(t, []string{"const Point &"}, out.Signature.ParamTypes())
}

func TestParse_TemplateParameterForms(t *testing.T) {
	t.Parallel()

	root, r := parse(t, `
template<typename T, int N = 3, template<typename> class C, typename T::size_type M, class... Rest>
struct Box {};

template<>
struct Box<int> {};
`)
	require.Empty(t, r.Diagnostics)

	boxes := root.ChildrenNamed("Box")
	require.Len(t, boxes, 1)
	tps := boxes[0].Template
	require.Len(t, tps, 5)

	assert.Equal(t, symbols.TemplateParam{Kind: symbols.TemplateType, Name: "T", Type: "typename"}, tps[0])
	assert.Equal(t, symbols.TemplateParam{Kind: symbols.TemplateNonType, Name: "N", Type: "int", Default: "3"}, tps[1])
	assert.Equal(t, symbols.TemplateTemplate, tps[2].Kind)
	assert.Equal(t, "C", tps[2].Name)
	assert.Equal(t, symbols.TemplateNonType, tps[3].Kind)
	assert.Equal(t, "M", tps[3].Name)
	assert.Equal(t, "typename T::size_type", tps[3].Type)
	assert.True(t, tps[4].Variadic)
	assert.Equal(t, "Rest", tps[4].Name)

	spec := root.Child("Box<int>")
	require.NotNil(t, spec)
	assert.NotNil(t, spec.Template)
	assert.Empty(t, spec.Template)
}

func TestParse_FunctionShapes(t *testing.T) {
	t.Parallel()

	root, r := parse(t, `
auto make( int n ) -> std::vector<int>;
void swap( Buffer &a, Buffer &b ) noexcept(noexcept(a.swap(b)));
void on( void (*handler)( int ), void *ctx = nullptr );
int sum( const int values[4] );
struct S {
    const std::string &name() const &;
    std::string name() &&;
    void (*callback)( int );
    int table[2][3] = {};
    double ratio{0.5};
};
`)
	require.Empty(t, r.Diagnostics)

	mk := root.Lookup("make")
	assert.Equal(t, "std::vector<int>", mk.Signature.Return)

	swap := root.Lookup("swap")
	assert.Equal(t, []string{"noexcept(noexcept(a.swap(b)))"}, swap.Signature.Qualifiers)

	on := root.Lookup("on")
	require.Len(t, on.Signature.Params, 2)
	assert.Equal(t, "handler", on.Signature.Params[0].Name)
	assert.Equal(t, "void (*)( int )", on.Signature.Params[0].Type)
	assert.Equal(t, "nullptr", on.Signature.Params[1].Default)

	sum := root.Lookup("sum")
	assert.Equal(t, "values", sum.Signature.Params[0].Name)
	assert.Equal(t, "const int[4]", sum.Signature.Params[0].Type)

	s := root.Lookup("S")
	getters := s.ChildrenNamed("name")
	require.Len(t, getters, 2)
	assert.Equal(t, []string{"const", "&"}, getters[0].Signature.Qualifiers)
	assert.Equal(t, []string{"&&"}, getters[1].Signature.Qualifiers)
	assert.NotEqual(t, getters[0].Signature.Key("name"), getters[1].Signature.Key("name"))

	cb := s.Lookup("callback")
	assert.Equal(t, symbols.KindField, cb.Kind)
	assert.Equal(t, "void (*)( int )", cb.Type)

	table := s.Lookup("table")
	assert.Equal(t, "int[2][3]", table.Type)
	assert.Equal(t, "{}", table.Value)

	ratio := s.Lookup("ratio")
	assert.Equal(t, "double", ratio.Type)
	assert.Equal(t, "{0.5}", ratio.Value)
}

func TestParse_DirectInitialisedVariable(t *testing.T) {
	t.Parallel()

	root, r := parse(t, "Widget global( 1, \"two\" );\nWidget make( Config c );\n")
	require.Empty(t, r.Diagnostics)

	g := root.Lookup("global")
	require.NotNil(t, g)
	assert.Equal(t, symbols.KindVariable, g.Kind)
	assert.Equal(t, "Widget", g.Type)
	assert.Equal(t, `( 1, "two" )`, g.Value)

	assert.Equal(t, symbols.KindFunction, root.Lookup("make").Kind)
}

func TestParse_TypedefAnonymousStruct(t *testing.T) {
	t.Parallel()

	root, r := parse(t, "/// A pair.\ntypedef struct { int a; int b; } Pair;\ntypedef struct node *NodePtr;\n")
	require.Empty(t, r.Diagnostics)

	require.Len(t, root.Children, 2)
	pair := root.Children[0]
	assert.Equal(t, symbols.KindStruct, pair.Kind)
	assert.Equal(t, "Pair", pair.Name)
	assert.Equal(t, "A pair.", pair.Doc.Text())
	assert.Len(t, pair.Children, 2)

	ptr := root.Children[1]
	assert.Equal(t, symbols.KindAlias, ptr.Kind)
	assert.Equal(t, "NodePtr", ptr.Name)
	assert.Equal(t, "struct node *", ptr.Type)
}

func TestParse_SkippedStatements(t *testing.T) {
	t.Parallel()

	root, r := parse(t, `
class Forward;
enum class Opaque : int;
using namespace std;
using std::string;
static_assert( sizeof(int) == 4, "int" );
template class std::vector<int>;
class Host {
    friend class Other;
    friend bool operator==( const Host &, const Host & );
    int kept;
};
`)
	require.Empty(t, r.Diagnostics)

	assert.Equal(t, []string{"Host"}, names(root.Children))
	assert.Equal(t, []string{"kept"}, names(root.Lookup("Host").Children))
}

func TestParse_MissingReturnTypeRecovers(t *testing.T) {
	t.Parallel()

	root, r := parse(t, "namespace N {\nMACRO( x );\n/// Kept.\nint kept;\n}\n")

	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, symbols.SyntaxError, r.Diagnostics[0].Kind)
	assert.Equal(t, "N", r.Diagnostics[0].Scope)
	assert.Equal(t, "Kept.", root.Lookup("N::kept").Doc.Text())
}

func TestParse_UnterminatedMemberBeforeClosingBrace(t *testing.T) {
	t.Parallel()

	root, r := parse(t, "class A {\n  int broken\n};\nint after;\n")

	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, symbols.SyntaxError, r.Diagnostics[0].Kind)
	assert.Equal(t, "A", r.Diagnostics[0].Scope)
	assert.Empty(t, root.Lookup("A").Children)
	assert.NotNil(t, root.Lookup("after"))
}

func TestParse_SkippedStatementWithoutSemicolon(t *testing.T) {
	t.Parallel()

	root, r := parse(t, "class Host {\n    friend class Other\n    int kept;\n};\nstatic_assert( sizeof(int) == 4, \"int\" )\nint after;\n")

	require.Len(t, r.Diagnostics, 2)
	assert.Equal(t, symbols.SyntaxError, r.Diagnostics[0].Kind)
	assert.Equal(t, 2, r.Diagnostics[0].Pos.Line)
	assert.Equal(t, "Host", r.Diagnostics[0].Scope)
	assert.Equal(t, 5, r.Diagnostics[1].Pos.Line)
	assert.Equal(t, []string{"kept"}, names(root.Lookup("Host").Children))
	assert.NotNil(t, root.Lookup("after"))
}

func TestParse_UnterminatedStatementEndsAtNextDeclaration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		line  int
		found []string
		lost  []string
	}{
		{"initializer before function", "namespace N {\nint x = 5\nvoid valid(int a);\n}\n", 2, []string{"N::valid"}, []string{"N::x"}},
		{"prototype before prototype", "void f(int a)\nvoid g();\n", 1, []string{"g"}, []string{"f"}},
		{"initializer before class", "int x = 5\nclass Foo { int y; };\n", 1, []string{"Foo::y"}, []string{"x"}},
		{"field before field", "struct S {\n  int a\n  int b;\n};\n", 2, []string{"S::b"}, []string{"S::a"}},
		{"field before typed field", "struct S {\n  int a\n  Widget w;\n};\n", 2, []string{"S::w"}, []string{"S::a"}},
		{"call before specifier", "void f()\nstatic int counter;\n", 1, []string{"counter"}, []string{"f"}},
		{"record before variable", "struct T { int a; }\nint z;\n", 1, []string{"T::a", "z"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, r := parse(t, tt.src)
			require.Len(t, r.Diagnostics, 1)
			assert.Equal(t, symbols.SyntaxError, r.Diagnostics[0].Kind)
			assert.Equal(t, tt.line, r.Diagnostics[0].Pos.Line)
			for _, name := range tt.found {
				assert.NotNil(t, root.Lookup(name), name)
			}
			for _, name := range tt.lost {
				assert.Nil(t, root.Lookup(name), name)
			}
		})
	}
}

func TestParse_MultiLineDeclarationsStayJoined(t *testing.T) {
	t.Parallel()

	root, r := parse(t, `
static const int
    kLimit = 5;
std::string
name() const;
EXPORT_API
void exported();
[[nodiscard]]
int checked();
int total = compute(1,
                    2);
struct Derived : Base {
    void draw()
        override final;
};
`)
	require.Empty(t, r.Diagnostics)

	assert.Equal(t, []string{"kLimit", "name", "exported", "checked", "total", "Derived"}, names(root.Children))
	assert.Equal(t, "5", root.Lookup("kLimit").Value)
	assert.Equal(t, "std::string", root.Lookup("name").Signature.Return)
	assert.Equal(t, []string{"override", "final"}, root.Lookup("Derived::draw").Signature.Qualifiers)
}

func TestParse_TokensAfterParameterList(t *testing.T) {
	t.Parallel()

	root, r := parse(t, "int f(int a) 42;\nint g(int b) EXPORT_ATTR(1);\nint h() requires true;\n")

	require.Len(t, r.Diagnostics, 1)
	d := r.Diagnostics[0]
	assert.Equal(t, symbols.SyntaxError, d.Kind)
	assert.Equal(t, "42", d.Text)
	assert.Contains(t, d.Message, "after parameter list")

	assert.Equal(t, []string{"f", "g", "h"}, names(root.Children))
	assert.Equal(t, "int f(int a)", root.Lookup("f").Signature.String("f"))
}

func TestParse_LexicalErrorEndsStatement(t *testing.T) {
	t.Parallel()

	root, r := parse(t, "class A {\n  const char* s = \"open\n  int b;\n};\nchar c = 'x;\nint d;\n")

	require.Len(t, r.Diagnostics, 2)
	for _, d := range r.Diagnostics {
		assert.Equal(t, symbols.LexicalError, d.Kind)
	}
	assert.Equal(t, []string{"b"}, names(root.Lookup("A").Children))
	assert.Equal(t, []string{"A", "d"}, names(root.Children))
}

func TestParse_TrailingDocWhenNoLeadingDoc(t *testing.T) {
	t.Parallel()

	root, _ := parse(t, "/// Leading wins.\nint a; ///< ignored\nint b; ///< Trailing.\n")

	assert.Equal(t, "Leading wins.", root.Lookup("a").Doc.Text())
	assert.Equal(t, "Trailing.", root.Lookup("b").Doc.Text())
}

func TestParse_MultipleDeclaratorsDocumentFirstOnly(t *testing.T) {
	t.Parallel()

	root, _ := parse(t, "/// Coordinates.\nint x = 1, y = 2;\n")

	require.Len(t, root.Children, 2)
	assert.Equal(t, "Coordinates.", root.Children[0].Doc.Text())
	assert.True(t, root.Children[1].Doc.Empty())
	assert.Equal(t, "2", root.Children[1].Value)
}

func names(nodes []*symbols.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

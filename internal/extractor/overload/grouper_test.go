package overload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// Test Plan for Overload Grouper:
// - Same-named functions in one scope form one set in declaration order
// - Constructors, destructors and functions are grouped separately
// - Singletons still get a set
// - Superseded declarations are left out
// - Scopes are grouped independently, including nested records
// - Non-callable members never join a set

func callable(kind symbols.Kind, name string, params ...string) *symbols.Node {
	sig := &symbols.Signature{}
	for _, p := range params {
		sig.Params = append(sig.Params, symbols.Param{Type: p})
	}
	return &symbols.Node{Kind: kind, Name: name, Signature: sig}
}

func TestGroup_FunctionsInDeclarationOrder(t *testing.T) {
	t.Parallel()

	root := symbols.NewRoot()
	f := callable(symbols.KindFunction, "round", "float")
	d := callable(symbols.KindFunction, "round", "double")
	v := &symbols.Node{Kind: symbols.KindVariable, Name: "round"}
	ld := callable(symbols.KindFunction, "round", "long double")
	for _, n := range []*symbols.Node{f, d, v, ld} {
		root.AppendChild(n)
	}

	Group(root)

	require.Len(t, root.Overloads, 1)
	set := root.OverloadSet("round")
	require.NotNil(t, set)
	assert.Equal(t, []*symbols.Node{f, d, ld}, set.Members)
	assert.Same(t, set, d.Overload)
	assert.Nil(t, v.Overload)
	assert.Equal(t, 2, set.Index(ld))
}

func TestGroup_FamiliesAndScopes(t *testing.T) {
	t.Parallel()

	root := symbols.NewRoot()
	cls := &symbols.Node{Kind: symbols.KindClass, Name: "Widget"}
	root.AppendChild(cls)
	ctor1 := callable(symbols.KindConstructor, "Widget")
	ctor2 := callable(symbols.KindConstructor, "Widget", "int")
	dtor := callable(symbols.KindDestructor, "~Widget")
	draw := callable(symbols.KindMethod, "draw")
	for _, n := range []*symbols.Node{ctor1, dtor, draw, ctor2} {
		cls.AppendChild(n)
	}
	free := callable(symbols.KindFunction, "draw", "Widget &")
	root.AppendChild(free)

	Group(root)

	require.Len(t, cls.Overloads, 3)
	assert.Equal(t, []*symbols.Node{ctor1, ctor2}, cls.Overloads[0].Members)
	assert.Equal(t, symbols.KindConstructor, cls.Overloads[0].Kind)
	assert.Equal(t, []*symbols.Node{dtor}, cls.Overloads[1].Members)
	assert.Equal(t, []*symbols.Node{draw}, cls.Overloads[2].Members)

	require.Len(t, root.Overloads, 1)
	assert.Equal(t, []*symbols.Node{free}, root.Overloads[0].Members)
	assert.NotSame(t, draw.Overload, free.Overload)
}

func TestGroup_SupersededExcluded(t *testing.T) {
	t.Parallel()

	root := symbols.NewRoot()
	old := callable(symbols.KindFunction, "reset")
	cur := callable(symbols.KindFunction, "reset")
	old.SupersededBy = cur
	root.AppendChild(old)
	root.AppendChild(cur)

	Group(root)

	require.Len(t, root.Overloads, 1)
	assert.Equal(t, []*symbols.Node{cur}, root.Overloads[0].Members)
	assert.Nil(t, old.Overload)
}

func TestGroup_Idempotent(t *testing.T) {
	t.Parallel()

	root := symbols.NewRoot()
	root.AppendChild(callable(symbols.KindFunction, "f"))
	root.AppendChild(callable(symbols.KindFunction, "f", "int"))

	Group(root)
	Group(root)

	require.Len(t, root.Overloads, 1)
	assert.Len(t, root.Overloads[0].Members, 2)
}

// Package overload groups same-named callables of each scope into
// overload sets.
package overload

import "github.com/mvp-joe/cppdoc/internal/extractor/symbols"

type family int

const (
	constructors family = iota
	destructors
	functions
)

func familyOf(k symbols.Kind) family {
	switch k {
	case symbols.KindConstructor:
		return constructors
	case symbols.KindDestructor:
		return destructors
	}
	return functions
}

type key struct {
	family family
	name   string
}

// Group annotates every scope below root with its overload sets. Each
// callable that is not superseded joins exactly one set; sets keep
// declaration order and members keep their own documentation.
func Group(root *symbols.Node) {
	root.Walk(func(n *symbols.Node) bool {
		if n.Kind.IsScope() {
			groupScope(n)
		}
		return true
	})
}

func groupScope(scope *symbols.Node) {
	scope.Overloads = nil
	sets := make(map[key]*symbols.OverloadSet)
	for _, c := range scope.Children {
		if !c.Kind.IsCallable() || c.SupersededBy != nil {
			continue
		}
		k := key{family: familyOf(c.Kind), name: c.Name}
		set, ok := sets[k]
		if !ok {
			set = &symbols.OverloadSet{Name: c.Name, Kind: c.Kind}
			sets[k] = set
			scope.Overloads = append(scope.Overloads, set)
		}
		set.Members = append(set.Members, c)
		c.Overload = set
	}
}

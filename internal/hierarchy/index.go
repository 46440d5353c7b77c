// Package hierarchy precomputes the ancestor and parameter-projection tables
// of a loaded class declaration set.
//
// The index is built once from a types.Interner and is read-only afterwards:
// matcher invocations running in parallel share it without locking. For every
// class it records
//
//   - the ancestor list (own class first, then bases depth-first,
//     left-to-right, each ancestor once, the top class last);
//   - for every ancestor, the ancestor's type arguments expressed in terms of
//     the class's own parameters, so projecting Sub[str] onto Base is one
//     substitution;
//   - whether the class derives from Any.
package hierarchy

import (
	"typematch/internal/types"
)

// Options configure the special classes of a declaration set.
type Options struct {
	// Top is the universal top class (object); every class descends from it.
	Top types.ClassID
	// Metaclass is the class of class objects (type).
	Metaclass types.ClassID
}

// Index answers subclass and projection queries.
type Index struct {
	types   *types.Interner
	top     types.ClassID
	meta    types.ClassID
	entries []entry // indexed by ClassID; slot 0 unused
}

type entry struct {
	params     []types.TypeID
	ancestors  []types.ClassID
	proj       map[types.ClassID][]types.TypeID
	anyDerived bool
}

// Types returns the interner the index was built from.
func (ix *Index) Types() *types.Interner { return ix.types }

// Top returns the universal top class, NoClassID when none was configured.
func (ix *Index) Top() types.ClassID { return ix.top }

// Metaclass returns the class of class objects, NoClassID when none was
// configured.
func (ix *Index) Metaclass() types.ClassID { return ix.meta }

// Known reports whether cls was part of the declaration set.
func (ix *Index) Known(cls types.ClassID) bool {
	return ix.entryOf(cls) != nil
}

// Params returns the declared type parameters of cls.
func (ix *Index) Params(cls types.ClassID) []types.TypeID {
	if e := ix.entryOf(cls); e != nil {
		return e.params
	}
	return nil
}

// Ancestors returns cls followed by every ancestor in resolution order.
func (ix *Index) Ancestors(cls types.ClassID) []types.ClassID {
	if e := ix.entryOf(cls); e != nil {
		return e.ancestors
	}
	return nil
}

// IsSubclass reports whether sub is base, descends from base, or base is the
// top class.
func (ix *Index) IsSubclass(sub, base types.ClassID) bool {
	if sub == base || (base != types.NoClassID && base == ix.top) {
		return true
	}
	e := ix.entryOf(sub)
	if e == nil {
		return false
	}
	_, ok := e.proj[base]
	return ok
}

// AnyDerived reports whether cls has Any among its ancestors' bases.
func (ix *Index) AnyDerived(cls types.ClassID) bool {
	e := ix.entryOf(cls)
	return e != nil && e.anyDerived
}

// Project expresses an instance of sub, parameterized by args, as an instance
// of its ancestor base and returns base's type arguments. A nil args slice
// stands for an unparameterized use of sub: its parameters become Any.
func (ix *Index) Project(sub types.ClassID, args []types.TypeID, base types.ClassID) ([]types.TypeID, bool) {
	e := ix.entryOf(sub)
	if e == nil {
		return nil, false
	}
	projected, ok := e.proj[base]
	if !ok {
		if base == ix.top && base != types.NoClassID {
			return nil, true
		}
		return nil, false
	}
	if len(projected) == 0 {
		return nil, true
	}
	if args != nil && len(args) != len(e.params) {
		return nil, false
	}
	anyT := ix.types.Builtins().Any
	m := make(map[types.TypeID]types.TypeID, len(e.params))
	for i, p := range e.params {
		if args == nil {
			m[p] = anyT
		} else {
			m[p] = args[i]
		}
	}
	resolve := types.MapResolver(m)
	out := make([]types.TypeID, len(projected))
	for i, a := range projected {
		out[i] = ix.types.Substitute(a, resolve)
	}
	return out, true
}

func (ix *Index) entryOf(cls types.ClassID) *entry {
	if ix == nil || cls == types.NoClassID || int(cls) >= len(ix.entries) {
		return nil
	}
	e := &ix.entries[cls]
	if e.proj == nil {
		return nil
	}
	return e
}

package types

import "slices"

// Resolver maps a type variable to its replacement; ok=false leaves the
// variable in place.
type Resolver func(v TypeID) (TypeID, bool)

// MapResolver adapts a plain map to a Resolver.
func MapResolver(m map[TypeID]TypeID) Resolver {
	return func(v TypeID) (TypeID, bool) {
		r, ok := m[v]
		return r, ok
	}
}

// Substitute rebuilds id with every resolvable type variable replaced.
// Replacements are themselves substituted, so chains such as T -> List[U],
// U -> int resolve fully; a variable already being expanded is left symbolic.
// Existing nodes are never modified: derived nodes are interned.
func (in *Interner) Substitute(id TypeID, resolve Resolver) TypeID {
	if resolve == nil {
		return id
	}
	return in.substitute(id, resolve, nil)
}

func (in *Interner) substitute(id TypeID, resolve Resolver, expanding []TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindTypeVar:
		if slices.Contains(expanding, id) {
			return id
		}
		r, ok := resolve(id)
		if !ok || r == id {
			return id
		}
		return in.substitute(r, resolve, append(expanding, id))
	case KindGeneric:
		info, _ := in.GenericInfo(id)
		args, changed := in.substituteList(info.Args, resolve, expanding)
		if !changed {
			return id
		}
		return in.MustGeneric(info.Class, args)
	case KindUnion:
		info, _ := in.UnionInfo(id)
		members, changed := in.substituteList(info.Members, resolve, expanding)
		if !changed {
			return id
		}
		return in.Union(members...)
	case KindCallable:
		info, _ := in.CallableInfo(id)
		params, changed := in.substituteList(info.Params, resolve, expanding)
		result := in.substitute(info.Result, resolve, expanding)
		if !changed && result == info.Result {
			return id
		}
		next := *info
		next.Params = params
		next.Result = result
		out, err := in.Callable(next)
		if err != nil {
			return id
		}
		return out
	case KindClassObject:
		inner := in.substitute(tt.Elem, resolve, expanding)
		if inner == tt.Elem {
			return id
		}
		return in.ClassObject(inner)
	default:
		return id
	}
}

func (in *Interner) substituteList(ids []TypeID, resolve Resolver, expanding []TypeID) ([]TypeID, bool) {
	out := make([]TypeID, len(ids))
	changed := false
	for i, id := range ids {
		out[i] = in.substitute(id, resolve, expanding)
		if out[i] != id {
			changed = true
		}
	}
	return out, changed
}

// FreeTypeVars lists the type variables referenced by id in first-occurrence
// order.
func (in *Interner) FreeTypeVars(id TypeID) []TypeID {
	var out []TypeID
	in.walk(id, func(v TypeID) {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	})
	return out
}

// ContainsTypeVar reports whether id references any type variable.
func (in *Interner) ContainsTypeVar(id TypeID) bool {
	found := false
	in.walk(id, func(TypeID) { found = true })
	return found
}

func (in *Interner) walk(id TypeID, visitVar func(TypeID)) {
	tt, ok := in.Lookup(id)
	if !ok {
		return
	}
	switch tt.Kind {
	case KindTypeVar:
		visitVar(id)
	case KindGeneric:
		info, _ := in.GenericInfo(id)
		for _, a := range info.Args {
			in.walk(a, visitVar)
		}
	case KindUnion:
		info, _ := in.UnionInfo(id)
		for _, m := range info.Members {
			in.walk(m, visitVar)
		}
	case KindCallable:
		info, _ := in.CallableInfo(id)
		for _, p := range info.Params {
			in.walk(p, visitVar)
		}
		in.walk(info.Result, visitVar)
	case KindClassObject:
		in.walk(tt.Elem, visitVar)
	}
}

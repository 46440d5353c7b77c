package types

import "slices"

// UnionInfo stores the alternatives of a union in declared order.
type UnionInfo struct {
	Members []TypeID
}

// Union interns Union[members...]. Nested unions are flattened, duplicates and
// Nothing members dropped (first occurrence wins). A single remaining member
// is returned as is; no members yields Nothing.
func (in *Interner) Union(members ...TypeID) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()

	flat := make([]TypeID, 0, len(members))
	var add func(id TypeID)
	add = func(id TypeID) {
		tt, ok := in.lookup(id)
		if !ok || tt.Kind == KindNothing {
			return
		}
		if tt.Kind == KindUnion {
			for _, m := range in.unions[tt.Payload].Members {
				add(m)
			}
			return
		}
		if !slices.Contains(flat, id) {
			flat = append(flat, id)
		}
	}
	for _, m := range members {
		add(m)
	}

	switch len(flat) {
	case 0:
		return in.builtins.Nothing
	case 1:
		return flat[0]
	}
	key := listKey('u', 0, flat)
	return in.internList(key, func() Type {
		in.unions = append(in.unions, UnionInfo{Members: flat})
		return Type{Kind: KindUnion, Payload: slotOf(len(in.unions))}
	})
}

// Optional interns Union[inner, None].
func (in *Interner) Optional(inner TypeID) TypeID {
	return in.Union(inner, in.builtins.None)
}

// UnionInfo returns the alternatives of a Union node. The result must not be
// modified.
func (in *Interner) UnionInfo(id TypeID) (*UnionInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookup(id)
	if !ok || tt.Kind != KindUnion || tt.Payload == 0 || int(tt.Payload) >= len(in.unions) {
		return nil, false
	}
	return &in.unions[tt.Payload], true
}

// UnionMembers returns a copy of the alternatives of a Union node.
func (in *Interner) UnionMembers(id TypeID) []TypeID {
	info, ok := in.UnionInfo(id)
	if !ok {
		return nil
	}
	return slices.Clone(info.Members)
}

package types

import (
	"fmt"
	"strconv"
	"sync"

	"fortio.org/safecast"

	"typematch/internal/source"
)

// Builtins stores TypeIDs of the shape-only leaves.
type Builtins struct {
	Invalid TypeID
	Any     TypeID
	None    TypeID
	Nothing TypeID
}

// Interner owns every type expression of one declaration set. Nodes are
// append-only: once a TypeID is handed out its descriptor never changes, so
// readers may share TypeIDs freely. Structurally equal nodes intern to the
// same TypeID; type variables are the exception, each registration is a new
// identity.
type Interner struct {
	Strings *source.Interner

	mu        sync.RWMutex
	types     []Type
	index     map[typeKey]TypeID
	lists     map[string]TypeID
	builtins  Builtins
	classes   []ClassInfo
	classByNm map[source.StringID]ClassID
	generics  []GenericInfo
	unions    []UnionInfo
	callables []CallableInfo
	typeVars  []TypeVarInfo
	scopes    uint32
}

type typeKey struct {
	Kind  Kind
	Class ClassID
	Elem  TypeID
}

// NewInterner constructs an interner seeded with the builtin leaves.
func NewInterner() *Interner {
	return NewInternerWithStrings(nil)
}

// NewInternerWithStrings shares a name interner with other components.
func NewInternerWithStrings(strs *source.Interner) *Interner {
	if strs == nil {
		strs = source.NewInterner()
	}
	in := &Interner{
		Strings:   strs,
		index:     make(map[typeKey]TypeID, 64),
		lists:     make(map[string]TypeID, 64),
		classByNm: make(map[source.StringID]ClassID),
	}
	// slot 0 of every side table is the invalid sentinel
	in.classes = append(in.classes, ClassInfo{})
	in.generics = append(in.generics, GenericInfo{})
	in.unions = append(in.unions, UnionInfo{})
	in.callables = append(in.callables, CallableInfo{})
	in.typeVars = append(in.typeVars, TypeVarInfo{})

	in.builtins.Invalid = in.appendType(Type{Kind: KindInvalid})
	in.builtins.Any = in.internSimple(Type{Kind: KindAny})
	in.builtins.None = in.internSimple(Type{Kind: KindNone})
	in.builtins.Nothing = in.internSimple(Type{Kind: KindNothing})
	return in
}

// Builtins returns TypeIDs for Any, None and Nothing.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.lookup(id)
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns the kind of id, KindInvalid for unknown ids.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Len reports the number of interned nodes including the invalid sentinel.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.types)
}

// NewScope allocates a fresh owner handle for a group of type variables.
func (in *Interner) NewScope() ScopeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.scopes++
	return ScopeID(in.scopes)
}

// ClassObject interns Type[inner].
func (in *Interner) ClassObject(inner TypeID) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.internSimple(Type{Kind: KindClassObject, Elem: inner})
}

func (in *Interner) lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

func (in *Interner) internSimple(t Type) TypeID {
	key := typeKey{Kind: t.Kind, Class: t.Class, Elem: t.Elem}
	if id, ok := in.index[key]; ok {
		return id
	}
	id := in.appendType(t)
	in.index[key] = id
	return id
}

// internList dedups nodes whose identity is a list of TypeIDs.
func (in *Interner) internList(key string, build func() Type) TypeID {
	if id, ok := in.lists[key]; ok {
		return id
	}
	id := in.appendType(build())
	in.lists[key] = id
	return id
}

func (in *Interner) appendType(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	in.types = append(in.types, t)
	return TypeID(n)
}

func slotOf(n int) uint32 {
	slot, err := safecast.Conv[uint32](n - 1)
	if err != nil {
		panic(fmt.Errorf("side table overflow: %w", err))
	}
	return slot
}

func listKey(prefix byte, head uint64, ids []TypeID, tail ...uint64) string {
	buf := make([]byte, 0, 8+len(ids)*6+len(tail)*4)
	buf = append(buf, prefix)
	buf = strconv.AppendUint(buf, head, 36)
	buf = append(buf, '[')
	for i, id := range ids {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, uint64(id), 36)
	}
	buf = append(buf, ']')
	for _, v := range tail {
		buf = append(buf, ';')
		buf = strconv.AppendUint(buf, v, 36)
	}
	return string(buf)
}

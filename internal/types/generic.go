package types

import (
	"fmt"
	"slices"
)

// GenericInfo stores metadata for a parameterized class instance.
type GenericInfo struct {
	Class ClassID
	Args  []TypeID
}

// Generic interns cls[args...]. The argument count must equal the class's
// declared arity; a zero-arity instance is the Concrete node itself.
func (in *Interner) Generic(cls ClassID, args []TypeID) (TypeID, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	info := in.classInfo(cls)
	if info == nil {
		return NoTypeID, fmt.Errorf("unknown class %d", cls)
	}
	if len(args) != len(info.Params) {
		return NoTypeID, fmt.Errorf("%s expects %d type arguments, got %d",
			lookupNameFallback(in.Strings, info.Name), len(info.Params), len(args))
	}
	for i, a := range args {
		if _, ok := in.lookup(a); !ok {
			return NoTypeID, fmt.Errorf("%s: type argument %d is invalid", lookupNameFallback(in.Strings, info.Name), i)
		}
	}
	if len(args) == 0 {
		return in.internSimple(Type{Kind: KindClass, Class: cls}), nil
	}
	return in.generic(cls, args), nil
}

// MustGeneric is Generic for callers that already validated arity.
func (in *Interner) MustGeneric(cls ClassID, args []TypeID) TypeID {
	id, err := in.Generic(cls, args)
	if err != nil {
		panic(fmt.Errorf("types: %w", err))
	}
	return id
}

// GenericInfo returns metadata for a Generic node. The result must not be
// modified.
func (in *Interner) GenericInfo(id TypeID) (*GenericInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookup(id)
	if !ok || tt.Kind != KindGeneric || tt.Payload == 0 || int(tt.Payload) >= len(in.generics) {
		return nil, false
	}
	return &in.generics[tt.Payload], true
}

// GenericArgs returns a copy of the type arguments of a Generic node.
func (in *Interner) GenericArgs(id TypeID) []TypeID {
	info, ok := in.GenericInfo(id)
	if !ok {
		return nil
	}
	return slices.Clone(info.Args)
}

func (in *Interner) generic(cls ClassID, args []TypeID) TypeID {
	key := listKey('g', uint64(cls), args)
	return in.internList(key, func() Type {
		in.generics = append(in.generics, GenericInfo{Class: cls, Args: slices.Clone(args)})
		return Type{Kind: KindGeneric, Class: cls, Payload: slotOf(len(in.generics))}
	})
}

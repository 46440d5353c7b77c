package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"typematch/internal/source"
)

// ClassInfo stores one class declaration: its ordered type parameters (TypeVar
// TypeIDs) and ordered bases. Bases are Class, Generic or Any TypeIDs whose
// arguments may reference the class's own parameters.
type ClassInfo struct {
	Name   source.StringID
	Params []TypeID
	Bases  []TypeID
}

// DeclareClass registers a class with its type parameters. Bases are attached
// later with SetBases so that mutually referencing declarations can be loaded
// in any order.
func (in *Interner) DeclareClass(name string, params []TypeID) (ClassID, error) {
	nameID := in.Strings.Intern(name)

	in.mu.Lock()
	defer in.mu.Unlock()
	if _, dup := in.classByNm[nameID]; dup {
		return NoClassID, fmt.Errorf("class %q declared twice", name)
	}
	for i, p := range params {
		tt, ok := in.lookup(p)
		if !ok || tt.Kind != KindTypeVar {
			return NoClassID, fmt.Errorf("class %q: parameter %d is not a type variable", name, i)
		}
		if slices.Index(params, p) != i {
			return NoClassID, fmt.Errorf("class %q: parameter %d repeats an earlier parameter", name, i)
		}
	}
	in.classes = append(in.classes, ClassInfo{Name: nameID, Params: slices.Clone(params)})
	n, err := safecast.Conv[uint32](len(in.classes) - 1)
	if err != nil {
		panic(fmt.Errorf("class table overflow: %w", err))
	}
	cls := ClassID(n)
	in.classByNm[nameID] = cls
	return cls, nil
}

// SetBases attaches the ordered base list of cls.
func (in *Interner) SetBases(cls ClassID, bases []TypeID) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	info := in.classInfo(cls)
	if info == nil {
		return fmt.Errorf("unknown class %d", cls)
	}
	for i, b := range bases {
		tt, ok := in.lookup(b)
		if !ok {
			return fmt.Errorf("class %s: base %d is not a type", in.Strings.MustLookup(info.Name), i)
		}
		switch tt.Kind {
		case KindClass, KindGeneric, KindAny:
		default:
			return fmt.Errorf("class %s: base %d must be a class, got %s", in.Strings.MustLookup(info.Name), i, tt.Kind)
		}
	}
	info.Bases = slices.Clone(bases)
	return nil
}

// Class interns the Concrete node for cls.
func (in *Interner) Class(cls ClassID) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.classInfo(cls) == nil {
		return NoTypeID
	}
	return in.internSimple(Type{Kind: KindClass, Class: cls})
}

// ClassInfo returns the declaration of cls. The result must not be modified.
func (in *Interner) ClassInfo(cls ClassID) (*ClassInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.classInfo(cls)
	return info, info != nil
}

// ClassByName finds a declared class.
func (in *Interner) ClassByName(name string) (ClassID, bool) {
	nameID := in.Strings.Intern(name)
	in.mu.RLock()
	defer in.mu.RUnlock()
	cls, ok := in.classByNm[nameID]
	return cls, ok
}

// ClassName returns the declared name of cls.
func (in *Interner) ClassName(cls ClassID) string {
	info, ok := in.ClassInfo(cls)
	if !ok {
		return "?"
	}
	return lookupNameFallback(in.Strings, info.Name)
}

// Classes returns every declared ClassID in declaration order.
func (in *Interner) Classes() []ClassID {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]ClassID, 0, len(in.classes)-1)
	for i := 1; i < len(in.classes); i++ {
		out = append(out, ClassID(i)) //nolint:gosec // bounded by safecast at DeclareClass
	}
	return out
}

// ClassOf returns the class referenced by a Class or Generic node.
func (in *Interner) ClassOf(id TypeID) (ClassID, bool) {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindClass && tt.Kind != KindGeneric) {
		return NoClassID, false
	}
	return tt.Class, true
}

func (in *Interner) classInfo(cls ClassID) *ClassInfo {
	if cls == NoClassID || int(cls) >= len(in.classes) {
		return nil
	}
	return &in.classes[cls]
}

// Package testkit holds structural invariant checks shared by tests.
package testkit

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
	"go.uber.org/multierr"

	"typematch/internal/hierarchy"
	"typematch/internal/types"
)

// CheckTypeGraph walks every interned type and verifies the invariants the
// interner promises:
// 1) unions are flat, duplicate free, hold no Nothing and at least two members
// 2) generic instances carry exactly as many arguments as their class declares
// 3) type variables never have both a bound and constraints, nor one constraint
// 4) every referenced TypeID is itself valid
func CheckTypeGraph(in *types.Interner) error {
	if in == nil {
		return fmt.Errorf("nil interner")
	}
	var errs error
	for i := 1; i < in.Len(); i++ {
		n, err := safecast.Conv[uint32](i)
		if err != nil {
			return fmt.Errorf("type index overflow: %w", err)
		}
		errs = multierr.Append(errs, checkType(in, types.TypeID(n)))
	}
	return errs
}

func checkType(in *types.Interner, id types.TypeID) error {
	tt, ok := in.Lookup(id)
	if !ok {
		return fmt.Errorf("type %d: lookup failed", id)
	}
	valid := func(ref types.TypeID, what string) error {
		if _, ok := in.Lookup(ref); !ok {
			return fmt.Errorf("type %d: %s references invalid type %d", id, what, ref)
		}
		return nil
	}

	switch tt.Kind {
	case types.KindUnion:
		members := in.UnionMembers(id)
		if len(members) < 2 {
			return fmt.Errorf("union %d has %d members", id, len(members))
		}
		for i, m := range members {
			if err := valid(m, "union member"); err != nil {
				return err
			}
			switch in.KindOf(m) {
			case types.KindUnion:
				return fmt.Errorf("union %d is not flat: member %d is a union", id, i)
			case types.KindNothing:
				return fmt.Errorf("union %d holds nothing", id)
			}
			if slices.Index(members, m) != i {
				return fmt.Errorf("union %d repeats member %s", id, types.Label(in, m))
			}
		}
	case types.KindGeneric:
		info, ok := in.GenericInfo(id)
		if !ok {
			return fmt.Errorf("generic %d has no side table entry", id)
		}
		cls, ok := in.ClassInfo(info.Class)
		if !ok {
			return fmt.Errorf("generic %d references unknown class %d", id, info.Class)
		}
		if len(info.Args) != len(cls.Params) || len(info.Args) == 0 {
			return fmt.Errorf("generic %s: %d args for %d params", types.Label(in, id), len(info.Args), len(cls.Params))
		}
		for _, a := range info.Args {
			if err := valid(a, "type argument"); err != nil {
				return err
			}
		}
	case types.KindCallable:
		info, ok := in.CallableInfo(id)
		if !ok {
			return fmt.Errorf("callable %d has no side table entry", id)
		}
		if !info.Variadic && (info.Required < 0 || info.Required > len(info.Params)) {
			return fmt.Errorf("callable %s: required %d out of range", types.Label(in, id), info.Required)
		}
		for _, p := range info.Params {
			if err := valid(p, "parameter"); err != nil {
				return err
			}
		}
		return valid(info.Result, "result")
	case types.KindTypeVar:
		info, ok := in.TypeVarInfo(id)
		if !ok {
			return fmt.Errorf("typevar %d has no side table entry", id)
		}
		if info.HasBound() && info.Constrained() {
			return fmt.Errorf("typevar %s has both a bound and constraints", in.TypeVarName(id))
		}
		if len(info.Constraints) == 1 {
			return fmt.Errorf("typevar %s has a single constraint", in.TypeVarName(id))
		}
	case types.KindClassObject:
		return valid(tt.Elem, "class object")
	}
	return nil
}

// CheckHierarchy verifies the precomputed ancestor lists: each starts with
// the class itself, holds no duplicates, ends with the top class when one is
// configured, and agrees with IsSubclass.
func CheckHierarchy(ix *hierarchy.Index) error {
	if ix == nil {
		return fmt.Errorf("nil index")
	}
	in := ix.Types()
	top := ix.Top()
	var errs error
	for _, cls := range in.Classes() {
		anc := ix.Ancestors(cls)
		name := in.ClassName(cls)
		if len(anc) == 0 || anc[0] != cls {
			errs = multierr.Append(errs, fmt.Errorf("%s: ancestors must start with the class itself", name))
			continue
		}
		for i, a := range anc {
			if slices.Index(anc, a) != i {
				errs = multierr.Append(errs, fmt.Errorf("%s: ancestor %s listed twice", name, in.ClassName(a)))
			}
			if !ix.IsSubclass(cls, a) {
				errs = multierr.Append(errs, fmt.Errorf("%s: ancestor %s is not a superclass", name, in.ClassName(a)))
			}
		}
		if top != types.NoClassID && anc[len(anc)-1] != top {
			errs = multierr.Append(errs, fmt.Errorf("%s: ancestors must end with %s", name, in.ClassName(top)))
		}
	}
	return errs
}

package types

import (
	"fmt"
	"slices"

	"typematch/internal/source"
)

// TypeVarInfo stores a type variable declaration. Bound and Constraints are
// mutually exclusive; Constraints, when present, has at least two entries.
type TypeVarInfo struct {
	Name        source.StringID
	Scope       ScopeID
	Bound       TypeID
	Constraints []TypeID
	Variance    Variance
}

// HasBound reports whether the variable has an upper bound.
func (tv *TypeVarInfo) HasBound() bool { return tv.Bound != NoTypeID }

// Constrained reports whether the variable ranges over a constraint set.
func (tv *TypeVarInfo) Constrained() bool { return len(tv.Constraints) > 0 }

// Unrestricted reports a variable with neither bound nor constraints.
func (tv *TypeVarInfo) Unrestricted() bool { return !tv.HasBound() && !tv.Constrained() }

// TypeVarSpec describes a type variable to register.
type TypeVarSpec struct {
	Name        string
	Scope       ScopeID
	Bound       TypeID
	Constraints []TypeID
	Variance    Variance
}

// TypeVar registers a new type variable. Every call returns a distinct
// identity even for equal specs.
func (in *Interner) TypeVar(spec TypeVarSpec) (TypeID, error) {
	if spec.Name == "" {
		return NoTypeID, fmt.Errorf("type variable needs a name")
	}
	if spec.Bound != NoTypeID && len(spec.Constraints) > 0 {
		return NoTypeID, fmt.Errorf("type variable %s: bound and constraints are exclusive", spec.Name)
	}
	if len(spec.Constraints) == 1 {
		return NoTypeID, fmt.Errorf("type variable %s: a single constraint is not allowed, use a bound", spec.Name)
	}
	nameID := in.Strings.Intern(spec.Name)

	in.mu.Lock()
	defer in.mu.Unlock()
	if spec.Bound != NoTypeID {
		if _, ok := in.lookup(spec.Bound); !ok {
			return NoTypeID, fmt.Errorf("type variable %s: invalid bound", spec.Name)
		}
	}
	for i, c := range spec.Constraints {
		if _, ok := in.lookup(c); !ok {
			return NoTypeID, fmt.Errorf("type variable %s: invalid constraint %d", spec.Name, i)
		}
	}
	in.typeVars = append(in.typeVars, TypeVarInfo{
		Name:        nameID,
		Scope:       spec.Scope,
		Bound:       spec.Bound,
		Constraints: slices.Clone(spec.Constraints),
		Variance:    spec.Variance,
	})
	return in.appendType(Type{Kind: KindTypeVar, Payload: slotOf(len(in.typeVars))}), nil
}

// TypeVarInfo returns the declaration of a TypeVar node. The result must not
// be modified.
func (in *Interner) TypeVarInfo(id TypeID) (*TypeVarInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.typeVarInfo(id)
}

// TypeVarName returns the display name of a TypeVar node.
func (in *Interner) TypeVarName(id TypeID) string {
	info, ok := in.TypeVarInfo(id)
	if !ok {
		return "?"
	}
	return lookupNameFallback(in.Strings, info.Name)
}

func (in *Interner) typeVarInfo(id TypeID) (*TypeVarInfo, bool) {
	tt, ok := in.lookup(id)
	if !ok || tt.Kind != KindTypeVar || tt.Payload == 0 || int(tt.Payload) >= len(in.typeVars) {
		return nil, false
	}
	return &in.typeVars[tt.Payload], true
}

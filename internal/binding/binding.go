// Package binding models inferred values: a Variable is the set of types a
// value may carry, one Binding per control-flow path that reaches it.
package binding

import (
	"errors"
	"slices"

	"typematch/internal/types"
)

// PathID names the control-flow path a binding is valid along.
type PathID uint32

// NoPath is used for bindings whose path is irrelevant.
const NoPath PathID = 0

// ErrEmptyVariable is returned when a Variable would have no bindings.
var ErrEmptyVariable = errors.New("variable needs at least one binding")

// Binding is one possible type of a value along one path.
type Binding struct {
	Type types.TypeID
	Path PathID
}

// Variable is a non-empty, insertion-ordered set of bindings. A zero Variable
// is invalid; construct one with New or Of.
type Variable struct {
	bindings []Binding
}

// New builds a Variable from bindings, dropping exact duplicates.
func New(bindings ...Binding) (Variable, error) {
	if len(bindings) == 0 {
		return Variable{}, ErrEmptyVariable
	}
	out := make([]Binding, 0, len(bindings))
	for _, b := range bindings {
		if b.Type == types.NoTypeID {
			return Variable{}, errors.New("binding has no type")
		}
		if !slices.Contains(out, b) {
			out = append(out, b)
		}
	}
	return Variable{bindings: out}, nil
}

// Of builds a Variable with one binding per type, each on its own path
// numbered from 1.
func Of(ts ...types.TypeID) (Variable, error) {
	bs := make([]Binding, len(ts))
	for i, t := range ts {
		bs[i] = Binding{Type: t, Path: PathID(i + 1)} //nolint:gosec // small fixture counts
	}
	return New(bs...)
}

// MustOf is Of for fixtures known to be valid.
func MustOf(ts ...types.TypeID) Variable {
	v, err := Of(ts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Bindings returns the bindings in insertion order. The slice must not be
// modified.
func (v Variable) Bindings() []Binding { return v.bindings }

// Len returns the number of bindings.
func (v Variable) Len() int { return len(v.bindings) }

// Valid reports whether v has at least one binding.
func (v Variable) Valid() bool { return len(v.bindings) > 0 }

// Types returns the distinct binding types in first-occurrence order.
func (v Variable) Types() []types.TypeID {
	out := make([]types.TypeID, 0, len(v.bindings))
	for _, b := range v.bindings {
		if !slices.Contains(out, b.Type) {
			out = append(out, b.Type)
		}
	}
	return out
}

// With returns a copy of v with b added.
func (v Variable) With(b Binding) Variable {
	if slices.Contains(v.bindings, b) {
		return v
	}
	out := make([]Binding, len(v.bindings), len(v.bindings)+1)
	copy(out, v.bindings)
	return Variable{bindings: append(out, b)}
}

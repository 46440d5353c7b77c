package types

import "fmt"

// TypeID uniquely identifies a type expression inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// ClassID identifies a declared class.
type ClassID uint32

// NoClassID marks the absence of a class.
const NoClassID ClassID = 0

// ScopeID is the opaque owner handle of a group of type variables
// (one signature or one generic class declaration).
type ScopeID uint32

// NoScopeID marks a type variable without an owner.
const NoScopeID ScopeID = 0

// Kind enumerates the closed set of type expression shapes.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAny
	KindNone
	KindNothing
	KindClass
	KindGeneric
	KindUnion
	KindCallable
	KindTypeVar
	KindClassObject
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindAny:
		return "any"
	case KindNone:
		return "none"
	case KindNothing:
		return "nothing"
	case KindClass:
		return "class"
	case KindGeneric:
		return "generic"
	case KindUnion:
		return "union"
	case KindCallable:
		return "callable"
	case KindTypeVar:
		return "typevar"
	case KindClassObject:
		return "classobject"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Variance is the matching direction of a type parameter position.
// The zero value is covariant.
type Variance uint8

const (
	VarianceCovariant Variance = iota
	VarianceContravariant
	VarianceInvariant
)

func (v Variance) String() string {
	switch v {
	case VarianceCovariant:
		return "covariant"
	case VarianceContravariant:
		return "contravariant"
	case VarianceInvariant:
		return "invariant"
	default:
		return fmt.Sprintf("Variance(%d)", v)
	}
}

// ParseVariance converts a variance name; the empty string means covariant.
func ParseVariance(s string) (Variance, error) {
	switch s {
	case "", "covariant":
		return VarianceCovariant, nil
	case "contravariant":
		return VarianceContravariant, nil
	case "invariant":
		return VarianceInvariant, nil
	default:
		return VarianceCovariant, fmt.Errorf("invalid variance %q (expected covariant|contravariant|invariant)", s)
	}
}

// Type is the compact arena descriptor of a type expression.
type Type struct {
	Kind    Kind
	Class   ClassID // KindClass, KindGeneric
	Elem    TypeID  // KindClassObject
	Payload uint32  // slot in the per-kind side table
}

package match

import (
	"errors"
	"fmt"
	"strings"

	"typematch/internal/diag"
	"typematch/internal/subst"
	"typematch/internal/types"
)

// ErrRecursionLimit matches every fatal mismatch under errors.Is.
var ErrRecursionLimit = errors.New("match: recursion limit exceeded")

// Kind classifies why a match failed.
type Kind uint8

const (
	// KindTypeMismatch is the catch-all for shape combinations no rule accepts.
	KindTypeMismatch Kind = iota
	KindArity
	KindBound
	KindConstraint
	KindHierarchy
	KindVariance
	KindUnification
	KindRecursionLimit
)

var kindNames = [...]string{
	KindTypeMismatch:   "TypeMismatch",
	KindArity:          "ArityMismatch",
	KindBound:          "BoundViolation",
	KindConstraint:     "ConstraintViolation",
	KindHierarchy:      "HierarchyMismatch",
	KindVariance:       "VarianceConflict",
	KindUnification:    "UnificationConflict",
	KindRecursionLimit: "RecursionLimitExceeded",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind accepts the names printed by String, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil //nolint:gosec // bounded by kindNames
		}
	}
	return KindTypeMismatch, fmt.Errorf("unknown mismatch kind %q", s)
}

// Code maps the kind to its diagnostic code.
func (k Kind) Code() diag.Code {
	switch k {
	case KindArity:
		return diag.MatchArity
	case KindBound:
		return diag.MatchBound
	case KindConstraint:
		return diag.MatchConstraint
	case KindHierarchy:
		return diag.MatchHierarchy
	case KindVariance:
		return diag.MatchVariance
	case KindUnification:
		return diag.MatchUnification
	case KindRecursionLimit:
		return diag.MatchRecursionLimit
	default:
		return diag.MatchGeneric
	}
}

// Pair is an (actual, formal) pair of types.
type Pair struct {
	Actual types.TypeID
	Formal types.TypeID
}

// Mismatch describes a failed match. Actual and Formal are the pair handed
// to the top-level call; At is the innermost pair that failed.
type Mismatch struct {
	Kind   Kind
	Actual types.TypeID
	Formal types.TypeID
	At     Pair
	// Var is the type variable involved in bound, constraint and unification
	// failures; Conflict is its earlier binding for unification failures.
	Var      types.TypeID
	Conflict types.TypeID
	// Arg is the 0-based argument index for failures reported by MatchCall,
	// -1 otherwise.
	Arg    int
	Detail string
	// Subst is a snapshot of the environment at the failure point.
	Subst *subst.Env

	types *types.Interner
}

func newMismatch(in *types.Interner, kind Kind, actual, formal types.TypeID) *Mismatch {
	return &Mismatch{
		Kind:   kind,
		Actual: actual,
		Formal: formal,
		At:     Pair{Actual: actual, Formal: formal},
		Arg:    -1,
		types:  in,
	}
}

// Fatal reports a mismatch that aborted the whole call instead of ruling
// out one alternative.
func (m *Mismatch) Fatal() bool {
	return m != nil && m.Kind == KindRecursionLimit
}

// Is makes fatal mismatches match ErrRecursionLimit.
func (m *Mismatch) Is(target error) bool {
	return target == ErrRecursionLimit && m.Fatal()
}

func (m *Mismatch) resolver() types.Resolver {
	if m.Subst == nil {
		return nil
	}
	return m.Subst.Resolver()
}

// Expected renders the formal side with type variables resolved through the
// captured substitutions.
func (m *Mismatch) Expected(in *types.Interner) string {
	return types.LabelResolved(in, m.Formal, m.resolver())
}

// ActualLabel renders the actual side the same way.
func (m *Mismatch) ActualLabel(in *types.Interner) string {
	if m.Actual == types.NoTypeID {
		return ""
	}
	return types.LabelResolved(in, m.Actual, m.resolver())
}

// Reason is a short explanation of the innermost failure.
func (m *Mismatch) Reason(in *types.Interner) string {
	if m.Detail != "" {
		return m.Detail
	}
	at := func(id types.TypeID) string { return types.Label(in, id) }
	switch m.Kind {
	case KindUnification:
		return fmt.Sprintf("%s already bound to %s, got %s",
			in.TypeVarName(m.Var), at(m.Conflict), at(m.At.Actual))
	case KindBound:
		return fmt.Sprintf("%s is not within the bound of %s", at(m.At.Actual), in.TypeVarName(m.Var))
	case KindConstraint:
		return fmt.Sprintf("%s matches no constraint of %s", at(m.At.Actual), in.TypeVarName(m.Var))
	case KindHierarchy:
		return fmt.Sprintf("%s is not a subclass of %s", at(m.At.Actual), at(m.At.Formal))
	default:
		return fmt.Sprintf("%s does not match %s", at(m.At.Actual), at(m.At.Formal))
	}
}

func (m *Mismatch) Error() string {
	if m == nil {
		return "<nil>"
	}
	if m.types == nil {
		return m.Kind.String()
	}
	var sb strings.Builder
	sb.WriteString(m.Kind.String())
	sb.WriteString(": expected ")
	sb.WriteString(m.Expected(m.types))
	if a := m.ActualLabel(m.types); a != "" {
		sb.WriteString(", actual ")
		sb.WriteString(a)
	}
	sb.WriteString(" (")
	sb.WriteString(m.Reason(m.types))
	sb.WriteString(")")
	return sb.String()
}

// Diagnostic converts the mismatch into a diag.Diagnostic with expected,
// actual, reason and substitution notes.
func (m *Mismatch) Diagnostic(in *types.Interner) diag.Diagnostic {
	d := diag.NewError(m.Kind.Code(), "", m.Kind.Code().Title()).
		WithNote("expected", m.Expected(in))
	if a := m.ActualLabel(in); a != "" {
		d = d.WithNote("actual", a)
	}
	if m.Arg >= 0 {
		d = d.WithNote("argument", fmt.Sprintf("%d", m.Arg+1))
	}
	d = d.WithNote("reason", m.Reason(in))
	if m.Subst != nil && m.Subst.Len() > 0 {
		d = d.WithNote("substitutions", m.Subst.String())
	}
	return d
}

package match

import (
	"fmt"

	"typematch/internal/types"
)

// matchClass matches a Class or Generic actual against a Class or Generic
// formal: the actual's class must descend from the formal's, then the
// actual's arguments, projected onto the formal's class, are matched per
// parameter variance. A bare generic class stands for its Any
// parameterization.
func (s *state) matchClass(actual types.TypeID, at types.Type, formal types.TypeID, ft types.Type, depth int) *Mismatch {
	ix := s.m.index
	if ix.AnyDerived(at.Class) {
		s.rule("class", "%s derives from Any", s.in.ClassName(at.Class))
		return nil
	}
	if !ix.IsSubclass(at.Class, ft.Class) {
		return s.fail(KindHierarchy, actual, formal)
	}
	if ft.Kind == types.KindClass {
		return nil
	}

	var args []types.TypeID
	if at.Kind == types.KindGeneric {
		args = s.in.GenericArgs(actual)
	}
	projected, ok := ix.Project(at.Class, args, ft.Class)
	if !ok {
		return s.fail(KindHierarchy, actual, formal)
	}
	if projected == nil {
		return nil
	}
	return s.matchArgs(ft.Class, projected, s.in.GenericArgs(formal), actual, formal, depth)
}

func (s *state) matchArgs(cls types.ClassID, aArgs, fArgs []types.TypeID, actual, formal types.TypeID, depth int) *Mismatch {
	if len(aArgs) != len(fArgs) {
		return s.fail(KindTypeMismatch, actual, formal)
	}
	params := s.m.index.Params(cls)
	anyT := s.m.builtins.Any
	for i := range fArgs {
		variance := types.VarianceCovariant
		if i < len(params) {
			if info, ok := s.in.TypeVarInfo(params[i]); ok {
				variance = info.Variance
			}
		}
		a, f := aArgs[i], fArgs[i]
		switch variance {
		case types.VarianceContravariant:
			if mm := s.match(f, a, depth); mm != nil {
				return mm
			}
		case types.VarianceInvariant:
			if a == anyT || f == anyT {
				continue
			}
			mm := s.match(a, f, depth)
			if mm.Fatal() {
				return mm
			}
			if mm != nil || s.env.Resolve(a) != s.env.Resolve(f) {
				conflict := s.fail(KindVariance, a, f)
				conflict.Detail = fmt.Sprintf("parameter %d of %s is invariant: %s is not %s",
					i+1, s.in.ClassName(cls),
					types.LabelResolved(s.in, a, s.env.Resolver()),
					types.LabelResolved(s.in, f, s.env.Resolver()))
				return conflict
			}
		default:
			if mm := s.match(a, f, depth); mm != nil {
				return mm
			}
		}
	}
	return nil
}

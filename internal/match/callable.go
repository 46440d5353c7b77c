package match

import (
	"fmt"

	"typematch/internal/types"
)

// matchCallable compares signatures: parameters contravariantly, the result
// covariantly. A bound method's receiver is dropped before comparison.
func (s *state) matchCallable(actual, formal types.TypeID, depth int) *Mismatch {
	a, ok := s.in.CallableInfo(actual)
	if !ok {
		return s.fail(KindTypeMismatch, actual, formal)
	}
	f, ok := s.in.CallableInfo(formal)
	if !ok {
		return s.fail(KindTypeMismatch, actual, formal)
	}

	switch {
	case f.Variadic:
		// Callable[..., R] leaves the parameter list open
	case a.Variadic:
		// a variadic actual takes whatever the formal passes
	default:
		fParams := f.EffectiveParams()
		aParams := a.EffectiveParams()
		if len(aParams) < len(fParams) {
			mm := s.fail(KindArity, actual, formal)
			mm.Detail = fmt.Sprintf("accepts %d positional arguments, %d are passed", len(aParams), len(fParams))
			return mm
		}
		if req := a.EffectiveRequired(); req > len(fParams) {
			mm := s.fail(KindArity, actual, formal)
			mm.Detail = fmt.Sprintf("requires %d positional arguments, %d are passed", req, len(fParams))
			return mm
		}
		for i, fp := range fParams {
			if mm := s.match(fp, aParams[i], depth); mm != nil {
				return mm
			}
		}
	}
	return s.match(a.Result, f.Result, depth)
}

// constructorOf models calling a class object: any arguments, an instance
// of the class as the result.
func (s *state) constructorOf(inner types.TypeID) types.TypeID {
	result := inner
	if tt, ok := s.in.Lookup(inner); ok && tt.Kind == types.KindClass {
		if params := s.m.index.Params(tt.Class); len(params) > 0 {
			args := make([]types.TypeID, len(params))
			for i := range args {
				args[i] = s.m.builtins.Any
			}
			result = s.in.MustGeneric(tt.Class, args)
		}
	}
	return s.in.VariadicFunc(result)
}

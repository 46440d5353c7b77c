package match

import (
	"typematch/internal/types"
)

// matchFormalVar handles a type variable in formal position.
func (s *state) matchFormalVar(actual, v types.TypeID, depth int) *Mismatch {
	if prev, ok := s.env.Lookup(v); ok {
		return s.unify(v, prev, actual, func() *Mismatch { return s.match(actual, prev, depth) })
	}
	info, ok := s.in.TypeVarInfo(v)
	if !ok {
		return s.fail(KindTypeMismatch, actual, v)
	}
	if s.in.KindOf(actual) == types.KindTypeVar {
		if bound, ok := s.env.Lookup(actual); ok {
			return s.match(bound, v, depth)
		}
		return s.varAgainstVar(actual, v, info, depth)
	}
	return s.bindChecked(v, info, actual, depth)
}

// matchActualVar handles a type variable in actual position, which is where
// a formal signature's variables land after parameters are reversed.
func (s *state) matchActualVar(u, formal types.TypeID, depth int) *Mismatch {
	if prev, ok := s.env.Lookup(u); ok {
		return s.unify(u, prev, formal, func() *Mismatch { return s.match(prev, formal, depth) })
	}
	info, ok := s.in.TypeVarInfo(u)
	if !ok {
		return s.fail(KindTypeMismatch, u, formal)
	}
	return s.bindChecked(u, info, formal, depth)
}

// unify runs check against an existing binding and reports a failure as a
// conflict between the earlier and the later type.
func (s *state) unify(v, prev, later types.TypeID, check func() *Mismatch) *Mismatch {
	mm := check()
	if mm == nil || mm.Fatal() {
		return mm
	}
	conflict := s.fail(KindUnification, later, v)
	conflict.Var = v
	conflict.Conflict = prev
	s.rule("unify", "%s: %s conflicts with %s", s.in.TypeVarName(v),
		types.Label(s.in, later), types.Label(s.in, prev))
	return conflict
}

// bindChecked binds v to candidate after checking v's bound or constraints.
// A constrained variable is fixed to the first constraint candidate matches.
func (s *state) bindChecked(v types.TypeID, info *types.TypeVarInfo, candidate types.TypeID, depth int) *Mismatch {
	switch {
	case info.HasBound():
		bound := s.erase(info.Bound, v)
		if mm := s.probe(candidate, bound, depth); mm != nil {
			if mm.Fatal() {
				return mm
			}
			fail := s.fail(KindBound, candidate, bound)
			fail.Var = v
			return fail
		}
	case info.Constrained():
		for _, c := range info.Constraints {
			mm := s.probe(candidate, s.erase(c, v), depth)
			if mm == nil {
				s.env.Bind(v, c)
				s.rule("constraint", "%s := %s (from %s)", s.in.TypeVarName(v),
					types.Label(s.in, c), types.Label(s.in, candidate))
				return nil
			}
			if mm.Fatal() {
				return mm
			}
		}
		fail := s.fail(KindConstraint, candidate, v)
		fail.Var = v
		return fail
	}
	s.env.Bind(v, candidate)
	s.rule("typevar", "%s := %s", s.in.TypeVarName(v), types.Label(s.in, candidate))
	return nil
}

// varAgainstVar checks an unbound actual variable u against an unbound
// formal variable v: u's bound or every one of its constraints must satisfy
// v's bound; against a constrained v, u's constraints must be a subset.
func (s *state) varAgainstVar(u, v types.TypeID, vInfo *types.TypeVarInfo, depth int) *Mismatch {
	uInfo, ok := s.in.TypeVarInfo(u)
	if !ok {
		return s.fail(KindTypeMismatch, u, v)
	}
	switch {
	case vInfo.HasBound():
		bound := s.erase(vInfo.Bound, v)
		var fail *Mismatch
		switch {
		case uInfo.HasBound():
			fail = s.probe(uInfo.Bound, bound, depth)
		case uInfo.Constrained():
			for _, c := range uInfo.Constraints {
				if fail = s.probe(c, bound, depth); fail != nil {
					break
				}
			}
		default:
			fail = s.fail(KindBound, u, bound)
		}
		if fail != nil {
			if fail.Fatal() {
				return fail
			}
			mm := s.fail(KindBound, u, bound)
			mm.Var = v
			return mm
		}
	case vInfo.Constrained():
		if !uInfo.Constrained() {
			mm := s.fail(KindConstraint, u, v)
			mm.Var = v
			return mm
		}
		for _, c := range uInfo.Constraints {
			if !s.matchesAny(c, vInfo.Constraints, v, depth) {
				mm := s.fail(KindConstraint, u, v)
				mm.Var = v
				mm.Detail = "constraint " + types.Label(s.in, c) + " of " + s.in.TypeVarName(u) +
					" is not among the constraints of " + s.in.TypeVarName(v)
				return mm
			}
		}
	}
	s.env.Bind(v, u)
	s.rule("typevar", "%s := %s", s.in.TypeVarName(v), s.in.TypeVarName(u))
	return nil
}

func (s *state) matchesAny(t types.TypeID, candidates []types.TypeID, v types.TypeID, depth int) bool {
	for _, c := range candidates {
		if s.probe(t, s.erase(c, v), depth) == nil {
			return true
		}
	}
	return false
}

// probe matches without keeping any binding the check makes.
func (s *state) probe(actual, formal types.TypeID, depth int) *Mismatch {
	mark := s.env.Checkpoint()
	mm := s.match(actual, formal, depth)
	s.env.Rollback(mark)
	return mm
}

// erase replaces v by Any inside t so checking v's own bound cannot recurse
// into v.
func (s *state) erase(t, v types.TypeID) types.TypeID {
	anyT := s.m.builtins.Any
	return s.in.Substitute(t, func(x types.TypeID) (types.TypeID, bool) {
		if x == v {
			return anyT, true
		}
		return types.NoTypeID, false
	})
}

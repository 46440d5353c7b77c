package match

import (
	"typematch/internal/binding"
	"typematch/internal/subst"
	"typematch/internal/types"
)

// VarResult reports how a Variable fared against a formal type.
type VarResult struct {
	// Index of the matching binding, -1 when none matched.
	Index   int
	Binding binding.Binding
	Env     *subst.Env
	// Mismatches holds one entry per binding tried and rejected, in order.
	Mismatches []*Mismatch
}

// OK reports whether some binding matched.
func (r VarResult) OK() bool { return r.Index >= 0 }

// Mismatch returns the first rejection, nil on success.
func (r VarResult) Mismatch() *Mismatch {
	if r.OK() || len(r.Mismatches) == 0 {
		return nil
	}
	return r.Mismatches[0]
}

// MatchVar succeeds when at least one binding of v matches formal. Bindings
// are tried in insertion order; the first success is reported. A fatal
// mismatch stops the search.
func (m *Matcher) MatchVar(v binding.Variable, formal types.TypeID) VarResult {
	res := VarResult{Index: -1}
	for i, b := range v.Bindings() {
		env, mm := m.Match(b.Type, formal)
		if mm == nil {
			res.Index = i
			res.Binding = b
			res.Env = env
			return res
		}
		res.Mismatches = append(res.Mismatches, mm)
		if mm.Fatal() {
			break
		}
	}
	return res
}

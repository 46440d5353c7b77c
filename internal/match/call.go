package match

import (
	"fmt"

	"typematch/internal/binding"
	"typematch/internal/subst"
	"typematch/internal/trace"
	"typematch/internal/types"
)

// Signature is a formal function signature loaded from declarations.
type Signature struct {
	Name   string
	Params []types.TypeID
	// Defaults counts the trailing parameters that have default values.
	Defaults int
	// Variadic accepts any number of extra positional arguments.
	Variadic bool
	// Result is the declared return type; NoTypeID means Any.
	Result types.TypeID
}

// SignatureOf reads a Signature from a Callable node; a bound method's
// receiver is dropped.
func SignatureOf(in *types.Interner, callable types.TypeID) (Signature, bool) {
	info, ok := in.CallableInfo(callable)
	if !ok {
		return Signature{}, false
	}
	params := info.EffectiveParams()
	return Signature{
		Params:   params,
		Defaults: len(params) - info.EffectiveRequired(),
		Variadic: info.Variadic,
		Result:   info.Result,
	}, true
}

// Required is the number of parameters without defaults.
func (sig Signature) Required() int {
	return max(len(sig.Params)-sig.Defaults, 0)
}

// Callable interns the signature as a Callable node.
func (sig Signature) Callable(in *types.Interner) (types.TypeID, error) {
	return in.Callable(types.CallableInfo{
		Params:   sig.Params,
		Required: sig.Required(),
		Result:   sig.Result,
		Variadic: sig.Variadic,
	})
}

// CallResult is the outcome of a successful MatchCall.
type CallResult struct {
	// Return is the declared result with solved type variables substituted.
	Return types.TypeID
	Env    *subst.Env
	// Chosen holds, per argument, the binding that matched.
	Chosen []binding.Binding
}

// MatchCall matches each argument against its parameter in one shared
// environment, so repeated type variables across parameters must agree.
// Each argument is existential over its bindings. Extra arguments to a
// variadic signature are unchecked.
func (m *Matcher) MatchCall(sig Signature, args []binding.Variable) (CallResult, *Mismatch) {
	name := sig.Name
	if name == "" {
		name = "call"
	}
	span := trace.Begin(m.tracer, trace.ScopeMatch, name, 0)
	env := subst.New(m.types)
	formal, err := sig.Callable(m.types)
	if err != nil {
		formal = m.builtins.Any
	}

	if mm := m.checkArity(sig, formal, len(args)); mm != nil {
		mm.Subst = env.Clone()
		span.WithExtra("result", "mismatch").WithExtra("kind", mm.Kind.String()).End(mm.Detail)
		return CallResult{}, mm
	}

	s := m.newState(env, span.ID())
	chosen := make([]binding.Binding, 0, len(args))
	for i, arg := range args {
		if i >= len(sig.Params) {
			break
		}
		param := sig.Params[i]
		b, mm := s.matchArg(arg, param)
		if mm != nil {
			mm.Arg = i
			m.endSpan(span, mm.Actual, param, mm)
			return CallResult{}, mm
		}
		chosen = append(chosen, b)
	}

	result := sig.Result
	if result == types.NoTypeID {
		result = m.builtins.Any
	}
	ret := env.Resolve(result)
	span.WithExtra("return", types.Label(m.types, ret)).WithExtra("result", "ok").End("")
	return CallResult{Return: ret, Env: env, Chosen: chosen}, nil
}

func (m *Matcher) checkArity(sig Signature, formal types.TypeID, n int) *Mismatch {
	var detail string
	switch {
	case !sig.Variadic && n > len(sig.Params):
		detail = fmt.Sprintf("takes %d positional arguments, %d given", len(sig.Params), n)
	case n < sig.Required():
		detail = fmt.Sprintf("missing %d required arguments", sig.Required()-n)
	default:
		return nil
	}
	mm := newMismatch(m.types, KindArity, types.NoTypeID, formal)
	mm.Detail = detail
	return mm
}

// matchArg tries each binding of arg against param, keeping the first
// success. On failure the first rejection is reported.
func (s *state) matchArg(arg binding.Variable, param types.TypeID) (binding.Binding, *Mismatch) {
	var first *Mismatch
	for _, b := range arg.Bindings() {
		mark := s.env.Checkpoint()
		mm := s.match(b.Type, param, 0)
		if mm == nil {
			return b, nil
		}
		s.finish(mm, b.Type, param)
		s.env.Rollback(mark)
		if mm.Fatal() {
			return binding.Binding{}, mm
		}
		if first == nil {
			first = mm
		}
	}
	if first == nil {
		first = newMismatch(s.in, KindTypeMismatch, types.NoTypeID, param)
		first.Detail = "argument has no bindings"
	}
	return binding.Binding{}, first
}

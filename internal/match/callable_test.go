package match

import (
	"testing"

	"typematch/internal/types"
)

func TestBoundAndUnboundMethods(t *testing.T) {
	w := newWorld(t)
	w.class("A", nil, "object")
	a, i, b := w.c("A"), w.c("int"), w.c("bool")

	method := types.CallableInfo{Params: []types.TypeID{a, i}, Required: 2, Result: b}
	bound := method
	bound.Receiver = types.ReceiverBound
	unbound := method
	unbound.Receiver = types.ReceiverUnbound

	w.mustMatch(w.callable(bound), w.fn(i, b))
	w.mustFail(w.callable(bound), w.fn(i, a, b), KindArity)
	w.mustMatch(w.callable(unbound), w.fn(i, a, b))
	w.mustFail(w.callable(unbound), w.fn(i, b), KindArity)
}

func TestDefaultedParameters(t *testing.T) {
	w := newWorld(t)
	anyT := w.c("Any")
	formal := w.fn(anyT, w.c("int"))

	withDefault := func(p types.TypeID) types.TypeID {
		return w.callable(types.CallableInfo{Params: []types.TypeID{p}, Required: 0, Result: w.c("None")})
	}
	w.mustMatch(withDefault(w.c("int")), formal)
	w.mustFail(withDefault(w.c("str")), formal, KindHierarchy)

	// a trailing defaulted parameter may stay unfilled
	extra := w.callable(types.CallableInfo{Params: []types.TypeID{w.c("int"), w.c("str")}, Required: 1, Result: anyT})
	w.mustMatch(extra, formal)
	// a second required parameter may not
	w.mustFail(w.fn(anyT, w.c("int"), w.c("str")), formal, KindArity)
	// nor may a missing one
	w.mustFail(w.fn(anyT), formal, KindArity)
}

func TestVariadicSignatures(t *testing.T) {
	w := newWorld(t)
	tv := w.free("T")
	open := w.in.VariadicFunc(tv)

	for _, f := range []types.TypeID{
		w.fn(w.c("str")),
		w.fn(w.c("str"), w.c("int")),
		w.fn(w.c("str"), w.c("int"), w.c("float"), w.c("bool")),
	} {
		env := w.mustMatch(f, open)
		if got := w.resolved(env)["T"]; got != "str" {
			t.Fatalf("%s: T = %s", w.label(f), got)
		}
	}

	anything := w.in.VariadicFunc(w.c("int"))
	w.mustMatch(anything, w.fn(w.c("int")))
	w.mustMatch(anything, w.fn(w.c("int"), w.c("str"), w.c("float")))
	w.mustFail(anything, w.fn(w.c("str"), w.c("int")), KindHierarchy)
}

func TestCallableAgainstClasses(t *testing.T) {
	w := newWorld(t)
	f := w.fn(w.c("int"))
	w.mustMatch(f, w.c("object"))
	w.mustFail(f, w.c("int"), KindTypeMismatch)
	w.mustFail(w.c("int"), f, KindTypeMismatch)
}

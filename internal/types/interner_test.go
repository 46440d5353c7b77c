package types

import "testing"

func declare(t *testing.T, in *Interner, name string, params ...TypeID) ClassID {
	t.Helper()
	cls, err := in.DeclareClass(name, params)
	if err != nil {
		t.Fatalf("declare %s: %v", name, err)
	}
	return cls
}

func newVar(t *testing.T, in *Interner, name string) TypeID {
	t.Helper()
	v, err := in.TypeVar(TypeVarSpec{Name: name})
	if err != nil {
		t.Fatalf("typevar %s: %v", name, err)
	}
	return v
}

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Any == NoTypeID || b.None == NoTypeID || b.Nothing == NoTypeID {
		t.Fatalf("builtins not initialized: %+v", b)
	}
	if got := in.KindOf(b.Any); got != KindAny {
		t.Fatalf("expected any kind, got %v", got)
	}
	if _, ok := in.Lookup(NoTypeID); ok {
		t.Fatalf("NoTypeID must not resolve")
	}
}

func TestGenericDeduplicatesAndChecksArity(t *testing.T) {
	in := NewInterner()
	str := in.Class(declare(t, in, "str"))
	list := declare(t, in, "List", newVar(t, in, "T"))

	a := in.MustGeneric(list, []TypeID{str})
	b := in.MustGeneric(list, []TypeID{str})
	if a != b {
		t.Fatalf("structurally equal generics should share a TypeID")
	}
	if _, err := in.Generic(list, nil); err == nil {
		t.Fatalf("expected arity error for List[]")
	}
	if _, err := in.Generic(list, []TypeID{str, str}); err == nil {
		t.Fatalf("expected arity error for List[str, str]")
	}
	info, ok := in.GenericInfo(a)
	if !ok || info.Class != list || len(info.Args) != 1 || info.Args[0] != str {
		t.Fatalf("unexpected generic info %+v", info)
	}
}

func TestUnionFlattensAndNormalises(t *testing.T) {
	in := NewInterner()
	i := in.Class(declare(t, in, "int"))
	s := in.Class(declare(t, in, "str"))
	f := in.Class(declare(t, in, "float"))

	inner := in.Union(i, s)
	outer := in.Union(inner, f, i)
	members := in.UnionMembers(outer)
	if len(members) != 3 || members[0] != i || members[1] != s || members[2] != f {
		t.Fatalf("expected flattened [int str float], got %v", members)
	}
	for _, m := range members {
		if in.KindOf(m) == KindUnion {
			t.Fatalf("union member is itself a union")
		}
	}
	if got := in.Union(i); got != i {
		t.Fatalf("single-member union should collapse")
	}
	if got := in.Union(); got != in.Builtins().Nothing {
		t.Fatalf("empty union should be nothing")
	}
	if got := in.Union(in.Builtins().Nothing, s); got != s {
		t.Fatalf("nothing member should be dropped")
	}
}

func TestTypeVarsHaveDistinctIdentity(t *testing.T) {
	in := NewInterner()
	a := newVar(t, in, "T")
	b := newVar(t, in, "T")
	if a == b {
		t.Fatalf("each TypeVar registration must be a distinct identity")
	}
	str := in.Class(declare(t, in, "str"))
	if _, err := in.TypeVar(TypeVarSpec{Name: "X", Bound: str, Constraints: []TypeID{str, str}}); err == nil {
		t.Fatalf("bound and constraints together should be rejected")
	}
	if _, err := in.TypeVar(TypeVarSpec{Name: "X", Constraints: []TypeID{str}}); err == nil {
		t.Fatalf("single constraint should be rejected")
	}
}

func TestDeclareClassRejectsBadParams(t *testing.T) {
	in := NewInterner()
	str := in.Class(declare(t, in, "str"))
	if _, err := in.DeclareClass("Box", []TypeID{str}); err == nil {
		t.Fatalf("non-typevar parameter should be rejected")
	}
	if _, err := in.DeclareClass("str", nil); err == nil {
		t.Fatalf("duplicate class should be rejected")
	}
	v := newVar(t, in, "T")
	if _, err := in.DeclareClass("Pair", []TypeID{v, v}); err == nil {
		t.Fatalf("repeated parameter should be rejected")
	}
}

func TestCallableValidationAndReceiver(t *testing.T) {
	in := NewInterner()
	a := in.Class(declare(t, in, "A"))
	i := in.Class(declare(t, in, "int"))
	b := in.Class(declare(t, in, "bool"))

	if _, err := in.Callable(CallableInfo{Params: []TypeID{i}, Required: 2, Result: b}); err == nil {
		t.Fatalf("required beyond params should be rejected")
	}
	if _, err := in.Callable(CallableInfo{Receiver: ReceiverBound, Result: b}); err == nil {
		t.Fatalf("bound method without receiver should be rejected")
	}
	bound, err := in.Callable(CallableInfo{Params: []TypeID{a, i}, Required: 2, Result: b, Receiver: ReceiverBound})
	if err != nil {
		t.Fatalf("callable: %v", err)
	}
	info, _ := in.CallableInfo(bound)
	if eff := info.EffectiveParams(); len(eff) != 1 || eff[0] != i {
		t.Fatalf("bound method should strip receiver, got %v", eff)
	}
	if info.EffectiveRequired() != 1 {
		t.Fatalf("effective required = %d, want 1", info.EffectiveRequired())
	}
	unbound, _ := in.Callable(CallableInfo{Params: []TypeID{a, i}, Required: 2, Result: b, Receiver: ReceiverUnbound})
	if unbound == bound {
		t.Fatalf("receiver mode is part of callable identity")
	}
}

func TestSubstituteResolvesChains(t *testing.T) {
	in := NewInterner()
	i := in.Class(declare(t, in, "int"))
	tv := newVar(t, in, "T")
	uv := newVar(t, in, "U")
	list := declare(t, in, "List", newVar(t, in, "E"))

	listU := in.MustGeneric(list, []TypeID{uv})
	fn := in.Func([]TypeID{tv}, tv)

	m := map[TypeID]TypeID{tv: listU, uv: i}
	got := in.Substitute(fn, MapResolver(m))
	want := in.Func([]TypeID{in.MustGeneric(list, []TypeID{i})}, in.MustGeneric(list, []TypeID{i}))
	if got != want {
		t.Fatalf("substitute = %s, want %s", Label(in, got), Label(in, want))
	}

	// self-referential resolution stays symbolic instead of looping
	loop := map[TypeID]TypeID{tv: in.MustGeneric(list, []TypeID{tv})}
	if out := in.Substitute(tv, MapResolver(loop)); Label(in, out) != "List[T]" {
		t.Fatalf("cyclic substitution = %s", Label(in, out))
	}

	if vars := in.FreeTypeVars(fn); len(vars) != 1 || vars[0] != tv {
		t.Fatalf("free vars = %v", vars)
	}
	if in.ContainsTypeVar(i) {
		t.Fatalf("int has no type variables")
	}
}

func TestLabel(t *testing.T) {
	in := NewInterner()
	i := in.Class(declare(t, in, "int"))
	s := in.Class(declare(t, in, "str"))
	foo := in.Class(declare(t, in, "Foo"))
	tv := newVar(t, in, "T")

	tests := []struct {
		id   TypeID
		want string
	}{
		{in.Func([]TypeID{i}, s), "Callable[[int], str]"},
		{in.Func(nil, s), "Callable[[], str]"},
		{in.VariadicFunc(tv), "Callable[..., T]"},
		{in.Union(i, s), "Union[int, str]"},
		{in.Optional(s), "Optional[str]"},
		{in.ClassObject(foo), "Type[Foo]"},
		{in.Builtins().Any, "Any"},
		{in.Builtins().None, "None"},
		{in.Builtins().Nothing, "nothing"},
	}
	for _, tt := range tests {
		if got := Label(in, tt.id); got != tt.want {
			t.Errorf("Label = %q, want %q", got, tt.want)
		}
	}

	resolved := LabelResolved(in, in.Func([]TypeID{tv}, tv), MapResolver(map[TypeID]TypeID{tv: i}))
	if resolved != "Callable[[int], int]" {
		t.Fatalf("resolved label = %q", resolved)
	}
}

func TestParseVariance(t *testing.T) {
	for in, want := range map[string]Variance{
		"":              VarianceCovariant,
		"covariant":     VarianceCovariant,
		"contravariant": VarianceContravariant,
		"invariant":     VarianceInvariant,
	} {
		got, err := ParseVariance(in)
		if err != nil || got != want {
			t.Errorf("ParseVariance(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseVariance("sideways"); err == nil {
		t.Fatalf("expected error for unknown variance")
	}
}

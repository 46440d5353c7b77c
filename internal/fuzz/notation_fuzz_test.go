package fuzztests

import (
	"testing"

	"typematch/internal/scenario"
	"typematch/internal/testkit"
	"typematch/internal/types"
)

// fixedScope knows int, str and List[T] plus the variable T.
type fixedScope struct {
	names map[string]scenario.Ref
}

func (s fixedScope) Lookup(name string) (scenario.Ref, bool, error) {
	ref, ok := s.names[name]
	return ref, ok, nil
}

func newScope(t *testing.T, in *types.Interner) fixedScope {
	t.Helper()
	tv, err := in.TypeVar(types.TypeVarSpec{Name: "T"})
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]scenario.Ref{"T": {Var: tv}}
	for _, decl := range []struct {
		name   string
		params []types.TypeID
	}{{"int", nil}, {"str", nil}, {"List", []types.TypeID{tv}}} {
		cls, err := in.DeclareClass(decl.name, decl.params)
		if err != nil {
			t.Fatal(err)
		}
		names[decl.name] = scenario.Ref{Class: cls}
	}
	return fixedScope{names: names}
}

func FuzzNotation(f *testing.F) {
	for _, seed := range notationSeeds {
		f.Add([]byte(seed))
	}
	f.Fuzz(func(t *testing.T, input []byte) {
		src := string(clip(input))
		in := types.NewInterner()
		scope := newScope(t, in)

		id, err := scenario.Parse(in, scope, src)
		if err == nil {
			if id == types.NoTypeID || types.Label(in, id) == "" {
				t.Fatalf("parse %q returned an empty type", src)
			}
		}
		alts, err := scenario.ParseAlternatives(in, scope, src)
		if err == nil && len(alts) == 0 {
			t.Fatalf("alternatives of %q are empty", src)
		}
		if err := testkit.CheckTypeGraph(in); err != nil {
			t.Fatalf("parse %q broke the type graph: %v", src, err)
		}
	})
}

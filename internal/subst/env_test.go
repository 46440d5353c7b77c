package subst

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"typematch/internal/types"
)

func setup(t *testing.T) (*types.Interner, types.TypeID, types.TypeID, types.TypeID, types.ClassID) {
	t.Helper()
	in := types.NewInterner()
	cls, err := in.DeclareClass("int", nil)
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	tv, _ := in.TypeVar(types.TypeVarSpec{Name: "T"})
	uv, _ := in.TypeVar(types.TypeVarSpec{Name: "U"})
	e, _ := in.TypeVar(types.TypeVarSpec{Name: "E"})
	list, err := in.DeclareClass("List", []types.TypeID{e})
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	return in, in.Class(cls), tv, uv, list
}

func TestBindDoesNotOverwrite(t *testing.T) {
	in, i, tv, _, _ := setup(t)
	env := New(in)
	if !env.Bind(tv, i) {
		t.Fatalf("first bind should succeed")
	}
	if env.Bind(tv, in.Builtins().None) {
		t.Fatalf("rebinding must be refused")
	}
	if got, _ := env.Lookup(tv); got != i {
		t.Fatalf("binding was overwritten")
	}
}

func TestCheckpointRollback(t *testing.T) {
	in, i, tv, uv, _ := setup(t)
	env := New(in)
	env.Bind(tv, i)
	m := env.Checkpoint()
	env.Bind(uv, i)
	if !env.Bound(uv) {
		t.Fatalf("U should be bound")
	}
	env.Rollback(m)
	if env.Bound(uv) || !env.Bound(tv) || env.Len() != 1 {
		t.Fatalf("rollback kept the wrong bindings: %s", env)
	}
	// U can be bound again after the rollback
	if !env.Bind(uv, in.Builtins().None) {
		t.Fatalf("rebind after rollback should succeed")
	}
	env.Rollback(env.Checkpoint() + 10)
	if env.Len() != 2 {
		t.Fatalf("rollback past the end must be a no-op")
	}
}

func TestResolveFollowsChains(t *testing.T) {
	in, i, tv, uv, list := setup(t)
	env := New(in)
	env.Bind(tv, in.MustGeneric(list, []types.TypeID{uv}))
	env.Bind(uv, i)

	want := in.MustGeneric(list, []types.TypeID{i})
	if got := env.Resolve(tv); got != want {
		t.Fatalf("resolve = %s", types.Label(in, got))
	}
	if diff := cmp.Diff(map[types.TypeID]types.TypeID{tv: want, uv: i}, env.Resolved()); diff != "" {
		t.Fatalf("resolved mismatch (-want +got):\n%s", diff)
	}
	if got := env.String(); got != "{T=List[int], U=int}" {
		t.Fatalf("String = %q", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	in, i, tv, uv, _ := setup(t)
	env := New(in)
	env.Bind(tv, i)
	c := env.Clone()
	c.Bind(uv, i)
	if env.Bound(uv) {
		t.Fatalf("clone shares state with the original")
	}
	if diff := cmp.Diff([]Pair{{Var: tv, Type: i}}, env.Pairs()); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}
}

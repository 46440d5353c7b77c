package match

import (
	"testing"

	"typematch/internal/hierarchy"
	"typematch/internal/subst"
	"typematch/internal/testkit"
	"typematch/internal/types"
)

// world is a small class lattice shared by the matcher tests:
//
//	object
//	├── type
//	├── int ── bool
//	├── float
//	├── complex
//	└── basestring ── str, unicode
type world struct {
	t       *testing.T
	in      *types.Interner
	classes map[string]types.ClassID
	index   *hierarchy.Index
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{t: t, in: types.NewInterner(), classes: map[string]types.ClassID{}}
	w.class("object", nil)
	w.class("type", nil, "object")
	w.class("int", nil, "object")
	w.class("bool", nil, "int")
	w.class("float", nil, "object")
	w.class("complex", nil, "object")
	w.class("basestring", nil, "object")
	w.class("str", nil, "basestring")
	w.class("unicode", nil, "basestring")
	t.Cleanup(func() {
		if err := testkit.CheckTypeGraph(w.in); err != nil {
			t.Errorf("type graph invariants: %v", err)
		}
	})
	return w
}

// class declares name with params and bases given by name or, through
// classT, by TypeID.
func (w *world) class(name string, params []types.TypeID, bases ...string) types.ClassID {
	w.t.Helper()
	ids := make([]types.TypeID, len(bases))
	for i, b := range bases {
		ids[i] = w.c(b)
	}
	return w.classT(name, params, ids...)
}

func (w *world) classT(name string, params []types.TypeID, bases ...types.TypeID) types.ClassID {
	w.t.Helper()
	if w.index != nil {
		w.t.Fatalf("class %s declared after the index was built", name)
	}
	cls, err := w.in.DeclareClass(name, params)
	if err != nil {
		w.t.Fatalf("declare %s: %v", name, err)
	}
	if err := w.in.SetBases(cls, bases); err != nil {
		w.t.Fatalf("bases of %s: %v", name, err)
	}
	w.classes[name] = cls
	return cls
}

// c returns the Concrete node of a declared class; "Any" and "None" give
// the builtins.
func (w *world) c(name string) types.TypeID {
	w.t.Helper()
	switch name {
	case "Any":
		return w.in.Builtins().Any
	case "None":
		return w.in.Builtins().None
	}
	cls, ok := w.classes[name]
	if !ok {
		w.t.Fatalf("unknown class %s", name)
	}
	return w.in.Class(cls)
}

func (w *world) g(name string, args ...types.TypeID) types.TypeID {
	w.t.Helper()
	id, err := w.in.Generic(w.classes[name], args)
	if err != nil {
		w.t.Fatalf("generic %s: %v", name, err)
	}
	return id
}

func (w *world) tv(spec types.TypeVarSpec) types.TypeID {
	w.t.Helper()
	id, err := w.in.TypeVar(spec)
	if err != nil {
		w.t.Fatalf("typevar %s: %v", spec.Name, err)
	}
	return id
}

func (w *world) free(name string) types.TypeID {
	return w.tv(types.TypeVarSpec{Name: name})
}

func (w *world) fn(result types.TypeID, params ...types.TypeID) types.TypeID {
	return w.in.Func(params, result)
}

func (w *world) callable(info types.CallableInfo) types.TypeID {
	w.t.Helper()
	id, err := w.in.Callable(info)
	if err != nil {
		w.t.Fatalf("callable: %v", err)
	}
	return id
}

func (w *world) matcher(opts ...Option) *Matcher {
	w.t.Helper()
	if w.index == nil {
		ix, err := hierarchy.Build(w.in, hierarchy.Options{
			Top:       w.classes["object"],
			Metaclass: w.classes["type"],
		})
		if err != nil {
			w.t.Fatalf("build index: %v", err)
		}
		if err := testkit.CheckHierarchy(ix); err != nil {
			w.t.Fatalf("hierarchy invariants: %v", err)
		}
		w.index = ix
	}
	return New(w.in, w.index, opts...)
}

func (w *world) label(id types.TypeID) string { return types.Label(w.in, id) }

// mustMatch fails the test unless actual matches formal and returns the
// environment.
func (w *world) mustMatch(actual, formal types.TypeID) *subst.Env {
	w.t.Helper()
	env, mm := w.matcher().Match(actual, formal)
	if mm != nil {
		w.t.Fatalf("%s vs %s: unexpected mismatch: %v", w.label(actual), w.label(formal), mm)
	}
	return env
}

// mustFail fails the test unless actual is rejected with kind.
func (w *world) mustFail(actual, formal types.TypeID, kind Kind) *Mismatch {
	w.t.Helper()
	_, mm := w.matcher().Match(actual, formal)
	if mm == nil {
		w.t.Fatalf("%s vs %s: expected %s, got a match", w.label(actual), w.label(formal), kind)
	}
	if mm.Kind != kind {
		w.t.Fatalf("%s vs %s: expected %s, got %v", w.label(actual), w.label(formal), kind, mm)
	}
	return mm
}

// resolved renders every binding of env as name -> label.
func (w *world) resolved(env *subst.Env) map[string]string {
	out := map[string]string{}
	for v, t := range env.Resolved() {
		out[w.in.TypeVarName(v)] = w.label(t)
	}
	return out
}

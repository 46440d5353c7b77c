package scenario

import (
	"errors"
	"testing"

	"typematch/internal/types"
)

// mapScope resolves names from fixed maps.
type mapScope struct {
	classes map[string]types.ClassID
	vars    map[string]types.TypeID
}

func (s mapScope) Lookup(name string) (Ref, bool, error) {
	if v, ok := s.vars[name]; ok {
		return Ref{Var: v}, true, nil
	}
	if c, ok := s.classes[name]; ok {
		return Ref{Class: c}, true, nil
	}
	return Ref{}, false, nil
}

func newNotationScope(t *testing.T) (*types.Interner, mapScope) {
	t.Helper()
	in := types.NewInterner()
	s := mapScope{classes: map[string]types.ClassID{}, vars: map[string]types.TypeID{}}
	tv, err := in.TypeVar(types.TypeVarSpec{Name: "T"})
	if err != nil {
		t.Fatal(err)
	}
	s.vars["T"] = tv
	for _, name := range []string{"int", "str", "mod.Thing", "caf\u00e9"} {
		cls, err := in.DeclareClass(name, nil)
		if err != nil {
			t.Fatal(err)
		}
		s.classes[name] = cls
	}
	list, err := in.DeclareClass("List", []types.TypeID{tv})
	if err != nil {
		t.Fatal(err)
	}
	s.classes["List"] = list
	return in, s
}

func TestParseRoundTripsLabels(t *testing.T) {
	in, scope := newNotationScope(t)
	tests := []struct {
		src, want string
	}{
		{"int", "int"},
		{"Any", "Any"},
		{"None", "None"},
		{"List[int]", "List[int]"},
		{"Union[int, str, int]", "Union[int, str]"},
		{"Optional[int]", "Optional[int]"},
		{"Type[int]", "Type[int]"},
		{"Callable[[int, T], List[T]]", "Callable[[int, T], List[T]]"},
		{"Callable[..., int]", "Callable[..., int]"},
		{"mod.Thing", "mod.Thing"},
	}
	for _, tt := range tests {
		id, err := Parse(in, scope, tt.src)
		if err != nil {
			t.Fatalf("%q: %v", tt.src, err)
		}
		if got := types.Label(in, id); got != tt.want {
			t.Errorf("%q: label %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseSignature(t *testing.T) {
	in, scope := newNotationScope(t)
	id, err := Parse(in, scope, "bound def(int, str=, *) -> T")
	if err != nil {
		t.Fatal(err)
	}
	info, ok := in.CallableInfo(id)
	if !ok {
		t.Fatalf("expected a callable")
	}
	if info.Receiver != types.ReceiverBound || !info.Variadic || info.Required != 1 || len(info.Params) != 2 {
		t.Fatalf("unexpected signature %+v", info)
	}
	if info.Result != scope.vars["T"] {
		t.Fatalf("result should be T")
	}

	id, err = Parse(in, scope, "def()")
	if err != nil {
		t.Fatal(err)
	}
	if info, _ := in.CallableInfo(id); info.Result != in.Builtins().Any || len(info.Params) != 0 {
		t.Fatalf("def() should take nothing and return Any, got %+v", info)
	}
}

func TestParseNormalizesNames(t *testing.T) {
	in, scope := newNotationScope(t)
	id, err := Parse(in, scope, "cafe\u0301")
	if err != nil {
		t.Fatalf("decomposed name should resolve: %v", err)
	}
	if id != in.Class(scope.classes["caf\u00e9"]) {
		t.Fatalf("resolved to the wrong type %s", types.Label(in, id))
	}
}

func TestParseAlternatives(t *testing.T) {
	in, scope := newNotationScope(t)
	ids, err := ParseAlternatives(in, scope, "int | List[str]")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || types.Label(in, ids[1]) != "List[str]" {
		t.Fatalf("unexpected alternatives %v", ids)
	}
}

func TestParseErrorsCarryOffsets(t *testing.T) {
	in, scope := newNotationScope(t)
	tests := []struct {
		src    string
		offset int
		name   bool
	}{
		{"List[int", 8, false},
		{"Nope", 0, true},
		{"List[Nope]", 5, true},
		{"int]", 3, false},
		{"T[int]", 1, false},
		{"def(int=, str)", 13, false},
		{"def(*, int)", 7, false},
		{"Union[]", 0, false},
		{"List[int, str]", 0, false},
		{"Callable[int, int]", 9, false},
		{"int $", 4, false},
	}
	for _, tt := range tests {
		_, err := Parse(in, scope, tt.src)
		if err == nil {
			t.Fatalf("%q: expected an error", tt.src)
		}
		var syn *SyntaxError
		var nameErr *NameError
		switch {
		case tt.name && errors.As(err, &nameErr):
			if nameErr.Offset != tt.offset {
				t.Errorf("%q: offset %d, want %d", tt.src, nameErr.Offset, tt.offset)
			}
		case !tt.name && errors.As(err, &syn):
			if syn.Offset != tt.offset {
				t.Errorf("%q: offset %d, want %d (%v)", tt.src, syn.Offset, tt.offset, err)
			}
		default:
			t.Errorf("%q: unexpected error type %T: %v", tt.src, err, err)
		}
	}
}

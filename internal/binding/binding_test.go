package binding

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"typematch/internal/types"
)

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(); !errors.Is(err, ErrEmptyVariable) {
		t.Fatalf("expected ErrEmptyVariable, got %v", err)
	}
	if _, err := New(Binding{}); err == nil {
		t.Fatalf("binding without type should be rejected")
	}
	var zero Variable
	if zero.Valid() {
		t.Fatalf("zero variable is not valid")
	}
}

func TestVariableOrderAndDedup(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	v, err := New(
		Binding{Type: b.None, Path: 1},
		Binding{Type: b.Any, Path: 2},
		Binding{Type: b.None, Path: 1},
		Binding{Type: b.None, Path: 3},
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if v.Len() != 3 {
		t.Fatalf("expected 3 bindings, got %d", v.Len())
	}
	if diff := cmp.Diff([]types.TypeID{b.None, b.Any}, v.Types()); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}

	w := v.With(Binding{Type: b.Nothing, Path: 4})
	if v.Len() != 3 || w.Len() != 4 {
		t.Fatalf("With must not modify the receiver")
	}
	if got := MustOf(b.Any, b.None).Bindings()[1].Path; got != 2 {
		t.Fatalf("Of numbers paths from 1, got %d", got)
	}
}

package diag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		MatchArity:          "TM4001",
		MatchRecursionLimit: "TM4007",
		LoadSyntax:          "LOAD1002",
		CaseWrongKind:       "CASE3002",
		UnknownCode:         "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if MatchUnification.Title() == UnknownCode.Title() {
		t.Fatalf("matcher codes need descriptions")
	}
}

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(3)
	b.Add(NewError(MatchArity, "b.toml:x", "arity"))
	b.Add(New(SevWarning, LoadInfo, "a.toml", "info"))
	b.Add(NewError(LoadSyntax, "a.toml", "syntax"))
	if b.Add(NewError(MatchBound, "c.toml", "dropped")) {
		t.Fatalf("bag should refuse items past its limit")
	}
	b.Sort()
	var got []Code
	for _, d := range b.Items() {
		got = append(got, d.Code)
	}
	if diff := cmp.Diff([]Code{LoadSyntax, LoadInfo, MatchArity}, got); diff != "" {
		t.Fatalf("sort order (-want +got):\n%s", diff)
	}
	if !b.HasErrors() {
		t.Fatalf("expected errors")
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: b})
	d := NewError(MatchGeneric, "case", "Type mismatch").WithNote("expected", "int")
	r.Report(d)
	r.Report(d)
	r.Report(d.WithSubject("other"))
	if b.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", b.Len())
	}
	if v, ok := b.Items()[0].Note("expected"); !ok || v != "int" {
		t.Fatalf("note lost: %q %v", v, ok)
	}
}

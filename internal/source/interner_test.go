package source

import (
	"fmt"
	"sync"
	"testing"
)

func TestInternerBasic(t *testing.T) {
	in := NewInterner()

	if s, ok := in.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID should map to empty string, got %q ok=%v", s, ok)
	}

	id1 := in.Intern("int")
	if id1 == NoStringID {
		t.Fatal("non-empty string interned as NoStringID")
	}
	if id2 := in.Intern("int"); id1 != id2 {
		t.Fatalf("same string should keep its ID: %d != %d", id1, id2)
	}
	if s := in.MustLookup(id1); s != "int" {
		t.Fatalf("lookup returned %q", s)
	}
	if id3 := in.Intern("str"); id3 == id1 {
		t.Fatal("different strings share an ID")
	}
	if in.Len() != 3 {
		t.Fatalf("Len = %d, want 3", in.Len())
	}
}

func TestInternerLookupUnknown(t *testing.T) {
	in := NewInterner()
	if _, ok := in.Lookup(StringID(42)); ok {
		t.Fatal("unknown id should not resolve")
	}
}

func TestInternerConcurrentIntern(t *testing.T) {
	in := NewInterner()
	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	wg.Add(workers)
	for g := range workers {
		go func() {
			defer wg.Done()
			for i := range perWorker {
				// half the names collide across workers
				name := fmt.Sprintf("cls_%d", i)
				if g%2 == 1 {
					name = fmt.Sprintf("cls_%d_%d", g, i)
				}
				id := in.Intern(name)
				if got := in.MustLookup(id); got != name {
					t.Errorf("lookup(%d) = %q, want %q", id, got, name)
					return
				}
			}
		}()
	}
	wg.Wait()

	want := 1 + perWorker + (workers/2)*perWorker
	if got := len(in.Snapshot()); got != want {
		t.Fatalf("snapshot len = %d, want %d", got, want)
	}
}

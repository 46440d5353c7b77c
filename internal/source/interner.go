package source

import (
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"
)

// StringID identifies an interned name (class names, type variable names).
type StringID uint32

// NoStringID is reserved for the empty string.
const NoStringID StringID = 0

// Interner maps names to stable StringIDs. It is safe for concurrent use:
// matcher invocations running in parallel may intern labels while others
// look names up.
type Interner struct {
	mu    sync.RWMutex
	byID  []string            // byID[0] = "" for NoStringID
	index map[string]StringID // name -> ID
}

// NewInterner returns an interner with NoStringID reserved.
func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern returns the ID for s, allocating one on first use.
func (i *Interner) Intern(s string) StringID {
	i.mu.RLock()
	id, ok := i.index[s]
	i.mu.RUnlock()
	if ok {
		return id
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if id, ok := i.index[s]; ok {
		return id
	}
	// own copy so callers may reuse their buffers
	cpy := string([]byte(s))
	n, err := safecast.Conv[uint32](len(i.byID))
	if err != nil {
		panic(fmt.Errorf("string interner overflow: %w", err))
	}
	id = StringID(n)
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Lookup returns the string for id.
func (i *Interner) Lookup(id StringID) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics on an unknown id.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("source: invalid StringID")
	}
	return s
}

// Len counts interned strings, NoStringID included; never less than 1.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

// Snapshot returns a copy of all interned strings indexed by ID.
func (i *Interner) Snapshot() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.byID)
}

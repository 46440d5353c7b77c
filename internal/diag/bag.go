package diag

import (
	"slices"
	"sync"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a limit. It is safe for concurrent use.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
	max   uint16
}

// NewBag creates a bag; max <= 0 or above the code range means 65535.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil || limit == 0 {
		limit = ^uint16(0)
	}
	return &Bag{max: limit}
}

// Add appends d. It reports false once the limit is reached.
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 { return b.max }

// HasErrors reports whether any diagnostic is SevError.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// Merge appends every diagnostic of other, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	items := other.Items()
	b.mu.Lock()
	defer b.mu.Unlock()
	if total := len(b.items) + len(items); total > int(b.max) {
		if limit, err := safecast.Conv[uint16](total); err == nil {
			b.max = limit
		}
	}
	b.items = append(b.items, items...)
}

// Sort orders by subject, severity (errors first) then code.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		switch {
		case x.Subject != y.Subject:
			if x.Subject < y.Subject {
				return -1
			}
			return 1
		case x.Severity != y.Severity:
			return int(y.Severity) - int(x.Severity)
		default:
			return int(x.Code) - int(y.Code)
		}
	})
}

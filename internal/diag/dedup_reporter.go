package diag

import "sync"

type dedupKey struct {
	code    Code
	sev     Severity
	subject string
	msg     string
}

// DedupReporter forwards each distinct (code, severity, subject, message)
// once.
type DedupReporter struct {
	next Reporter
	mu   sync.Mutex
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{code: d.Code, sev: d.Severity, subject: d.Subject, msg: d.Message}
	r.mu.Lock()
	_, dup := r.seen[key]
	r.seen[key] = struct{}{}
	r.mu.Unlock()
	if dup || r.next == nil {
		return
	}
	r.next.Report(d)
}

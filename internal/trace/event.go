package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of an operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of an operation.
	KindSpanEnd
	// KindPoint is an instant event.
	KindPoint
	// KindHeartbeat is a periodic liveness signal.
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // commands, file loading, index builds
	ScopeCase                    // one scenario case
	ScopeMatch                   // one top-level match invocation
	ScopeRule                    // a single matcher rule firing
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeCase:
		return "case"
	case ScopeMatch:
		return "match"
	case ScopeRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	GID      uint64
	Name     string // e.g. "check", "case:projection", "match"
	Detail   string
	Extra    map[string]string
}

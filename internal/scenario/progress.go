package scenario

import "time"

// Status is the state a progress event reports for one case.
type Status uint8

const (
	StatusQueued Status = iota
	StatusRunning
	StatusPassed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports a case changing state during Run.
type Event struct {
	Suite   string
	Case    string
	Status  Status
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Run calls OnEvent from its worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

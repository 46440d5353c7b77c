package trace

import "go.uber.org/multierr"

// MultiTracer fans out events to several tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer creates a tracer that emits to all of tracers.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

// Emit forwards a copy of ev to every tracer, so one tracer stamping Seq
// does not affect another.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

// Flush flushes every tracer and reports all failures.
func (t *MultiTracer) Flush() error {
	var err error
	for _, tr := range t.tracers {
		err = multierr.Append(err, tr.Flush())
	}
	return err
}

// Close closes every tracer and reports all failures.
func (t *MultiTracer) Close() error {
	var err error
	for _, tr := range t.tracers {
		err = multierr.Append(err, tr.Close())
	}
	return err
}

// Ring returns the first ring tracer among the fan-out targets.
func (t *MultiTracer) Ring() *RingTracer {
	for _, tr := range t.tracers {
		if r, ok := tr.(*RingTracer); ok {
			return r
		}
	}
	return nil
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }

// Package match decides whether an inferred type is compatible with a
// declared type, solving type variables along the way.
//
// The matcher walks (actual, formal) pairs applying a fixed, ordered rule
// set; the first applicable rule decides. Type variables are solved into a
// subst.Env threaded through the walk: a variable, once bound, must unify
// with every later occurrence. Branching rules (union alternatives,
// constraint sets) checkpoint the environment and roll back on failure, so
// the matcher is deterministic given argument order rather than a search.
//
// A Matcher is immutable after New and may be shared by goroutines; every
// top-level call works on its own environment.
package match

import (
	"fmt"

	"typematch/internal/hierarchy"
	"typematch/internal/subst"
	"typematch/internal/trace"
	"typematch/internal/types"
)

// DefaultMaxDepth bounds the nesting a single match call may recurse into.
const DefaultMaxDepth = 64

// Matcher checks type compatibility against one class hierarchy.
type Matcher struct {
	types    *types.Interner
	index    *hierarchy.Index
	builtins types.Builtins
	maxDepth int
	tracer   trace.Tracer
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithMaxDepth sets the recursion limit; values <= 0 keep the default.
func WithMaxDepth(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxDepth = n
		}
	}
}

// WithTracer emits a span per top-level call and, at debug level, a point
// per rule decision.
func WithTracer(t trace.Tracer) Option {
	return func(m *Matcher) {
		if t != nil {
			m.tracer = t
		}
	}
}

// New creates a matcher over the given interner and index.
func New(in *types.Interner, index *hierarchy.Index, opts ...Option) *Matcher {
	m := &Matcher{
		types:    in,
		index:    index,
		builtins: in.Builtins(),
		maxDepth: DefaultMaxDepth,
		tracer:   trace.Nop,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Types returns the interner the matcher resolves through.
func (m *Matcher) Types() *types.Interner { return m.types }

// MaxDepth returns the configured recursion limit.
func (m *Matcher) MaxDepth() int { return m.maxDepth }

// Match checks actual against formal in a fresh environment. On success the
// environment holds the solved type variables.
func (m *Matcher) Match(actual, formal types.TypeID) (*subst.Env, *Mismatch) {
	env := subst.New(m.types)
	if mm := m.MatchIn(env, actual, formal); mm != nil {
		return nil, mm
	}
	return env, nil
}

// MatchIn checks actual against formal in a caller-owned environment. On
// failure the environment is rolled back to its state on entry.
func (m *Matcher) MatchIn(env *subst.Env, actual, formal types.TypeID) *Mismatch {
	span := trace.Begin(m.tracer, trace.ScopeMatch, "match", 0)
	s := m.newState(env, span.ID())
	mark := env.Checkpoint()
	mm := s.match(actual, formal, 0)
	if mm != nil {
		s.finish(mm, actual, formal)
		env.Rollback(mark)
	}
	m.endSpan(span, actual, formal, mm)
	return mm
}

func (m *Matcher) endSpan(span *trace.Span, actual, formal types.TypeID, mm *Mismatch) {
	if span.ID() == 0 {
		return
	}
	span.WithExtra("actual", types.Label(m.types, actual)).
		WithExtra("formal", types.Label(m.types, formal))
	if mm == nil {
		span.WithExtra("result", "ok").End("")
		return
	}
	span.WithExtra("result", "mismatch").WithExtra("kind", mm.Kind.String()).End(mm.Reason(m.types))
}

// state is the per-call walker.
type state struct {
	m          *Matcher
	in         *types.Interner
	env        *subst.Env
	span       uint64
	traceRules bool
}

func (m *Matcher) newState(env *subst.Env, span uint64) *state {
	return &state{
		m:          m,
		in:         m.types,
		env:        env,
		span:       span,
		traceRules: span != 0 && m.tracer.Level().ShouldEmit(trace.ScopeRule),
	}
}

// finish stamps the top-level pair and the substitutions at the failure
// point onto mm.
func (s *state) finish(mm *Mismatch, actual, formal types.TypeID) {
	mm.Actual = actual
	mm.Formal = formal
	mm.Subst = s.env.Clone()
}

func (s *state) rule(name, format string, args ...any) {
	if !s.traceRules {
		return
	}
	trace.Point(s.m.tracer, trace.ScopeRule, name, fmt.Sprintf(format, args...), s.span)
}

func (s *state) fail(kind Kind, actual, formal types.TypeID) *Mismatch {
	return newMismatch(s.in, kind, actual, formal)
}

// match applies the rules in priority order.
func (s *state) match(actual, formal types.TypeID, depth int) *Mismatch {
	if depth > s.m.maxDepth {
		mm := s.fail(KindRecursionLimit, actual, formal)
		mm.Detail = fmt.Sprintf("nesting deeper than %d", s.m.maxDepth)
		return mm
	}
	depth++
	if actual == formal {
		return nil
	}
	at, ok := s.in.Lookup(actual)
	if !ok {
		return s.fail(KindTypeMismatch, actual, formal)
	}
	ft, ok := s.in.Lookup(formal)
	if !ok {
		return s.fail(KindTypeMismatch, actual, formal)
	}

	switch {
	case ft.Kind == types.KindAny, at.Kind == types.KindAny:
		return nil
	case at.Kind == types.KindNothing:
		return nil
	case ft.Kind == types.KindTypeVar:
		return s.matchFormalVar(actual, formal, depth)
	case at.Kind == types.KindTypeVar:
		return s.matchActualVar(actual, formal, depth)
	case at.Kind == types.KindUnion:
		return s.matchActualUnion(actual, formal, depth)
	case ft.Kind == types.KindUnion:
		return s.matchFormalUnion(actual, formal, depth)
	}

	switch ft.Kind {
	case types.KindCallable:
		switch at.Kind {
		case types.KindCallable:
			return s.matchCallable(actual, formal, depth)
		case types.KindClassObject:
			return s.matchCallable(s.constructorOf(at.Elem), formal, depth)
		}
	case types.KindClass, types.KindGeneric:
		return s.matchInstance(actual, at, formal, ft, depth)
	case types.KindClassObject:
		if at.Kind == types.KindClassObject {
			return s.match(at.Elem, ft.Elem, depth)
		}
	}
	return s.fail(KindTypeMismatch, actual, formal)
}

// matchInstance handles every actual against a Class or Generic formal.
func (s *state) matchInstance(actual types.TypeID, at types.Type, formal types.TypeID, ft types.Type, depth int) *Mismatch {
	top := s.m.index.Top()
	isTop := ft.Kind == types.KindClass && top != types.NoClassID && ft.Class == top
	switch at.Kind {
	case types.KindClass, types.KindGeneric:
		return s.matchClass(actual, at, formal, ft, depth)
	case types.KindNone, types.KindCallable:
		if isTop {
			return nil
		}
	case types.KindClassObject:
		meta := s.m.index.Metaclass()
		if isTop || (meta != types.NoClassID && ft.Class == meta) {
			return nil
		}
	}
	return s.fail(KindTypeMismatch, actual, formal)
}

func (s *state) matchActualUnion(actual, formal types.TypeID, depth int) *Mismatch {
	for _, alt := range s.in.UnionMembers(actual) {
		if mm := s.match(alt, formal, depth); mm != nil {
			return mm
		}
	}
	return nil
}

// matchFormalUnion tries the alternatives in declared order; the first
// success wins and keeps its bindings.
func (s *state) matchFormalUnion(actual, formal types.TypeID, depth int) *Mismatch {
	mark := s.env.Checkpoint()
	for _, alt := range s.in.UnionMembers(formal) {
		mm := s.match(actual, alt, depth)
		if mm == nil {
			s.rule("union", "%s matched alternative %s", types.Label(s.in, actual), types.Label(s.in, alt))
			return nil
		}
		if mm.Fatal() {
			return mm
		}
		s.env.Rollback(mark)
	}
	return s.fail(KindTypeMismatch, actual, formal)
}

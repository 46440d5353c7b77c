// Package subst holds the substitution environment threaded through one
// top-level match invocation.
//
// An Env is an append-only log of TypeVar bindings plus an index into it.
// Bindings are never overwritten: a later occurrence of a bound variable has
// to unify with the recorded type, which is the matcher's job. Branching
// decisions take a Checkpoint and Rollback to it when the branch fails, so a
// failed alternative leaves no trace.
package subst

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"typematch/internal/types"
)

// Mark is a position in the binding log.
type Mark uint32

// Pair is one recorded binding.
type Pair struct {
	Var  types.TypeID
	Type types.TypeID
}

// Env maps TypeVar identities to their resolved types.
type Env struct {
	types *types.Interner
	log   []Pair
	index map[types.TypeID]int
}

// New returns an empty environment over in.
func New(in *types.Interner) *Env {
	return &Env{types: in, index: make(map[types.TypeID]int)}
}

// Types returns the interner the environment resolves through.
func (e *Env) Types() *types.Interner { return e.types }

// Len returns the number of bindings.
func (e *Env) Len() int { return len(e.log) }

// Checkpoint marks the current end of the log.
func (e *Env) Checkpoint() Mark {
	n, err := safecast.Conv[uint32](len(e.log))
	if err != nil {
		panic(fmt.Errorf("subst: log overflow: %w", err))
	}
	return Mark(n)
}

// Rollback drops every binding recorded after m.
func (e *Env) Rollback(m Mark) {
	if int(m) >= len(e.log) {
		return
	}
	for _, p := range e.log[m:] {
		delete(e.index, p.Var)
	}
	e.log = e.log[:m]
}

// Bind records v := t. It reports false when v is already bound; the
// existing binding is kept.
func (e *Env) Bind(v, t types.TypeID) bool {
	if _, ok := e.index[v]; ok {
		return false
	}
	e.index[v] = len(e.log)
	e.log = append(e.log, Pair{Var: v, Type: t})
	return true
}

// Lookup returns the type v was bound to, unresolved.
func (e *Env) Lookup(v types.TypeID) (types.TypeID, bool) {
	i, ok := e.index[v]
	if !ok {
		return types.NoTypeID, false
	}
	return e.log[i].Type, true
}

// Bound reports whether v has a binding.
func (e *Env) Bound(v types.TypeID) bool {
	_, ok := e.index[v]
	return ok
}

// Resolver exposes the environment to types.Substitute.
func (e *Env) Resolver() types.Resolver {
	return e.Lookup
}

// Resolve substitutes every bound variable in id, following chains.
func (e *Env) Resolve(id types.TypeID) types.TypeID {
	if len(e.log) == 0 {
		return id
	}
	return e.types.Substitute(id, e.Resolver())
}

// Pairs returns the bindings in the order they were made.
func (e *Env) Pairs() []Pair {
	out := make([]Pair, len(e.log))
	copy(out, e.log)
	return out
}

// Resolved returns every binding with its type fully resolved, keyed by the
// variable.
func (e *Env) Resolved() map[types.TypeID]types.TypeID {
	out := make(map[types.TypeID]types.TypeID, len(e.log))
	for _, p := range e.log {
		out[p.Var] = e.Resolve(p.Type)
	}
	return out
}

// Clone returns an independent copy.
func (e *Env) Clone() *Env {
	c := &Env{types: e.types, log: e.Pairs(), index: make(map[types.TypeID]int, len(e.index))}
	for v, i := range e.index {
		c.index[v] = i
	}
	return c
}

// String renders the bindings as {T=int, U=List[int]} in binding order.
func (e *Env) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, p := range e.log {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.types.TypeVarName(p.Var))
		sb.WriteByte('=')
		sb.WriteString(types.Label(e.types, e.Resolve(p.Type)))
	}
	sb.WriteByte('}')
	return sb.String()
}

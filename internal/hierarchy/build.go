package hierarchy

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"

	"typematch/internal/types"
)

type visitState uint8

const (
	stateUnvisited visitState = iota
	stateVisiting
	stateDone
	stateFailed
)

type builder struct {
	ix    *Index
	in    *types.Interner
	state []visitState
}

// Build indexes every class declared in the interner. All declaration
// problems (inheritance cycles, base arguments referencing foreign type
// variables, unknown special classes) are reported together; a failed build
// returns no index.
func Build(in *types.Interner, opts Options) (*Index, error) {
	if in == nil {
		return nil, fmt.Errorf("hierarchy: nil interner")
	}
	classes := in.Classes()
	ix := &Index{
		types:   in,
		top:     opts.Top,
		meta:    opts.Metaclass,
		entries: make([]entry, len(classes)+1),
	}
	var errs error
	if opts.Top != types.NoClassID && int(opts.Top) > len(classes) {
		errs = multierr.Append(errs, fmt.Errorf("hierarchy: unknown top class %d", opts.Top))
	}
	if opts.Metaclass != types.NoClassID && int(opts.Metaclass) > len(classes) {
		errs = multierr.Append(errs, fmt.Errorf("hierarchy: unknown metaclass %d", opts.Metaclass))
	}

	b := &builder{ix: ix, in: in, state: make([]visitState, len(classes)+1)}
	for _, cls := range classes {
		errs = multierr.Append(errs, b.visit(cls, nil))
	}
	if errs != nil {
		return nil, errs
	}
	return ix, nil
}

func (b *builder) visit(cls types.ClassID, stack []types.ClassID) error {
	switch b.state[cls] {
	case stateDone, stateFailed:
		return nil
	case stateVisiting:
		return b.cycleError(cls, stack)
	}
	b.state[cls] = stateVisiting
	stack = append(stack, cls)

	info, _ := b.in.ClassInfo(cls)
	e := entry{
		params:    info.Params,
		ancestors: []types.ClassID{cls},
		proj:      map[types.ClassID][]types.TypeID{cls: info.Params},
	}
	anyT := b.in.Builtins().Any
	failed := false
	var errs error
	for i, base := range info.Bases {
		tt := b.in.MustLookup(base)
		if tt.Kind == types.KindAny {
			e.anyDerived = true
			continue
		}
		for _, v := range b.in.FreeTypeVars(base) {
			if !slices.Contains(info.Params, v) {
				errs = multierr.Append(errs, fmt.Errorf("class %s: base %d (%s) references %s, which is not a parameter of %s",
					b.in.ClassName(cls), i, types.Label(b.in, base), b.in.TypeVarName(v), b.in.ClassName(cls)))
				failed = true
			}
		}
		baseCls := tt.Class
		if err := b.visit(baseCls, stack); err != nil {
			errs = multierr.Append(errs, err)
			failed = true
			continue
		}
		if b.state[baseCls] != stateDone {
			failed = true
			continue
		}
		be := &b.ix.entries[baseCls]

		var baseArgs []types.TypeID
		if tt.Kind == types.KindGeneric {
			baseArgs = b.in.GenericArgs(base)
		}
		m := make(map[types.TypeID]types.TypeID, len(be.params))
		for j, p := range be.params {
			if baseArgs != nil {
				m[p] = baseArgs[j]
			} else {
				m[p] = anyT
			}
		}
		resolve := types.MapResolver(m)
		for _, anc := range be.ancestors {
			if anc == b.ix.top {
				continue
			}
			if _, seen := e.proj[anc]; seen {
				continue
			}
			e.ancestors = append(e.ancestors, anc)
			args := make([]types.TypeID, len(be.proj[anc]))
			for j, a := range be.proj[anc] {
				args[j] = b.in.Substitute(a, resolve)
			}
			e.proj[anc] = args
		}
		e.anyDerived = e.anyDerived || be.anyDerived
	}

	if b.ix.top != types.NoClassID && cls != b.ix.top {
		e.ancestors = append(e.ancestors, b.ix.top)
		e.proj[b.ix.top] = nil
	}

	if failed {
		b.state[cls] = stateFailed
		return errs
	}
	b.ix.entries[cls] = e
	b.state[cls] = stateDone
	return errs
}

func (b *builder) cycleError(cls types.ClassID, stack []types.ClassID) error {
	start := slices.Index(stack, cls)
	if start < 0 {
		start = 0
	}
	names := make([]string, 0, len(stack)-start+1)
	for _, c := range stack[start:] {
		names = append(names, b.in.ClassName(c))
	}
	names = append(names, b.in.ClassName(cls))
	return fmt.Errorf("inheritance cycle: %s", strings.Join(names, " -> "))
}

package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"

	"typematch/internal/diag"
	"typematch/internal/hierarchy"
	"typematch/internal/types"
)

// Suite is one loaded scenario file: its own type universe, the hierarchy
// index over it and the compiled cases.
type Suite struct {
	Path     string
	Types    *types.Interner
	Index    *hierarchy.Index
	MaxDepth int
	Cases    []*Case

	vars map[string]types.TypeID
}

// Var returns the file-level type variable named name.
func (s *Suite) Var(name string) (types.TypeID, bool) {
	id, ok := s.vars[normalizeName(name)]
	return id, ok
}

// Build turns a decoded file into a Suite. Every problem found is reported;
// the error aggregates *Error values with multierr.
func Build(path string, f *File) (*Suite, error) {
	b := &builder{
		path:        path,
		in:          types.NewInterner(),
		classDecls:  map[string]*ClassDecl{},
		varDecls:    map[string]*TypeVarDecl{},
		classes:     map[string]types.ClassID{},
		vars:        map[string]types.TypeID{},
		classParams: map[types.ClassID]map[string]types.TypeID{},
		visiting:    map[string]bool{},
		failed:      map[string]bool{},
	}
	b.fileScope = b.in.NewScope()
	if f.MaxDepth < 0 {
		b.report(diag.LoadDecl, "max_depth", "", fmt.Errorf("must be >= 0, got %d", f.MaxDepth))
	}

	b.collect(f)
	for i := range f.TypeVars {
		if name := normalizeName(f.TypeVars[i].Name); b.varDecls[name] == &f.TypeVars[i] {
			_, _ = b.ensureVar(name)
		}
	}
	for i := range f.Classes {
		if name := normalizeName(f.Classes[i].Name); b.classDecls[name] == &f.Classes[i] {
			_, _ = b.ensureClass(name)
		}
	}
	for i := range f.Classes {
		b.setBases(&f.Classes[i])
	}

	top := b.namedClass("top", f.Top)
	meta := b.namedClass("metaclass", f.Metaclass)
	if b.errs != nil {
		return nil, b.errs
	}
	ix, err := hierarchy.Build(b.in, hierarchy.Options{Top: top, Metaclass: meta})
	if err != nil {
		for _, e := range multierr.Errors(err) {
			b.report(diag.LoadHierarchy, "hierarchy", "", e)
		}
		return nil, b.errs
	}

	suite := &Suite{
		Path:     path,
		Types:    b.in,
		Index:    ix,
		MaxDepth: f.MaxDepth,
		vars:     b.vars,
	}
	for i := range f.Cases {
		if c, ok := b.compileCase(i, &f.Cases[i]); ok {
			suite.Cases = append(suite.Cases, c)
		}
	}
	if b.errs != nil {
		return nil, b.errs
	}
	return suite, nil
}

type builder struct {
	path string
	in   *types.Interner

	classDecls  map[string]*ClassDecl
	varDecls    map[string]*TypeVarDecl
	classes     map[string]types.ClassID
	vars        map[string]types.TypeID
	classParams map[types.ClassID]map[string]types.TypeID
	fileScope   types.ScopeID

	// visiting and failed are keyed by "class:Name" and "var:Name"
	visiting map[string]bool
	failed   map[string]bool

	errs error
}

func (b *builder) report(code diag.Code, subject, text string, err error) {
	if errors.Is(err, errReported) {
		return
	}
	b.errs = multierr.Append(b.errs, &Error{
		Code:    code,
		Subject: b.path + ": " + subject,
		Text:    text,
		Err:     err,
	})
}

// collect indexes declarations by normalised name and rejects empty,
// reserved and duplicate names. The first declaration of a name wins.
func (b *builder) collect(f *File) {
	check := func(kind, raw string) (string, bool) {
		name := normalizeName(strings.TrimSpace(raw))
		switch {
		case name == "":
			b.report(diag.LoadDecl, kind, "", fmt.Errorf("%s without a name", kind))
			return "", false
		case IsReserved(name):
			b.report(diag.LoadDecl, kind+" "+name, "", fmt.Errorf("%q is a reserved word", name))
			return "", false
		}
		if _, dup := b.classDecls[name]; dup {
			b.report(diag.LoadDecl, kind+" "+name, "", fmt.Errorf("%q is already declared as a class", name))
			return "", false
		}
		if _, dup := b.varDecls[name]; dup {
			b.report(diag.LoadDecl, kind+" "+name, "", fmt.Errorf("%q is already declared as a type variable", name))
			return "", false
		}
		return name, true
	}
	for i := range f.TypeVars {
		if name, ok := check("typevar", f.TypeVars[i].Name); ok {
			b.varDecls[name] = &f.TypeVars[i]
		}
	}
	for i := range f.Classes {
		if name, ok := check("class", f.Classes[i].Name); ok {
			b.classDecls[name] = &f.Classes[i]
		}
	}
}

// lookup resolves a name in file scope, declaring it on first use.
func (b *builder) lookup(name string) (Ref, bool, error) {
	if _, ok := b.varDecls[name]; ok {
		id, err := b.ensureVar(name)
		return Ref{Var: id}, err == nil, err
	}
	if _, ok := b.classDecls[name]; ok {
		cls, err := b.ensureClass(name)
		return Ref{Class: cls}, err == nil, err
	}
	return Ref{}, false, nil
}

type fileScope struct{ b *builder }

func (s fileScope) Lookup(name string) (Ref, bool, error) { return s.b.lookup(name) }

// classScope sees the class's own parameters before file-level names.
type classScope struct {
	b      *builder
	params map[string]types.TypeID
}

func (s classScope) Lookup(name string) (Ref, bool, error) {
	if id, ok := s.params[name]; ok {
		return Ref{Var: id}, true, nil
	}
	return s.b.lookup(name)
}

func (b *builder) enter(key string) error {
	if b.failed[key] {
		return errReported
	}
	if b.visiting[key] {
		return fmt.Errorf("declaration refers to itself")
	}
	b.visiting[key] = true
	return nil
}

func (b *builder) leave(key string, err error) {
	delete(b.visiting, key)
	if err != nil {
		b.failed[key] = true
	}
}

func (b *builder) ensureVar(name string) (id types.TypeID, err error) {
	if id, ok := b.vars[name]; ok {
		return id, nil
	}
	key := "var:" + name
	subject := "typevar " + name
	if err := b.enter(key); err != nil {
		if !errors.Is(err, errReported) {
			b.report(diag.LoadDecl, subject, "", err)
			b.failed[key] = true
		}
		return types.NoTypeID, errReported
	}
	defer func() { b.leave(key, err) }()

	decl := b.varDecls[name]
	spec := types.TypeVarSpec{Name: name, Scope: b.fileScope}
	if spec.Variance, err = types.ParseVariance(decl.Variance); err != nil {
		b.report(diag.LoadDecl, subject, "", err)
		return types.NoTypeID, errReported
	}
	if decl.Bound != "" {
		if spec.Bound, err = Parse(b.in, fileScope{b}, decl.Bound); err != nil {
			b.report(exprCode(err), subject+", bound", decl.Bound, err)
			return types.NoTypeID, errReported
		}
	}
	for i, c := range decl.Constraints {
		t, err := Parse(b.in, fileScope{b}, c)
		if err != nil {
			b.report(exprCode(err), fmt.Sprintf("%s, constraint %d", subject, i+1), c, err)
			return types.NoTypeID, errReported
		}
		spec.Constraints = append(spec.Constraints, t)
	}
	if id, err = b.in.TypeVar(spec); err != nil {
		b.report(diag.LoadDecl, subject, "", err)
		return types.NoTypeID, errReported
	}
	b.vars[name] = id
	return id, nil
}

func (b *builder) ensureClass(name string) (cls types.ClassID, err error) {
	if cls, ok := b.classes[name]; ok {
		return cls, nil
	}
	key := "class:" + name
	subject := "class " + name
	if err := b.enter(key); err != nil {
		if !errors.Is(err, errReported) {
			b.report(diag.LoadDecl, subject, "", err)
			b.failed[key] = true
		}
		return types.NoClassID, errReported
	}
	defer func() { b.leave(key, err) }()

	decl := b.classDecls[name]
	scope := b.in.NewScope()
	params := make([]types.TypeID, 0, len(decl.Params))
	local := make(map[string]types.TypeID, len(decl.Params))
	for _, raw := range decl.Params {
		p := normalizeName(strings.TrimSpace(raw))
		if _, dup := local[p]; dup || p == "" || IsReserved(p) {
			b.report(diag.LoadDecl, subject, "", fmt.Errorf("invalid or repeated parameter %q", raw))
			return types.NoClassID, errReported
		}
		var id types.TypeID
		if _, ok := b.varDecls[p]; ok {
			if id, err = b.ensureVar(p); err != nil {
				return types.NoClassID, err
			}
		} else if id, err = b.in.TypeVar(types.TypeVarSpec{Name: p, Scope: scope}); err != nil {
			b.report(diag.LoadDecl, subject, "", err)
			return types.NoClassID, errReported
		}
		params = append(params, id)
		local[p] = id
	}
	if cls, err = b.in.DeclareClass(name, params); err != nil {
		b.report(diag.LoadDecl, subject, "", err)
		return types.NoClassID, errReported
	}
	b.classes[name] = cls
	b.classParams[cls] = local
	return cls, nil
}

func (b *builder) setBases(decl *ClassDecl) {
	name := normalizeName(strings.TrimSpace(decl.Name))
	cls, ok := b.classes[name]
	if !ok || b.classDecls[name] != decl {
		return
	}
	scope := classScope{b: b, params: b.classParams[cls]}
	bases := make([]types.TypeID, 0, len(decl.Bases))
	for i, src := range decl.Bases {
		t, err := Parse(b.in, scope, src)
		if err != nil {
			b.report(exprCode(err), fmt.Sprintf("class %s, base %d", name, i+1), src, err)
			return
		}
		if slices.Contains(bases, t) {
			b.report(diag.LoadDecl, fmt.Sprintf("class %s, base %d", name, i+1), src, fmt.Errorf("duplicate base"))
			return
		}
		bases = append(bases, t)
	}
	if err := b.in.SetBases(cls, bases); err != nil {
		b.report(diag.LoadDecl, "class "+name, "", err)
	}
}

func (b *builder) namedClass(field, raw string) types.ClassID {
	name := normalizeName(strings.TrimSpace(raw))
	if name == "" {
		return types.NoClassID
	}
	cls, ok := b.classes[name]
	if !ok {
		if _, declared := b.classDecls[name]; !declared {
			b.report(diag.LoadUnknownName, field, raw, fmt.Errorf("unknown class %q", raw))
		}
		return types.NoClassID
	}
	if len(b.classParams[cls]) > 0 {
		b.report(diag.LoadDecl, field, raw, fmt.Errorf("class %s takes type parameters", name))
	}
	return cls
}

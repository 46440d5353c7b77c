package scenario

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"typematch/internal/binding"
	"typematch/internal/diag"
	"typematch/internal/match"
	"typematch/internal/subst"
	"typematch/internal/types"
)

// Mode selects the matcher entry point a case exercises.
type Mode uint8

const (
	ModeMatch    Mode = iota // actual vs formal
	ModeVariable             // every binding of a value vs formal
	ModeCall                 // arguments vs a signature
)

func (m Mode) String() string {
	switch m {
	case ModeMatch:
		return "match"
	case ModeVariable:
		return "variable"
	case ModeCall:
		return "call"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// Resolution is an expected substitution for a file-level type variable.
type Resolution struct {
	Name string
	Var  types.TypeID
	Want types.TypeID
}

// Case is a compiled CaseDecl.
type Case struct {
	Name string
	Mode Mode

	Actual   types.TypeID
	Bindings binding.Variable
	Formal   types.TypeID
	Call     match.Signature
	Args     []binding.Variable

	ExpectMatch bool
	// Kind is checked only when HasKind is set.
	Kind     match.Kind
	HasKind  bool
	Resolved []Resolution
	Returns  types.TypeID
}

func (b *builder) compileCase(i int, decl *CaseDecl) (*Case, bool) {
	c := &Case{Name: strings.TrimSpace(decl.Name)}
	if c.Name == "" {
		c.Name = fmt.Sprintf("case %d", i+1)
	}
	subject := "case " + c.Name
	ok := true
	fail := func(code diag.Code, where, text string, err error) {
		if where != "" {
			where = subject + ", " + where
		} else {
			where = subject
		}
		b.report(code, where, text, err)
		ok = false
	}
	parse := func(where, src string) types.TypeID {
		t, err := Parse(b.in, fileScope{b}, src)
		if err != nil {
			fail(exprCode(err), where, src, err)
			return types.NoTypeID
		}
		return t
	}
	variable := func(where string, srcs ...string) binding.Variable {
		var ts []types.TypeID
		for _, src := range srcs {
			alts, err := ParseAlternatives(b.in, fileScope{b}, src)
			if err != nil {
				fail(exprCode(err), where, src, err)
				return binding.Variable{}
			}
			ts = append(ts, alts...)
		}
		v, err := binding.Of(ts...)
		if err != nil {
			fail(diag.LoadDecl, where, "", err)
		}
		return v
	}

	sources := 0
	for _, set := range []bool{decl.Actual != "", len(decl.Bindings) > 0, decl.Call != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		fail(diag.LoadDecl, "", "", fmt.Errorf("exactly one of actual, bindings and call is required"))
		return nil, false
	}

	switch {
	case decl.Call != nil:
		c.Mode = ModeCall
		if decl.Formal != "" {
			fail(diag.LoadDecl, "formal", "", fmt.Errorf("a call case takes its formal from call"))
		}
		c.Call = b.compileSignature(decl.Call, parse, fail)
		c.Args = make([]binding.Variable, len(decl.Args))
		for j, src := range decl.Args {
			c.Args[j] = variable(fmt.Sprintf("argument %d", j+1), src)
		}
		if decl.Returns != "" {
			c.Returns = parse("returns", decl.Returns)
		}
	default:
		if len(decl.Args) > 0 || decl.Returns != "" {
			fail(diag.LoadDecl, "", "", fmt.Errorf("args and returns need a call"))
		}
		if decl.Formal == "" {
			fail(diag.LoadDecl, "formal", "", fmt.Errorf("missing formal type"))
		} else {
			c.Formal = parse("formal", decl.Formal)
		}
		if decl.Actual != "" {
			c.Mode = ModeMatch
			c.Actual = parse("actual", decl.Actual)
		} else {
			c.Mode = ModeVariable
			c.Bindings = variable("bindings", decl.Bindings...)
		}
	}

	switch strings.ToLower(strings.TrimSpace(decl.Expect)) {
	case "", "match":
		c.ExpectMatch = true
	case "mismatch":
	default:
		fail(diag.LoadDecl, "expect", decl.Expect, fmt.Errorf("expect must be match or mismatch"))
	}
	if decl.Kind != "" {
		kind, err := match.ParseKind(decl.Kind)
		switch {
		case err != nil:
			fail(diag.LoadDecl, "kind", decl.Kind, err)
		case c.ExpectMatch:
			fail(diag.LoadDecl, "kind", decl.Kind, fmt.Errorf("kind needs expect = \"mismatch\""))
		default:
			c.Kind, c.HasKind = kind, true
		}
	}
	if len(decl.Resolved) > 0 && !c.ExpectMatch {
		fail(diag.LoadDecl, "resolved", "", fmt.Errorf("resolved needs expect = \"match\""))
	}

	names := make([]string, 0, len(decl.Resolved))
	for name := range decl.Resolved {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, raw := range names {
		name := normalizeName(raw)
		if _, declared := b.varDecls[name]; !declared {
			fail(diag.LoadUnknownName, "resolved", raw, fmt.Errorf("%q is not a declared type variable", raw))
			continue
		}
		v, err := b.ensureVar(name)
		if err != nil {
			ok = false
			continue
		}
		want := parse("resolved "+name, decl.Resolved[raw])
		c.Resolved = append(c.Resolved, Resolution{Name: name, Var: v, Want: want})
	}
	return c, ok
}

func (b *builder) compileSignature(decl *CallDecl, parse func(string, string) types.TypeID, fail func(diag.Code, string, string, error)) match.Signature {
	sig := match.Signature{Name: decl.Name, Variadic: decl.Variadic}
	for j, src := range decl.Params {
		sig.Params = append(sig.Params, parse(fmt.Sprintf("call parameter %d", j+1), src))
	}
	if decl.Required != nil {
		req := *decl.Required
		if req < 0 || req > len(sig.Params) {
			fail(diag.LoadDecl, "call", "", fmt.Errorf("required = %d out of range for %d parameters", req, len(sig.Params)))
		} else {
			sig.Defaults = len(sig.Params) - req
		}
	}
	if decl.Result != "" {
		sig.Result = parse("call result", decl.Result)
	}
	return sig
}

// Outcome is the result of running one case.
type Outcome struct {
	Suite  string
	Case   string
	Mode   Mode
	Expect string
	Passed bool
	// Result is the matcher's mismatch, nil when the types matched.
	Result *diag.Diagnostic
	// Problems explain why the case failed; empty when it passed.
	Problems      []diag.Diagnostic
	Substitutions string
	Return        string
	Duration      time.Duration
}

// Subject names the case in diagnostics.
func (o Outcome) Subject() string { return o.Suite + "::" + o.Case }

// Run executes c against m and compares the result with its expectation.
func (c *Case) Run(suite *Suite, m *match.Matcher) Outcome {
	in := suite.Types
	out := Outcome{Suite: suite.Path, Case: c.Name, Mode: c.Mode, Expect: "mismatch"}
	if c.ExpectMatch {
		out.Expect = "match"
	}
	start := time.Now()

	var (
		env *subst.Env
		mm  *match.Mismatch
		ret = types.NoTypeID
	)
	switch c.Mode {
	case ModeMatch:
		env, mm = m.Match(c.Actual, c.Formal)
	case ModeVariable:
		res := m.MatchVar(c.Bindings, c.Formal)
		env, mm = res.Env, res.Mismatch()
	case ModeCall:
		var res match.CallResult
		res, mm = m.MatchCall(c.Call, c.Args)
		env, ret = res.Env, res.Return
	}
	out.Duration = time.Since(start)

	subject := out.Subject()
	problem := func(code diag.Code, msg string) diag.Diagnostic {
		return diag.NewError(code, subject, msg)
	}
	if mm != nil {
		d := mm.Diagnostic(in).WithSubject(subject)
		out.Result = &d
		if mm.Subst != nil {
			out.Substitutions = mm.Subst.String()
		}
	} else if env != nil {
		out.Substitutions = env.String()
	}
	if ret != types.NoTypeID {
		out.Return = types.Label(in, ret)
	}

	switch {
	case c.ExpectMatch && mm != nil:
		out.Problems = append(out.Problems, *out.Result)
	case !c.ExpectMatch && mm == nil:
		out.Problems = append(out.Problems, problem(diag.CaseUnexpectedMatch, "expected a mismatch, the types matched").
			WithNote("substitutions", out.Substitutions))
	case !c.ExpectMatch && c.HasKind && mm.Kind != c.Kind:
		out.Problems = append(out.Problems, problem(diag.CaseWrongKind,
			fmt.Sprintf("expected %s, got %s", c.Kind, mm.Kind)).
			WithNote("reason", mm.Reason(in)))
	}
	if c.ExpectMatch && mm == nil {
		for _, r := range c.Resolved {
			got := env.Resolve(r.Var)
			if got != r.Want {
				out.Problems = append(out.Problems, problem(diag.CaseWrongResolution,
					fmt.Sprintf("%s resolved to %s, expected %s", r.Name, types.Label(in, got), types.Label(in, r.Want))))
			}
		}
		if c.Returns != types.NoTypeID && ret != c.Returns {
			out.Problems = append(out.Problems, problem(diag.CaseWrongReturn,
				fmt.Sprintf("call returned %s, expected %s", types.Label(in, ret), types.Label(in, c.Returns))))
		}
	}
	out.Passed = len(out.Problems) == 0
	return out
}

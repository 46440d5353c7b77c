package scenario

import (
	"fmt"

	"typematch/internal/types"
)

// SyntaxError is a malformed type expression. Offset is a byte offset into
// the expression text.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("at offset %d: %s", e.Offset, e.Msg)
}

// NameError is a reference to a name that is neither a class nor a type
// variable in scope.
type NameError struct {
	Offset int
	Name   string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("at offset %d: unknown name %q", e.Offset, e.Name)
}

// Ref is what a name in a type expression denotes: a type variable or a
// class. Exactly one field is set.
type Ref struct {
	Var   types.TypeID
	Class types.ClassID
}

// Scope resolves names while parsing. Lookup returns ok=false for unknown
// names; a non-nil error aborts the parse.
type Scope interface {
	Lookup(name string) (Ref, bool, error)
}

// Words with fixed meaning in type expressions; no class may use them.
var reserved = map[string]bool{
	"Any": true, "None": true, "nothing": true,
	"Union": true, "Optional": true, "Type": true, "Callable": true,
	"def": true, "bound": true, "unbound": true,
}

// IsReserved reports whether name has a fixed meaning in type expressions.
func IsReserved(name string) bool { return reserved[name] }

// Parse reads one type expression.
func Parse(in *types.Interner, scope Scope, src string) (types.TypeID, error) {
	p := &parser{in: in, scope: scope, lx: lexer{src: src}}
	if err := p.advance(); err != nil {
		return types.NoTypeID, err
	}
	t, err := p.parseType()
	if err != nil {
		return types.NoTypeID, err
	}
	if err := p.expect(tokEOF); err != nil {
		return types.NoTypeID, err
	}
	return t, nil
}

// ParseAlternatives reads `t1 | t2 | ...`, the notation for a value with
// several bindings.
func ParseAlternatives(in *types.Interner, scope Scope, src string) ([]types.TypeID, error) {
	p := &parser{in: in, scope: scope, lx: lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var out []types.TypeID
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.tok.Kind != tokPipe {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return out, nil
}

type parser struct {
	in    *types.Interner
	scope Scope
	lx    lexer
	tok   token
}

func (p *parser) advance() error {
	tok, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(off int, format string, args ...any) error {
	return &SyntaxError{Offset: off, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind) error {
	if p.tok.Kind != kind {
		return p.errorf(p.tok.Off, "expected %s, found %s", kind, p.describe())
	}
	if kind == tokEOF {
		return nil
	}
	return p.advance()
}

func (p *parser) describe() string {
	if p.tok.Kind == tokIdent {
		return fmt.Sprintf("%q", p.tok.Text)
	}
	return p.tok.Kind.String()
}

func (p *parser) parseType() (types.TypeID, error) {
	if p.tok.Kind != tokIdent {
		return types.NoTypeID, p.errorf(p.tok.Off, "expected a type, found %s", p.describe())
	}
	name, off := p.tok.Text, p.tok.Off
	b := p.in.Builtins()
	switch name {
	case "Any":
		return b.Any, p.advance()
	case "None":
		return b.None, p.advance()
	case "nothing":
		return b.Nothing, p.advance()
	case "def", "bound", "unbound":
		return p.parseSignature()
	}
	if err := p.advance(); err != nil {
		return types.NoTypeID, err
	}

	switch name {
	case "Union":
		args, err := p.parseArgs(name, off)
		if err != nil {
			return types.NoTypeID, err
		}
		return p.in.Union(args...), nil
	case "Optional", "Type":
		args, err := p.parseArgs(name, off)
		if err != nil {
			return types.NoTypeID, err
		}
		if len(args) != 1 {
			return types.NoTypeID, p.errorf(off, "%s takes exactly one argument, got %d", name, len(args))
		}
		if name == "Optional" {
			return p.in.Optional(args[0]), nil
		}
		return p.in.ClassObject(args[0]), nil
	case "Callable":
		return p.parseCallable(off)
	}

	ref, ok, err := p.scope.Lookup(name)
	if err != nil {
		return types.NoTypeID, err
	}
	if !ok {
		return types.NoTypeID, &NameError{Offset: off, Name: name}
	}
	if ref.Var != types.NoTypeID {
		if p.tok.Kind == tokLBracket {
			return types.NoTypeID, p.errorf(p.tok.Off, "type variable %s takes no arguments", name)
		}
		return ref.Var, nil
	}
	if p.tok.Kind != tokLBracket {
		return p.in.Class(ref.Class), nil
	}
	args, err := p.parseArgs(name, off)
	if err != nil {
		return types.NoTypeID, err
	}
	id, err := p.in.Generic(ref.Class, args)
	if err != nil {
		return types.NoTypeID, p.errorf(off, "%v", err)
	}
	return id, nil
}

// parseArgs reads `[t, ...]` with at least one element.
func (p *parser) parseArgs(name string, off int) ([]types.TypeID, error) {
	if p.tok.Kind != tokLBracket {
		return nil, p.errorf(p.tok.Off, "%s needs arguments in brackets", name)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind == tokRBracket {
		return nil, p.errorf(off, "%s needs at least one argument", name)
	}
	args, err := p.parseList(tokRBracket)
	if err != nil {
		return nil, err
	}
	return args, p.expect(tokRBracket)
}

// parseList reads comma separated types up to, not including, end.
func (p *parser) parseList(end tokenKind) ([]types.TypeID, error) {
	var out []types.TypeID
	for p.tok.Kind != end {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.tok.Kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// parseCallable reads `[[p, ...], r]` or `[..., r]` after Callable.
func (p *parser) parseCallable(off int) (types.TypeID, error) {
	if err := p.expect(tokLBracket); err != nil {
		return types.NoTypeID, err
	}
	var (
		params   []types.TypeID
		variadic bool
		err      error
	)
	switch p.tok.Kind {
	case tokEllipsis:
		variadic = true
		if err := p.advance(); err != nil {
			return types.NoTypeID, err
		}
	case tokLBracket:
		if err := p.advance(); err != nil {
			return types.NoTypeID, err
		}
		if params, err = p.parseList(tokRBracket); err != nil {
			return types.NoTypeID, err
		}
		if err := p.expect(tokRBracket); err != nil {
			return types.NoTypeID, err
		}
	default:
		return types.NoTypeID, p.errorf(p.tok.Off, "Callable expects a parameter list or '...', found %s", p.describe())
	}
	if err := p.expect(tokComma); err != nil {
		return types.NoTypeID, err
	}
	result, err := p.parseType()
	if err != nil {
		return types.NoTypeID, err
	}
	if err := p.expect(tokRBracket); err != nil {
		return types.NoTypeID, err
	}
	if variadic {
		return p.in.VariadicFunc(result), nil
	}
	id, err := p.in.Callable(types.CallableInfo{Params: params, Required: len(params), Result: result})
	if err != nil {
		return types.NoTypeID, p.errorf(off, "%v", err)
	}
	return id, nil
}

// parseSignature reads `[bound|unbound] def(p, q=, *) [-> r]`. A trailing `=`
// marks a defaulted parameter and `*` accepts extra positional arguments.
func (p *parser) parseSignature() (types.TypeID, error) {
	off := p.tok.Off
	recv := types.ReceiverNone
	switch p.tok.Text {
	case "bound":
		recv = types.ReceiverBound
	case "unbound":
		recv = types.ReceiverUnbound
	}
	if recv != types.ReceiverNone {
		if err := p.advance(); err != nil {
			return types.NoTypeID, err
		}
		if p.tok.Kind != tokIdent || p.tok.Text != "def" {
			return types.NoTypeID, p.errorf(p.tok.Off, "expected def after receiver mode, found %s", p.describe())
		}
	}
	if err := p.advance(); err != nil {
		return types.NoTypeID, err
	}
	if err := p.expect(tokLParen); err != nil {
		return types.NoTypeID, err
	}

	info := types.CallableInfo{Receiver: recv, Required: -1}
	for p.tok.Kind != tokRParen {
		if info.Variadic {
			return types.NoTypeID, p.errorf(p.tok.Off, "'*' must be the last parameter")
		}
		if p.tok.Kind == tokStar {
			info.Variadic = true
			if err := p.advance(); err != nil {
				return types.NoTypeID, err
			}
		} else {
			t, err := p.parseType()
			if err != nil {
				return types.NoTypeID, err
			}
			if p.tok.Kind == tokEqual {
				if info.Required < 0 {
					info.Required = len(info.Params)
				}
				if err := p.advance(); err != nil {
					return types.NoTypeID, err
				}
			} else if info.Required >= 0 {
				return types.NoTypeID, p.errorf(p.tok.Off, "parameter without default follows a defaulted one")
			}
			info.Params = append(info.Params, t)
		}
		if p.tok.Kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return types.NoTypeID, err
		}
	}
	if err := p.expect(tokRParen); err != nil {
		return types.NoTypeID, err
	}
	if info.Required < 0 {
		info.Required = len(info.Params)
	}

	info.Result = p.in.Builtins().Any
	if p.tok.Kind == tokArrow {
		if err := p.advance(); err != nil {
			return types.NoTypeID, err
		}
		result, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		info.Result = result
	}
	id, err := p.in.Callable(info)
	if err != nil {
		return types.NoTypeID, p.errorf(off, "%v", err)
	}
	return id, nil
}

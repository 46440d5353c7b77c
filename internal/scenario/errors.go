package scenario

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"typematch/internal/diag"
)

// Error is one problem found while loading a scenario file.
type Error struct {
	Code diag.Code
	// Subject locates the problem, e.g. "basic.toml: class Sub, base 1".
	Subject string
	Text    string // the offending type expression, if any
	Err     error
}

func (e *Error) Error() string {
	return e.Subject + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Diagnostic converts the error for rendering.
func (e *Error) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Code, e.Subject, e.Err.Error())
	if e.Text != "" {
		d = d.WithNote("text", e.Text)
	}
	var syn *SyntaxError
	var name *NameError
	switch {
	case errors.As(e.Err, &syn):
		d = d.WithNote("offset", fmt.Sprint(syn.Offset))
	case errors.As(e.Err, &name):
		d = d.WithNote("offset", fmt.Sprint(name.Offset))
	}
	return d
}

// Diagnostics flattens a load error into diagnostics, one per aggregated
// failure.
func Diagnostics(err error) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, e := range multierr.Errors(err) {
		var se *Error
		if errors.As(e, &se) {
			out = append(out, se.Diagnostic())
			continue
		}
		out = append(out, diag.NewError(diag.LoadDecl, "", e.Error()))
	}
	return out
}

// errReported stops work that depends on a declaration whose failure was
// already recorded.
var errReported = errors.New("declaration failed")

// exprCode picks the diagnostic code for a type expression error.
func exprCode(err error) diag.Code {
	var name *NameError
	if errors.As(err, &name) {
		return diag.LoadUnknownName
	}
	var syn *SyntaxError
	if errors.As(err, &syn) {
		return diag.LoadSyntax
	}
	return diag.LoadDecl
}

package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"typematch/internal/diag"
	"typematch/internal/scenario"
)

type palette struct {
	pass, fail, code, key, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		pass: color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		code: color.New(color.FgYellow),
		key:  color.New(color.FgCyan),
		dim:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.pass, p.fail, p.code, p.key, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes one status line per case, followed by the diagnostics of
// failing cases (and of every case with Verbose), then the load errors and a
// summary:
//
//	FAIL  basic.toml::projection
//	      TM4004 Class is not a subclass of the expected class
//	        expected  Base[str]
//	        actual    Other
func Pretty(w io.Writer, r *Report, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	pw := &prettyWriter{w: w}
	printed := 0
	budget := func() bool {
		if opts.Max > 0 && printed >= opts.Max {
			return false
		}
		printed++
		return true
	}

	for _, o := range r.Outcomes {
		status := p.pass.Sprint("PASS")
		if !o.Passed {
			status = p.fail.Sprint("FAIL")
		}
		pw.printf("%s  %s%s\n", status, o.Subject(), p.dim.Sprintf("  (%s, expect %s)", o.Mode, o.Expect))
		if o.Passed && !opts.Verbose {
			continue
		}
		if o.Result != nil && (opts.Verbose || !containsCode(o.Problems, o.Result.Code)) && budget() {
			writeDiagnostic(pw, p, *o.Result, "      ")
		}
		for _, d := range o.Problems {
			if !budget() {
				break
			}
			writeDiagnostic(pw, p, d, "      ")
		}
		if o.Return != "" {
			writeNotes(pw, p, []diag.Note{{Key: "return", Value: o.Return}}, "        ")
		}
	}

	for _, d := range r.Load {
		if !budget() {
			break
		}
		pw.printf("%s  %s\n", p.fail.Sprint("LOAD"), d.Subject)
		writeDiagnostic(pw, p, d, "      ")
	}

	failed := scenario.Failed(r.Outcomes)
	summary := fmt.Sprintf("%d cases: %d passed, %d failed", len(r.Outcomes), len(r.Outcomes)-failed, failed)
	if len(r.Load) > 0 {
		summary += fmt.Sprintf(", %d load errors", len(r.Load))
	}
	if r.Failed() {
		pw.printf("\n%s\n", p.fail.Sprint(summary))
	} else {
		pw.printf("\n%s\n", p.pass.Sprint(summary))
	}

	if opts.Timings && r.Timings != nil {
		rows := make([]diag.Note, 0, len(r.Timings.Phases)+1)
		for _, ph := range r.Timings.Phases {
			value := fmt.Sprintf("%8.2f ms", ph.DurationMS)
			if ph.Note != "" {
				value += "  " + ph.Note
			}
			rows = append(rows, diag.Note{Key: ph.Name, Value: value})
		}
		rows = append(rows, diag.Note{Key: "total", Value: fmt.Sprintf("%8.2f ms", r.Timings.TotalMS)})
		pw.printf("timings:\n")
		writeNotes(pw, p, rows, "  ")
	}
	return pw.err
}

func containsCode(ds []diag.Diagnostic, code diag.Code) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

func writeDiagnostic(pw *prettyWriter, p palette, d diag.Diagnostic, indent string) {
	pw.printf("%s%s %s", indent, p.code.Sprint(d.Code.ID()), d.Code.Title())
	if d.Message != "" && d.Message != d.Code.Title() {
		pw.printf(": %s", d.Message)
	}
	pw.printf("\n")
	writeNotes(pw, p, d.Notes, indent+"  ")
}

// writeNotes aligns values on the widest key; widths are display columns so
// non-ASCII names line up.
func writeNotes(pw *prettyWriter, p palette, notes []diag.Note, indent string) {
	width := 0
	for _, n := range notes {
		width = max(width, runewidth.StringWidth(n.Key))
	}
	for _, n := range notes {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(n.Key)+2)
		pw.printf("%s%s%s%s\n", indent, p.key.Sprint(n.Key), pad, n.Value)
	}
}

// prettyWriter keeps the first write error so rendering code stays linear.
type prettyWriter struct {
	w   io.Writer
	err error
}

func (pw *prettyWriter) printf(format string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}

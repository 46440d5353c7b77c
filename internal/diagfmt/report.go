package diagfmt

import (
	"typematch/internal/diag"
	"typematch/internal/observ"
	"typematch/internal/scenario"
)

// Report is everything one check run produced.
type Report struct {
	Outcomes []scenario.Outcome
	// Load holds diagnostics for files that could not be loaded.
	Load    []diag.Diagnostic
	Timings *observ.Report
}

// Failed reports whether any file failed to load or any case missed its
// expectation.
func (r *Report) Failed() bool {
	return len(r.Load) > 0 || scenario.Failed(r.Outcomes) > 0
}

// NoteOutput is one labelled detail.
type NoteOutput struct {
	Key   string `json:"key" msgpack:"key"`
	Value string `json:"value" msgpack:"value"`
}

// DiagnosticOutput is the serialisable form of a diag.Diagnostic.
type DiagnosticOutput struct {
	Severity string       `json:"severity" msgpack:"severity"`
	Code     string       `json:"code" msgpack:"code"`
	Title    string       `json:"title" msgpack:"title"`
	Message  string       `json:"message" msgpack:"message"`
	Subject  string       `json:"subject,omitempty" msgpack:"subject,omitempty"`
	Notes    []NoteOutput `json:"notes,omitempty" msgpack:"notes,omitempty"`
}

// CaseOutput is the serialisable form of a scenario.Outcome.
type CaseOutput struct {
	Suite         string             `json:"suite" msgpack:"suite"`
	Case          string             `json:"case" msgpack:"case"`
	Mode          string             `json:"mode" msgpack:"mode"`
	Expect        string             `json:"expect" msgpack:"expect"`
	Passed        bool               `json:"passed" msgpack:"passed"`
	Result        *DiagnosticOutput  `json:"result,omitempty" msgpack:"result,omitempty"`
	Problems      []DiagnosticOutput `json:"problems,omitempty" msgpack:"problems,omitempty"`
	Substitutions string             `json:"substitutions,omitempty" msgpack:"substitutions,omitempty"`
	Return        string             `json:"return,omitempty" msgpack:"return,omitempty"`
	DurationUS    int64              `json:"duration_us" msgpack:"duration_us"`
}

// Output is the root of the JSON and msgpack encodings.
type Output struct {
	Cases   []CaseOutput       `json:"cases" msgpack:"cases"`
	Load    []DiagnosticOutput `json:"load,omitempty" msgpack:"load,omitempty"`
	Total   int                `json:"total" msgpack:"total"`
	Passed  int                `json:"passed" msgpack:"passed"`
	Failed  int                `json:"failed" msgpack:"failed"`
	Timings *observ.Report     `json:"timings,omitempty" msgpack:"timings,omitempty"`
}

func diagnosticOutput(d diag.Diagnostic) DiagnosticOutput {
	out := DiagnosticOutput{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Title:    d.Code.Title(),
		Message:  d.Message,
		Subject:  d.Subject,
	}
	if len(d.Notes) > 0 {
		out.Notes = make([]NoteOutput, len(d.Notes))
		for i, n := range d.Notes {
			out.Notes[i] = NoteOutput{Key: n.Key, Value: n.Value}
		}
	}
	return out
}

// BuildOutput assembles the serialisable report without encoding it. Max
// trims the case list, the counts always cover every case.
func BuildOutput(r *Report, opts JSONOpts) Output {
	out := Output{
		Cases:   make([]CaseOutput, 0, len(r.Outcomes)),
		Total:   len(r.Outcomes),
		Timings: r.Timings,
	}
	for _, d := range r.Load {
		out.Load = append(out.Load, diagnosticOutput(d))
	}
	for i, o := range r.Outcomes {
		if o.Passed {
			out.Passed++
		} else {
			out.Failed++
		}
		if opts.Max > 0 && i >= opts.Max {
			continue
		}
		c := CaseOutput{
			Suite:         o.Suite,
			Case:          o.Case,
			Mode:          o.Mode.String(),
			Expect:        o.Expect,
			Passed:        o.Passed,
			Substitutions: o.Substitutions,
			Return:        o.Return,
			DurationUS:    o.Duration.Microseconds(),
		}
		if o.Result != nil {
			res := diagnosticOutput(*o.Result)
			c.Result = &res
		}
		for _, p := range o.Problems {
			c.Problems = append(c.Problems, diagnosticOutput(p))
		}
		out.Cases = append(out.Cases, c)
	}
	return out
}

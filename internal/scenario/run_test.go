package scenario

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"typematch/internal/diag"
	"typematch/internal/observ"
	"typematch/internal/trace"
)

func TestRunProperties(t *testing.T) {
	timer := observ.NewTimer()
	suites, err := LoadAll([]string{"testdata/properties.toml", "testdata/classes.yaml"}, timer)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	outcomes, err := Run(context.Background(), suites, RunOptions{Jobs: 4, Timer: timer})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 16 {
		t.Fatalf("expected 16 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if !o.Passed {
			t.Errorf("%s failed: %+v", o.Subject(), o.Problems)
		}
	}
	if outcomes[0].Case != "subclass" || outcomes[13].Case != "box of int" {
		t.Fatalf("outcomes out of order: %s, %s", outcomes[0].Case, outcomes[13].Case)
	}

	var phases []string
	for _, p := range timer.Report().Phases {
		phases = append(phases, p.Name)
	}
	if strings.Join(phases, ",") != "load,index,match" {
		t.Fatalf("unexpected phases %v", phases)
	}
}

func TestRunReportsUnmetExpectations(t *testing.T) {
	f := decodeTOML(t, `
top = "object"

[[typevar]]
name = "T"

[[class]]
name = "object"

[[class]]
name = "int"
bases = ["object"]

[[class]]
name = "bool"
bases = ["int"]

[[case]]
name = "should fail"
actual = "bool"
formal = "int"
expect = "mismatch"

[[case]]
name = "wrong kind"
actual = "int"
formal = "bool"
expect = "mismatch"
kind = "ArityMismatch"

[[case]]
name = "wrong resolution"
actual = "bool"
formal = "T"
resolved = { T = "int" }

[[case]]
name = "wrong return"
call = { params = ["T"], result = "T" }
args = ["bool"]
returns = "int"

[[case]]
name = "plain failure"
actual = "int"
formal = "bool"
`)
	s, err := Build("expect.toml", f)
	if err != nil {
		t.Fatal(err)
	}
	outcomes, err := Run(context.Background(), []*Suite{s}, RunOptions{Jobs: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := []diag.Code{
		diag.CaseUnexpectedMatch,
		diag.CaseWrongKind,
		diag.CaseWrongResolution,
		diag.CaseWrongReturn,
		diag.MatchHierarchy,
	}
	if Failed(outcomes) != len(want) {
		t.Fatalf("expected %d failures, got %d", len(want), Failed(outcomes))
	}
	for i, o := range outcomes {
		if len(o.Problems) != 1 || o.Problems[0].Code != want[i] {
			t.Errorf("%s: expected %s, got %+v", o.Case, want[i].ID(), o.Problems)
		}
		if o.Problems[0].Subject != "expect.toml::"+o.Case {
			t.Errorf("%s: subject %q", o.Case, o.Problems[0].Subject)
		}
	}
	if outcomes[3].Return != "bool" {
		t.Errorf("call return should be rendered, got %q", outcomes[3].Return)
	}
	if outcomes[4].Result == nil {
		t.Fatalf("a failed match should carry the matcher diagnostic")
	}
	if v, _ := outcomes[4].Result.Note("expected"); v != "bool" {
		t.Errorf("expected note = %q", v)
	}
}

func TestRunTracesCases(t *testing.T) {
	s, err := Load("testdata/classes.yaml")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	tracer := trace.NewStreamTracer(&buf, trace.LevelPhase, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tracer)
	if _, err := Run(ctx, []*Suite{s}, RunOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := tracer.Flush(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "box of int") || !strings.Contains(out, "result=pass") {
		t.Fatalf("case spans missing from trace:\n%s", out)
	}
	if strings.Contains(out, "[match]") {
		t.Fatalf("match spans should be filtered at phase level:\n%s", out)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	s, err := Load("testdata/classes.yaml")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, []*Suite{s}, RunOptions{}); err == nil {
		t.Fatalf("expected a cancellation error")
	}
}

type recordingSink struct {
	mu     sync.Mutex
	counts map[Status]int
}

func (r *recordingSink) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[Status]int)
	}
	r.counts[ev.Status]++
}

func TestRunReportsProgress(t *testing.T) {
	suites, err := LoadAll([]string{"testdata/classes.yaml"}, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sink := &recordingSink{}
	if _, err := Run(context.Background(), suites, RunOptions{Jobs: 2, Progress: sink}); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := map[Status]int{StatusQueued: 3, StatusRunning: 3, StatusPassed: 3}
	for status, n := range want {
		if sink.counts[status] != n {
			t.Errorf("%s events = %d, want %d", status, sink.counts[status], n)
		}
	}
	if sink.counts[StatusFailed] != 0 {
		t.Errorf("unexpected failed events: %d", sink.counts[StatusFailed])
	}
}

package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"typematch/internal/scenario"
)

func feed(t *testing.T, model tea.Model, events ...scenario.Event) *progressModel {
	t.Helper()
	for _, ev := range events {
		model, _ = model.Update(eventMsg(ev))
	}
	return model.(*progressModel)
}

func TestProgressTracksSuites(t *testing.T) {
	model := NewProgressModel("typematch check", []string{"a.toml", "b.yaml"}, nil)
	m := feed(t, model,
		scenario.Event{Suite: "a.toml", Case: "one", Status: scenario.StatusQueued},
		scenario.Event{Suite: "a.toml", Case: "two", Status: scenario.StatusQueued},
		scenario.Event{Suite: "b.yaml", Case: "three", Status: scenario.StatusQueued},
		scenario.Event{Suite: "a.toml", Case: "one", Status: scenario.StatusRunning},
		scenario.Event{Suite: "a.toml", Case: "one", Status: scenario.StatusPassed},
		scenario.Event{Suite: "b.yaml", Case: "three", Status: scenario.StatusRunning},
		scenario.Event{Suite: "b.yaml", Case: "three", Status: scenario.StatusFailed},
	)

	if m.total() != 3 || m.finished() != 2 {
		t.Fatalf("total/finished = %d/%d", m.total(), m.finished())
	}
	if got := m.suites[0].status(); got != "1/2" {
		t.Fatalf("a.toml status = %q", got)
	}
	if got := m.suites[1].status(); got != "failed" {
		t.Fatalf("b.yaml status = %q", got)
	}

	view := m.View()
	for _, want := range []string{"typematch check (2/3 cases)", "a.toml", "b.yaml", "failed"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressQuitsWhenEventsClose(t *testing.T) {
	events := make(chan scenario.Event)
	close(events)
	m := NewProgressModel("check", []string{"a.toml"}, events).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("expected doneMsg, got %T", msg)
	}
	model, cmd := m.Update(msg)
	if cmd == nil || !model.(*progressModel).done {
		t.Fatalf("model should finish on close")
	}
	if !strings.Contains(model.View(), "done: check") {
		t.Fatalf("view should report completion:\n%s", model.View())
	}
}

func TestSuiteStatusQueued(t *testing.T) {
	s := &suiteItem{path: "x.toml", total: 2}
	if s.status() != "queued" {
		t.Fatalf("status = %q", s.status())
	}
	s.finished = 2
	if s.status() != "done" {
		t.Fatalf("status = %q", s.status())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("scenarios/deeply/nested/file.toml", 12); got != "scenarios..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 12); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}

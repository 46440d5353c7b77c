package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"typematch/internal/scenario"
	"typematch/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode, w io.Writer) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(w)
	}
}

type runOutcome struct {
	outcomes []scenario.Outcome
	err      error
}

// runWithUI runs the suites while a progress view consumes their events.
func runWithUI(ctx context.Context, w io.Writer, title string, files []string, suites []*scenario.Suite, opts scenario.RunOptions) ([]scenario.Outcome, error) {
	events := make(chan scenario.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Progress = scenario.ChannelSink{Ch: events}
		outcomes, err := scenario.Run(ctx, suites, runOpts)
		outcomeCh <- runOutcome{outcomes: outcomes, err: err}
		close(events)
	}()

	paths := make([]string, 0, len(suites))
	for _, s := range suites {
		paths = append(paths, s.Path)
	}
	if len(paths) == 0 {
		paths = files
	}
	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(w), tea.WithInput(nil))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the run unblocked once the view is gone
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.outcomes, uiErr
	}
	return outcome.outcomes, outcome.err
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"stck/internal/driver"
	"stck/internal/ui"
)

// useProgressUI decides whether a batch gets the live view. --ui=on forces
// it, auto needs a terminal on stdout. JSON and --quiet runs never get it.
func useProgressUI(value string, flags outputFlags) (bool, error) {
	var enabled bool
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		enabled = isTerminal(os.Stdout)
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return enabled && flags.format == "pretty" && !flags.quiet, nil
}

type preprocessOutcome struct {
	results []*driver.Result
	err     error
}

// runPreprocessWithUI runs the batch while a bubbletea view renders its
// progress events. Events left over after the view exits are drained so the
// workers never block on a full channel.
func runPreprocessWithUI(ctx context.Context, title string, files []string, opts driver.Options, jobs int) ([]*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan preprocessOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.PreprocessFiles(ctx, files, optsCopy, jobs)
		outcomeCh <- preprocessOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"irgraph/internal/pipeline"
	"irgraph/internal/ui"
)

type runOutcome struct {
	results []pipeline.Result
	err     error
}

func (a *app) runWithUI(ctx context.Context, title string, paths []string, opts pipeline.Options) ([]pipeline.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		opts.Sink = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, paths, opts)
		outcomeCh <- runOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(a.stderr))
	_, uiErr := program.Run()
	// the program may quit before the pipeline finishes
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BendyLand/blfmt-sub000/internal/driver"
	"github.com/BendyLand/blfmt-sub000/internal/ui"
)

type formatOutcome struct {
	batch *driver.Batch
	err   error
}

// runFormatWithUI runs FormatPaths while a progress view draws on out.
func runFormatWithUI(ctx context.Context, out io.Writer, paths []string, opts driver.FormatOptions) (*driver.Batch, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan formatOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Events = events
		batch, err := driver.FormatPaths(ctx, paths, optsCopy)
		outcomeCh <- formatOutcome{batch: batch, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("blfmt", events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// вид мог закрыться раньше, воркеры не должны блокироваться на канале
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.batch, uiErr
	}
	return outcome.batch, outcome.err
}

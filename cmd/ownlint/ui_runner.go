package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ownlint/internal/driver"
	"ownlint/internal/source"
	"ownlint/internal/ui"
)

type checkOutcome struct {
	fileSet *source.FileSet
	results []driver.CheckResult
	err     error
}

// runCheckDirWithUI runs a directory check while rendering live progress.
// The analysis runs in a goroutine and feeds events to the Bubble Tea model;
// closing the event channel tells the model to finish.
func runCheckDirWithUI(ctx context.Context, title, dir string, files []string, opts driver.Options) (*source.FileSet, []driver.CheckResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Events = events
		fs, results, err := driver.CheckDir(ctx, dir, optsCopy)
		outcomeCh <- checkOutcome{fileSet: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}

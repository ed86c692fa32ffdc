package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"castor/internal/conv"
	"castor/internal/ui"
)

var errAborted = errors.New("interrupted")

type batchOutcome struct {
	outcomes []conv.Outcome
	err      error
}

// runBatchWithUI classifies queries while a progress view renders on
// stderr. Rows group perRow consecutive queries under one label.
func runBatchWithUI(ctx context.Context, s *session, engine *conv.Engine, queries []conv.Query, title string, labels []string, perRow int) ([]conv.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan conv.BatchEvent, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		bctx := conv.WithProgress(ctx, conv.ChannelSink{Ch: events})
		res, err := engine.ClassifyBatch(bctx, queries, s.jobs, s.maxDiags)
		outcomeCh <- batchOutcome{outcomes: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, labels, perRow, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	final, uiErr := program.Run()
	if uiErr != nil || ui.Aborted(final) {
		cancel()
	}
	// Workers may still be sending after the view quit early.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if ui.Aborted(final) {
		return nil, errAborted
	}
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return outcome.outcomes, uiErr
	}
	return outcome.outcomes, outcome.err
}

// classifyBatch runs queries through engine, with a progress view when
// --progress is set and stderr is a terminal.
func (s *session) classifyBatch(ctx context.Context, engine *conv.Engine, queries []conv.Query, title string, labels []string, perRow int) ([]conv.Outcome, error) {
	show, err := s.cmd.Root().PersistentFlags().GetBool("progress")
	if err != nil {
		return nil, err
	}
	if show && isTerminal(os.Stderr) && len(labels) > 0 {
		return runBatchWithUI(ctx, s, engine, queries, title, labels, perRow)
	}
	return engine.ClassifyBatch(ctx, queries, s.jobs, s.maxDiags)
}

package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ymx/internal/playback"
	"github.com/desertthunder/ymx/internal/ui"
)

// runTUI drives a session from the interactive terminal UI.
//
// The session runs in the background; the UI quits when the user presses q or
// when the session ends and closes the update channel.
func (r *Runner) runTUI(ctx context.Context, session *playback.Session, events chan playback.Event, updates chan playback.Update, steps playback.Steps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := session.Run(ctx)
		close(updates)
		done <- err
	}()

	model := ui.NewModel(events, updates, steps)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	cancel()
	sessionErr := <-done

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return sessionErr
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package studio

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// Notifier reports controller state changes. *pipeline.Controller
// implements it.
type Notifier interface {
	Subscribe() (<-chan struct{}, func())
}

// Controller is what Run needs: the stage operations plus change
// notifications.
type Controller interface {
	Pipeline
	Notifier
}

// Run starts the studio and blocks until the user quits or ctx is
// cancelled. A pump goroutine forwards controller notifications to the
// program so timer-driven changes (the copy acknowledgement expiring) are
// redrawn.
func Run(ctx context.Context, c Controller, opts ...tea.ProgramOption) error {
	prog := tea.NewProgram(NewModel(ctx, c), opts...)

	changes, unsubscribe := c.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				prog.Quit()
				return nil
			case _, ok := <-changes:
				if !ok {
					return nil
				}
				prog.Send(StateChangedMsg{})
			}
		}
	})
	g.Go(func() error {
		defer unsubscribe()
		if _, err := prog.Run(); err != nil {
			return fmt.Errorf("running studio: %w", err)
		}
		return nil
	})
	return g.Wait()
}

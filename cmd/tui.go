package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/snap2style/s2s/internal/shared"
	"github.com/snap2style/s2s/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for the styling workflow.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.styler == nil {
		return fmt.Errorf("%w: styling service not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/s2s-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()
	r.attachSession(db)

	controller := r.newController(db)
	if err := controller.RestoreOnLoad(); err != nil {
		r.logger.Warn("failed to restore last result", "error", err)
	}

	model := ui.NewModel(ctx, controller, cmd.String("dir"))
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

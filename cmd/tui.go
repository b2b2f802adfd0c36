package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"github.com/vuciv/true-random-shuffle/internal/shared"
	"github.com/vuciv/true-random-shuffle/internal/ui"
)

// TUI launches the interactive terminal UI for shuffling.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/shuffle-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.catalog, r.engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

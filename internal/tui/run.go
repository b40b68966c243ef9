// SPDX-License-Identifier: MIT
package tui

import (
	applog "barscope/internal/log"
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the display until the user quits, the pull driver ends or ctx is
// cancelled. Log output goes to logOut while the terminal belongs to the UI
// (nil discards it) and is restored to stderr afterwards.
func Run(ctx context.Context, opts Options, logOut io.Writer) (Model, error) {
	if logOut == nil {
		logOut = io.Discard
	}
	applog.SetOutput(logOut)
	defer applog.SetOutput(os.Stderr)

	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return Model{}, err
	}
	m, ok := final.(Model)
	if !ok {
		return Model{}, nil
	}
	return m, m.Err()
}

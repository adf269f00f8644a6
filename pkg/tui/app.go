package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/logger"
	"github.com/killallgit/realty/pkg/presenter"
	chatview "github.com/killallgit/realty/pkg/tui/chat"
)

// App is the interactive terminal client
type App struct {
	ctrl      chatview.Controller
	presenter *presenter.Presenter
	program   *tea.Program
}

// Options tune the chat view
type Options struct {
	WordWrap int
}

// NewApp wires the chat view to the controller's store. Every store mutation
// is forwarded to the program so each delta re-renders.
func NewApp(ctx context.Context, ctrl chatview.Controller, p *presenter.Presenter, opts Options) *App {
	view := chatview.NewChatModel(ctx, ctrl, p, chatview.WithWordWrap(opts.WordWrap))
	root := NewRootModel(view)

	a := &App{
		ctrl:      ctrl,
		presenter: p,
		program:   tea.NewProgram(root, tea.WithContext(ctx), tea.WithAltScreen()),
	}

	ctrl.Store().Subscribe(func(t chat.Turn) {
		a.program.Send(chatview.TurnUpdatedMsg{Turn: t})
	})
	return a
}

// Run blocks until the user quits
func (a *App) Run() error {
	logger.Info("Starting TUI")
	_, err := a.program.Run()

	// Don't leave a reply streaming into a closed program
	if a.ctrl.InFlight() && a.ctrl.Cancel() == nil {
		logger.Info("Cancelled in-flight reply on exit")
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}

// ReloadProfiles swaps the agent profile table and re-renders the transcript
func (a *App) ReloadProfiles(profiles *presenter.Profiles) {
	a.presenter.SetProfiles(profiles)
	a.program.Send(chatview.ProfilesChangedMsg{})
}

package chat

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/realty/pkg/controllers"
	"github.com/killallgit/realty/pkg/logger"
	"github.com/killallgit/realty/pkg/tui/chat/status"
)

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowResize(msg.Width, msg.Height)
		m.statusBar, _ = m.statusBar.Update(msg)
		return m, nil

	case tea.KeyMsg:
		return handleKeyMsg(m, msg)

	case TurnUpdatedMsg:
		m.turns = m.ctrl.Store().All()
		m.updateViewportContent()
		return m, nil

	case ProfilesChangedMsg:
		m.updateViewportContent()
		return m, nil

	case submitDoneMsg:
		m.busy = false
		m.statusBar, _ = m.statusBar.Update(status.StopMsg{})
		m.notice = noticeFor(msg.err)
		m.turns = m.ctrl.Store().All()
		m.updateViewportContent()
		return m, nil

	case resetDoneMsg:
		if msg.err != nil {
			m.notice = noticeFor(msg.err)
			return m, nil
		}
		m.turns = m.ctrl.Store().All()
		m.notice = "Started a new conversation."
		m.updateViewportContent()
		return m, nil

	case attachDoneMsg:
		if msg.err != nil {
			logger.Warn("Image attach failed: %v", msg.err)
			m.notice = fmt.Sprintf("Could not attach image: %v", msg.err)
			return m, nil
		}
		m.attachment = msg.image
		m.notice = ""
		return m, nil

	default:
		var statusCmd tea.Cmd
		m.statusBar, statusCmd = m.statusBar.Update(msg)
		cmds = append(cmds, statusCmd)

		var tiCmd tea.Cmd
		m.textarea, tiCmd = m.textarea.Update(msg)
		cmds = append(cmds, tiCmd)

		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

func noticeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "Reply stopped."
	case errors.Is(err, controllers.ErrEmptySubmission):
		return ""
	case errors.Is(err, controllers.ErrStreamInFlight):
		return "The agent is still replying. ctrl+x stops it."
	default:
		// The transcript already carries the error turn
		logger.Error("Submit failed: %v", err)
		return "Could not reach the agent."
	}
}

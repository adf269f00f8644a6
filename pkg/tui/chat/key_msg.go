package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/tui/chat/status"
)

func handleKeyMsg(m chatModel, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, keys.Clear) {
		m.numEscPress = 0
	}

	switch {
	case key.Matches(msg, keys.Clear):
		if m.attaching {
			m.leaveAttachMode()
			return m, nil
		}
		m.numEscPress++
		if m.numEscPress == 2 {
			m.textarea.Reset()
			m.attachment = nil
			m.notice = ""
			m.numEscPress = 0
			m.resizeInput()
		}
		return m, nil

	case key.Matches(msg, keys.Cancel):
		if err := m.ctrl.Cancel(); err != nil {
			m.notice = "Nothing to stop."
		} else {
			m.notice = "Stopping reply..."
		}
		return m, nil

	case key.Matches(msg, keys.NewChat):
		return m, resetConversation(m.ctrl)

	case key.Matches(msg, keys.Attach):
		if !m.attaching {
			m.enterAttachMode()
		}
		return m, nil

	case key.Matches(msg, keys.Send):
		if m.attaching {
			path := m.textarea.Value()
			m.leaveAttachMode()
			return m, loadImage(path)
		}
		return m.submit()

	case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// Let the textarea handle the key
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.resizeInput()

	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" && m.attachment == nil {
		return m, nil
	}
	if m.busy {
		m.notice = "The agent is still replying. ctrl+x stops it."
		return m, nil
	}

	image := m.attachment
	m.attachment = nil
	m.busy = true
	m.notice = ""
	m.textarea.Reset()
	m.resizeInput()
	m.viewport.GotoBottom()

	var statusCmd tea.Cmd
	m.statusBar, statusCmd = m.statusBar.Update(status.StartMsg{})

	ctx, ctrl := m.ctx, m.ctrl
	submitCmd := func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(ctx, text, image)}
	}
	return m, tea.Batch(submitCmd, statusCmd)
}

func (m *chatModel) enterAttachMode() {
	m.attaching = true
	m.draft = m.textarea.Value()
	m.textarea.Reset()
	m.textarea.Placeholder = attachPlaceholder
	m.notice = ""
	m.resizeInput()
}

func (m *chatModel) leaveAttachMode() {
	m.attaching = false
	m.textarea.Placeholder = inputPlaceholder
	m.textarea.SetValue(m.draft)
	m.draft = ""
	m.resizeInput()
}

func loadImage(path string) tea.Cmd {
	path = strings.Trim(strings.TrimSpace(path), `"'`)
	return func() tea.Msg {
		if path == "" {
			return attachDoneMsg{err: errNoPath}
		}
		img, err := chat.LoadImage(path)
		return attachDoneMsg{image: img, err: err}
	}
}

// resetConversation runs off the event loop since the store notifies the
// program synchronously
func resetConversation(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		return resetDoneMsg{err: ctrl.Reset()}
	}
}

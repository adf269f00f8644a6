package status

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m StatusModel) Update(msg tea.Msg) (StatusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.isActive {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartMsg:
		wasActive := m.isActive
		m.isActive = true
		m.text = msg.Text
		if m.text == "" {
			m.text = DefaultText
		}
		if wasActive {
			return m, nil
		}
		m.startTime = m.now()
		return m, m.spinner.Tick

	case StopMsg:
		m.isActive = false
		m.text = ""
		return m, nil
	}

	return m, nil
}

package chat

import (
	"errors"
	"strings"
)

var errNoPath = errors.New("no path given")

func (m chatModel) renderTurns() string {
	width := m.renderWidth()

	rendered := make([]string, 0, len(m.turns))
	for _, t := range m.turns {
		rendered = append(rendered, strings.TrimRight(m.presenter.Render(t, width), "\n"))
	}
	return strings.Join(rendered, "\n\n")
}

func (m *chatModel) updateViewportContent() {
	follow := m.viewport.AtBottom() || m.busy
	m.viewport.SetContent(m.renderTurns())
	if follow {
		m.viewport.GotoBottom()
	}
}

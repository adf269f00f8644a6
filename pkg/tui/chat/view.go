package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/realty/pkg/presenter"
	"github.com/mattn/go-runewidth"
)

const title = "realty"

func (m chatModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.statusBar.View(),
		m.inputView(),
		m.footerView(),
	)
}

// headerView shows the title and the agent currently answering
func (m chatModel) headerView() string {
	left := m.styles.Header.Render(title)
	agent := m.ctrl.ActiveAgent()
	if agent == "" {
		return left + m.styles.HeaderInfo.Render("no agent yet")
	}

	style := m.presenter.StyleForAgent(agent)
	room := m.width - lipgloss.Width(left) - 2
	label := style.Label
	if room > 0 {
		label = runewidth.Truncate(label, room, "…")
	}
	return left + " " + m.styles.Agent(style.Color).Render(label)
}

func (m chatModel) inputView() string {
	return m.styles.InputBorder.Render(m.textarea.View())
}

func (m chatModel) footerView() string {
	var parts []string
	if m.attachment != nil {
		parts = append(parts, m.styles.Attachment.Render(presenter.DescribeImage(m.attachment)))
	}

	if m.notice != "" {
		parts = append(parts, m.styles.Notice.Render(m.notice))
	} else {
		parts = append(parts, m.help.ShortHelpView(keys.ShortHelp()))
	}

	footer := m.styles.Footer
	if m.width > 0 {
		footer = footer.MaxWidth(m.width)
	}
	return footer.Render(strings.Join(parts, "  "))
}

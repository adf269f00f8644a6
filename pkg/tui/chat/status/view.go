package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/realty/pkg/theme"
)

func (m StatusModel) View() string {
	// Keep the line so the layout doesn't jump when a reply starts
	if !m.isActive || m.width == 0 {
		return strings.Repeat(" ", max(m.width, 0))
	}

	components := []string{
		m.spinner.View(),
		lipgloss.NewStyle().Foreground(theme.ColorFocus).Italic(true).Render(m.text),
	}

	if elapsed := m.Elapsed(); elapsed.Seconds() >= 1 {
		minutes := int(elapsed.Minutes())
		seconds := int(elapsed.Seconds()) % 60
		timerStyle := lipgloss.NewStyle().Foreground(theme.ColorBase04)
		components = append(components, timerStyle.Render(fmt.Sprintf("%02d:%02d", minutes, seconds)))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(strings.Join(components, " "))
}

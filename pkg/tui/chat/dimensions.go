package chat

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	maxInputHeight = 6

	// header, status line, footer and the input border
	chromeHeight = 5
)

// calculateTextAreaHeight determines the visual height of the textarea
// based on its content and wrapping
func (m *chatModel) calculateTextAreaHeight() int {
	content := m.textarea.Value()
	if content == "" {
		return 1
	}

	textWidth := m.textarea.Width()
	if textWidth <= 0 {
		textWidth = m.width - 4
		if textWidth <= 0 {
			textWidth = 80
		}
	}

	total := 0
	for _, line := range strings.Split(content, "\n") {
		lineWidth := runewidth.StringWidth(line)
		total += max(1, (lineWidth+textWidth-1)/textWidth)
	}

	return min(max(total, 1), maxInputHeight)
}

// resizeInput grows or shrinks the textarea and gives the rest to the viewport
func (m *chatModel) resizeInput() {
	height := m.calculateTextAreaHeight()
	if m.textarea.Height() != height {
		m.textarea.SetHeight(height)
	}
	if m.height > 0 {
		m.viewport.Height = max(1, m.height-height-chromeHeight)
	}
}

// handleWindowResize updates all dimensions when window size changes
func (m *chatModel) handleWindowResize(width, height int) {
	m.width = width
	m.height = height

	// border plus padding
	m.textarea.SetWidth(max(1, width-4))
	m.viewport.Width = width
	m.resizeInput()

	m.updateViewportContent()
}

// renderWidth is the wrap width for transcript text
func (m *chatModel) renderWidth() int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if m.wordWrap > 0 && m.wordWrap < width {
		width = m.wordWrap
	}
	return width
}

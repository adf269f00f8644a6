package status

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/realty/pkg/theme"
)

// DefaultText is shown while an agent reply streams
const DefaultText = "Agent is typing..."

// StatusModel is the one-line typing indicator under the transcript
type StatusModel struct {
	spinner   spinner.Model
	text      string
	startTime time.Time
	isActive  bool
	width     int
	now       func() time.Time
}

// NewStatusModel creates an inactive status line
func NewStatusModel() StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorFocus)

	return StatusModel{
		spinner: s,
		now:     time.Now,
	}
}

// Active reports whether the indicator is showing
func (m StatusModel) Active() bool {
	return m.isActive
}

// Elapsed is how long the current reply has been streaming
func (m StatusModel) Elapsed() time.Duration {
	if !m.isActive {
		return 0
	}
	return m.now().Sub(m.startTime)
}

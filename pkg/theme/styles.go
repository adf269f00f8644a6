package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Base16 color palette with orange, brown, yellow, and pink tones
// Based on Autumn theme with warm earth tones
var (
	// Base colors (backgrounds and text)
	ColorBase00 = lipgloss.Color("#1a1816") // Dark background
	ColorBase01 = lipgloss.Color("#282420") // Lighter background
	ColorBase02 = lipgloss.Color("#36302a") // Selection background
	ColorBase03 = lipgloss.Color("#5c5044") // Comments, invisibles
	ColorBase04 = lipgloss.Color("#83715f") // Dark foreground
	ColorBase05 = lipgloss.Color("#ab937b") // Default foreground
	ColorBase06 = lipgloss.Color("#d3b597") // Light foreground
	ColorBase07 = lipgloss.Color("#f5d7b9") // Lightest foreground

	// Accent colors, also used for the default agent profiles
	ColorRed    = lipgloss.Color("#d95f5f")
	ColorOrange = lipgloss.Color("#eb8755")
	ColorYellow = lipgloss.Color("#f5b761")
	ColorGreen  = lipgloss.Color("#93b56b")
	ColorCyan   = lipgloss.Color("#61afaf")
	ColorBlue   = lipgloss.Color("#6b93b5")
	ColorPurple = lipgloss.Color("#976bb5")

	// UI specific colors
	ColorBorder     = ColorBase03
	ColorFocus      = ColorOrange
	ColorError      = ColorRed
	ColorInfo       = ColorCyan
	ColorMuted      = ColorBase03
	ColorForeground = ColorBase05
	ColorUser       = ColorYellow
)

// Styles defines the Lipgloss styles for the TUI components
type Styles struct {
	// Layout
	Header     lipgloss.Style
	HeaderInfo lipgloss.Style
	Footer     lipgloss.Style

	// Input
	InputBorder      lipgloss.Style
	InputPlaceholder lipgloss.Style
	Attachment       lipgloss.Style

	// Transcript
	UserLabel    lipgloss.Style
	UserMessage  lipgloss.Style
	AgentLabel   lipgloss.Style
	ErrorMessage lipgloss.Style
	Timestamp    lipgloss.Style
	Typing       lipgloss.Style
	Notice       lipgloss.Style
}

// DefaultStyles returns the default Lipgloss styles
func DefaultStyles() *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Foreground(ColorBase07).
			Bold(true).
			Padding(0, 1),

		HeaderInfo: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1),

		InputBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFocus).
			Padding(0, 1),

		InputPlaceholder: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),

		Attachment: lipgloss.NewStyle().
			Foreground(ColorCyan).
			Italic(true),

		UserLabel: lipgloss.NewStyle().
			Foreground(ColorUser).
			Bold(true),

		UserMessage: lipgloss.NewStyle().
			Foreground(ColorBase06),

		AgentLabel: lipgloss.NewStyle().
			Bold(true),

		ErrorMessage: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		Timestamp: lipgloss.NewStyle().
			Foreground(ColorMuted),

		Typing: lipgloss.NewStyle().
			Foreground(ColorFocus).
			Italic(true),

		Notice: lipgloss.NewStyle().
			Foreground(ColorInfo),
	}
}

// Agent returns the label style for an agent color
func (s *Styles) Agent(color lipgloss.Color) lipgloss.Style {
	return s.AgentLabel.Foreground(color)
}

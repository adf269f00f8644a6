package presenter

import (
	"fmt"
	"strings"
	"sync"

	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/logger"
	"github.com/killallgit/realty/pkg/theme"
)

const (
	DefaultLabel     = "Assistant"
	DefaultCodeStyle = "monokai"
	UserLabel        = "You"
)

// Style is how a turn's author is shown
type Style struct {
	Label string
	Color lipgloss.Color
	Known bool
}

// Presenter maps turns to terminal output. It never mutates the store.
type Presenter struct {
	mu        sync.RWMutex
	profiles  *Profiles
	codeStyle string
	styles    *theme.Styles

	// only the renderer for the last width is kept
	renderMu    sync.Mutex
	renderer    *glamour.TermRenderer
	renderWidth int
}

// Option configures a Presenter
type Option func(*Presenter)

// WithCodeStyle selects the chroma style for fenced code
func WithCodeStyle(name string) Option {
	return func(p *Presenter) {
		p.codeStyle = ValidateCodeStyle(name)
	}
}

// WithStyles overrides the theme
func WithStyles(s *theme.Styles) Option {
	return func(p *Presenter) {
		p.styles = s
	}
}

func New(profiles *Profiles, opts ...Option) *Presenter {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	p := &Presenter{
		profiles:  profiles,
		codeStyle: DefaultCodeStyle,
		styles:    theme.DefaultStyles(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ValidateCodeStyle returns name when chroma knows it, otherwise the default
func ValidateCodeStyle(name string) string {
	if name == "" {
		return DefaultCodeStyle
	}
	if _, ok := chromastyles.Registry[name]; ok {
		return name
	}
	logger.Warn("Unknown code style %q, falling back to %s", name, DefaultCodeStyle)
	return DefaultCodeStyle
}

// SetProfiles swaps the lookup table, e.g. after a settings reload
func (p *Presenter) SetProfiles(profiles *Profiles) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles = profiles
}

func (p *Presenter) Profiles() *Profiles {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.profiles
}

func (p *Presenter) Styles() *theme.Styles {
	return p.styles
}

// StyleForAgent resolves an agent name to its label and color
func (p *Presenter) StyleForAgent(name string) Style {
	if profile, ok := p.Profiles().Lookup(name); ok {
		return Style{Label: profile.CanonicalName, Color: profile.Color, Known: true}
	}
	return Style{Label: DefaultLabel, Color: theme.ColorForeground}
}

// StyleFor resolves the author style of a turn
func (p *Presenter) StyleFor(t chat.Turn) Style {
	if t.IsUser() {
		return Style{Label: UserLabel, Color: theme.ColorUser, Known: true}
	}
	return p.StyleForAgent(t.AgentName)
}

// Render draws a whole turn: author line then body
func (p *Presenter) Render(t chat.Turn, width int) string {
	var b strings.Builder
	b.WriteString(p.RenderLabel(t))
	b.WriteString("\n")

	if t.HasImage() {
		b.WriteString(p.styles.Attachment.Render(DescribeImage(t.Image)))
		b.WriteString("\n")
	}

	if body := p.RenderBody(t, width); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderLabel draws the author line
func (p *Presenter) RenderLabel(t chat.Turn) string {
	style := p.StyleFor(t)

	var label string
	if t.IsUser() {
		label = p.styles.UserLabel.Render(style.Label)
	} else {
		label = p.styles.Agent(style.Color).Render(style.Label)
	}

	if !t.Timestamp.IsZero() {
		label += " " + p.styles.Timestamp.Render(t.Timestamp.Format("15:04"))
	}
	return label
}

// RenderBody draws the text of a turn. Agent text is markdown; user text is
// shown literally.
func (p *Presenter) RenderBody(t chat.Turn, width int) string {
	if t.Text == "" {
		return ""
	}

	switch {
	case t.IsUser():
		return p.renderLiteral(t.Text, width, p.styles.UserMessage)
	case t.Failed && t.Text == chat.ErrorTurnText:
		return p.renderLiteral(t.Text, width, p.styles.ErrorMessage)
	}

	rendered, err := p.RenderMarkdown(t.Text, width)
	if err != nil {
		logger.Warn("Markdown render failed for turn %s: %v", t.ID, err)
		return p.renderLiteral(t.Text, width, lipgloss.NewStyle())
	}
	if t.Failed {
		rendered += "\n" + p.styles.ErrorMessage.Render("This reply ended with an error.")
	}
	return rendered
}

func (p *Presenter) renderLiteral(text string, width int, style lipgloss.Style) string {
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(text)
}

// RenderMarkdown renders agent markdown at the given wrap width
func (p *Presenter) RenderMarkdown(text string, width int) (string, error) {
	p.renderMu.Lock()
	r, err := p.rendererFor(width)
	if err != nil {
		p.renderMu.Unlock()
		return "", err
	}
	out, err := r.Render(text)
	p.renderMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}

// rendererFor must be called with renderMu held
func (p *Presenter) rendererFor(width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = 80
	}
	if p.renderer != nil && p.renderWidth == width {
		return p.renderer, nil
	}

	cfg := styles.DarkStyleConfig
	cfg.CodeBlock.Theme = p.codeStyle
	cfg.CodeBlock.Chroma = nil
	var zero uint
	cfg.Document.Margin = &zero

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(cfg),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	p.renderer = r
	p.renderWidth = width
	return r, nil
}

// DescribeImage is the one-line summary shown for an attachment
func DescribeImage(img *chat.Image) string {
	if img == nil {
		return ""
	}
	return fmt.Sprintf("[image: %s, %s, %s]", img.Name, img.ContentType, formatSize(len(img.Data)))
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

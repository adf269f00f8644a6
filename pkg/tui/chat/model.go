package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/presenter"
	"github.com/killallgit/realty/pkg/theme"
	"github.com/killallgit/realty/pkg/tui/chat/status"
)

const (
	inputPlaceholder  = "Ask about a property, a tenancy or an issue..."
	attachPlaceholder = "Path to an image (enter to attach, esc to cancel)"
	defaultWordWrap   = 100
)

// Controller is what the chat view needs from the session controller
type Controller interface {
	Submit(ctx context.Context, text string, image *chat.Image) error
	Cancel() error
	Reset() error
	InFlight() bool
	ActiveAgent() string
	Store() *chat.Store
}

type chatModel struct {
	ctx       context.Context
	ctrl      Controller
	presenter *presenter.Presenter
	styles    *theme.Styles

	viewport  viewport.Model
	textarea  textarea.Model
	statusBar status.StatusModel
	help      help.Model

	turns       []chat.Turn
	attachment  *chat.Image
	attaching   bool
	draft       string
	busy        bool
	notice      string
	numEscPress int

	wordWrap int
	width    int
	height   int
}

// Option configures the chat view
type Option func(*chatModel)

// WithWordWrap caps the width agent and user text is wrapped at
func WithWordWrap(n int) Option {
	return func(m *chatModel) {
		if n > 0 {
			m.wordWrap = n
		}
	}
}

// NewChatModel creates the chat view over ctrl's store
func NewChatModel(ctx context.Context, ctrl Controller, p *presenter.Presenter, opts ...Option) chatModel {
	ta := textarea.New()
	ta.Focus()
	ta.Placeholder = inputPlaceholder
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = keys.Newline

	vp := viewport.New(80, 20)

	if p == nil {
		p = presenter.New(nil)
	}

	m := chatModel{
		ctx:       ctx,
		ctrl:      ctrl,
		presenter: p,
		styles:    p.Styles(),
		viewport:  vp,
		textarea:  ta,
		statusBar: status.NewStatusModel(),
		help:      help.New(),
		turns:     ctrl.Store().All(),
		wordWrap:  defaultWordWrap,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

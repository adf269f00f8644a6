package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/presenter"
)

// ErrNoPrompt is returned when neither a prompt nor an image was given
var ErrNoPrompt = errors.New("prompt cannot be empty in headless mode")

// Controller is the part of the session controller headless mode drives
type Controller interface {
	Submit(ctx context.Context, text string, image *chat.Image) error
	Store() *chat.Store
}

// Options configure a headless run
type Options struct {
	ImagePath string
	// Render prints the finished reply as rendered markdown instead of
	// streaming raw deltas
	Render    bool
	Presenter *presenter.Presenter
	Width     int
	Out       io.Writer
	ErrOut    io.Writer
}

// Run sends one prompt and prints the agent's reply as it streams in
func Run(ctx context.Context, ctrl Controller, prompt string, opts Options) error {
	if strings.TrimSpace(prompt) == "" && opts.ImagePath == "" {
		return ErrNoPrompt
	}

	if err := newRunner(ctrl, opts).run(ctx, prompt); err != nil {
		return fmt.Errorf("failed to execute prompt: %w", err)
	}
	return nil
}

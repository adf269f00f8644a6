package headless

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/logger"
	"github.com/killallgit/realty/pkg/presenter"
	"golang.org/x/term"
)

const defaultWidth = 100

// runner runs a single prompt in headless mode
type runner struct {
	ctrl      Controller
	presenter *presenter.Presenter
	output    *Output
	config    *runConfig
}

// runConfig contains headless runner configuration
type runConfig struct {
	imagePath string
	render    bool
	width     int
}

func newRunner(ctrl Controller, opts Options) *runner {
	p := opts.Presenter
	if p == nil {
		p = presenter.New(nil)
	}

	out, errOut := opts.Out, opts.ErrOut
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	width := opts.Width
	if width <= 0 {
		width = terminalWidth()
	}

	return &runner{
		ctrl:      ctrl,
		presenter: p,
		output:    NewOutput(out, errOut),
		config: &runConfig{
			imagePath: opts.ImagePath,
			render:    opts.Render,
			width:     width,
		},
	}
}

// terminalWidth falls back to the default when stdout is not a terminal
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

func (r *runner) run(ctx context.Context, prompt string) error {
	var image *chat.Image
	if r.config.imagePath != "" {
		img, err := chat.LoadImage(r.config.imagePath)
		if err != nil {
			return fmt.Errorf("failed to attach image: %w", err)
		}
		image = img
	}

	store := r.ctrl.Store()
	handler := newStreamHandler(r.output, r.label, r.config.render)
	store.Subscribe(handler.OnTurn)

	logger.Debug("Headless prompt: %d chars, image=%t", len(prompt), image != nil)
	err := r.ctrl.Submit(ctx, prompt, image)
	handler.finish()

	if err != nil {
		if last, ok := store.Last(); ok && last.Failed && last.Text == chat.ErrorTurnText {
			r.output.Error(last.Text)
		}
		return err
	}

	if r.config.render {
		if last, ok := store.Last(); ok && last.IsAgent() {
			r.output.Print(strings.TrimRight(r.presenter.Render(last, r.config.width), "\n") + "\n")
		}
	}
	return nil
}

func (r *runner) label(agent string) string {
	return "[" + r.presenter.StyleForAgent(agent).Label + "]"
}

package headless

import (
	"fmt"
	"io"

	"github.com/killallgit/realty/pkg/logger"
)

// Output handles console output for headless mode
type Output struct {
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new output handler
func NewOutput(out, errOut io.Writer) *Output {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Output{out: out, errOut: errOut}
}

// Print writes reply text
func (o *Output) Print(s string) {
	fmt.Fprint(o.out, s)
}

// Error prints an error message to stderr and the log
func (o *Output) Error(msg string) {
	logger.Error("%s", msg)
	fmt.Fprintln(o.errOut, msg)
}

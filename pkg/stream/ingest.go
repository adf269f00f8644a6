package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/logger"
)

// DefaultReadBuffer is the chunk size used when none is configured
const DefaultReadBuffer = 4096

// Sink receives the updates for the turn being streamed. *chat.Store
// satisfies it.
type Sink interface {
	UpdateByID(id string, u chat.Update) bool
}

// ReadError is returned when the body fails mid-stream
type ReadError struct {
	Partial string // Text received before the failure
	Err     error
}

func (e *ReadError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream read failed after %d chars: %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream read failed: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Result summarises a finished ingestion
type Result struct {
	Text    string
	Agent   string
	Ended   bool // explicit end frame, as opposed to transport close
	Failed  bool // the backend reported an error frame
	Skipped int
}

// Option configures an Ingestor
type Option func(*Ingestor)

// WithReadBuffer sets the size of each body read
func WithReadBuffer(n int) Option {
	return func(in *Ingestor) {
		if n > 0 {
			in.bufSize = n
		}
	}
}

// WithAgentCallback is invoked whenever a turn's agent is identified
func WithAgentCallback(fn func(string)) Option {
	return func(in *Ingestor) {
		in.onAgent = fn
	}
}

// Ingestor reads a response body and applies its events to a Sink
type Ingestor struct {
	bufSize int
	onAgent func(string)
	log     *logger.ComponentLogger
}

// NewIngestor creates an Ingestor
func NewIngestor(opts ...Option) *Ingestor {
	in := &Ingestor{
		bufSize: DefaultReadBuffer,
		log:     logger.WithComponent("stream"),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest reads body until an end frame, EOF, an error or cancellation.
// On normal completion the turn's streaming flag is cleared exactly once.
// On failure the turn is left as is for the caller to replace.
func (in *Ingestor) Ingest(ctx context.Context, body io.Reader, sink Sink, turnID string) (Result, error) {
	asm := NewAssembler()
	buf := make([]byte, in.bufSize)
	failed := false

	apply := func(events []Event) {
		for _, ev := range events {
			if in.apply(sink, turnID, ev) {
				failed = true
			}
		}
	}

	for !asm.Ended() {
		if err := ctx.Err(); err != nil {
			return in.result(asm, failed), &ReadError{Partial: asm.Text(), Err: err}
		}

		n, err := body.Read(buf)
		if n > 0 {
			apply(asm.Feed(buf[:n]))
		}

		if errors.Is(err, io.EOF) {
			apply(asm.Flush())
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			in.log.Error("stream read failed", "turn", turnID, "error", err)
			return in.result(asm, failed), &ReadError{Partial: asm.Text(), Err: err}
		}
	}

	sink.UpdateByID(turnID, chat.Update{Streaming: chat.Bool(false)})

	res := in.result(asm, failed)
	in.log.Debug("stream complete", "turn", turnID, "chars", len(res.Text), "agent", res.Agent, "explicit_end", res.Ended)
	return res, nil
}

func (in *Ingestor) apply(sink Sink, turnID string, ev Event) (failed bool) {
	switch ev.Kind {
	case EventAgent:
		sink.UpdateByID(turnID, chat.Update{AgentName: ev.Text})
		if in.onAgent != nil {
			in.onAgent(ev.Text)
		}
	case EventDelta:
		sink.UpdateByID(turnID, chat.Update{AppendText: ev.Text})
	case EventFailure:
		in.log.Warn("backend reported an error", "turn", turnID, "error", ev.Text)
		sink.UpdateByID(turnID, chat.Update{
			AppendText: FailureNotice(ev.Text),
			Failed:     chat.Bool(true),
		})
		return true
	}
	return false
}

func (in *Ingestor) result(asm *Assembler, failed bool) Result {
	return Result{
		Text:    asm.Text(),
		Agent:   asm.Agent(),
		Ended:   asm.Ended(),
		Failed:  failed,
		Skipped: asm.Skipped(),
	}
}

// FailureNotice is the text appended to a turn when the backend reports an
// error mid-stream
func FailureNotice(message string) string {
	return "\n\nError: " + message
}

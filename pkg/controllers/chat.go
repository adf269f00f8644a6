package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/killallgit/realty/pkg/api"
	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/logger"
	"github.com/killallgit/realty/pkg/stream"
)

// FallbackReplyText is shown when the non-streaming endpoint answers without text
const FallbackReplyText = "Sorry, I couldn't process that."

var (
	ErrEmptySubmission = errors.New("nothing to send: text and image are both empty")
	ErrStreamInFlight  = errors.New("a reply is still streaming")
	ErrNoStream        = errors.New("no reply is streaming")
)

// Transport is the slice of the backend client the controller needs
type Transport interface {
	OpenStream(ctx context.Context, req api.StreamRequest) (io.ReadCloser, error)
	SendMessage(ctx context.Context, req api.StreamRequest) (*api.Reply, error)
}

// ChatController drives one conversation: it validates submissions, keeps
// the store in step with the backend and turns transport failures into an
// error turn.
type ChatController struct {
	transport Transport
	store     *chat.Store
	ingestor  *stream.Ingestor

	streaming  bool
	readBuffer int

	mu          sync.Mutex
	inFlight    bool
	cancel      context.CancelFunc
	activeAgent string
}

// Option configures a ChatController
type Option func(*ChatController)

// WithStreaming selects the streaming endpoint (default) or the
// non-streaming fallback
func WithStreaming(enabled bool) Option {
	return func(cc *ChatController) {
		cc.streaming = enabled
	}
}

// WithReadBuffer sets the chunk size for reading replies
func WithReadBuffer(n int) Option {
	return func(cc *ChatController) {
		cc.readBuffer = n
	}
}

func NewChatController(transport Transport, store *chat.Store, opts ...Option) *ChatController {
	if store == nil {
		store = chat.NewStore()
	}
	cc := &ChatController{
		transport:  transport,
		store:      store,
		streaming:  true,
		readBuffer: stream.DefaultReadBuffer,
	}
	for _, opt := range opts {
		opt(cc)
	}
	cc.ingestor = stream.NewIngestor(
		stream.WithReadBuffer(cc.readBuffer),
		stream.WithAgentCallback(cc.setActiveAgent),
	)
	return cc
}

func (cc *ChatController) Store() *chat.Store {
	return cc.store
}

// ActiveAgent is the agent most recently identified in any reply
func (cc *ChatController) ActiveAgent() string {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.activeAgent
}

func (cc *ChatController) setActiveAgent(name string) {
	cc.mu.Lock()
	cc.activeAgent = name
	cc.mu.Unlock()

	logger.Debug("Active agent: %s", name)
}

// InFlight reports whether a submission is waiting on the backend
func (cc *ChatController) InFlight() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.inFlight
}

// Submit sends a message using the configured endpoint and blocks until the
// reply is complete, failed or cancelled.
func (cc *ChatController) Submit(ctx context.Context, text string, image *chat.Image) error {
	if cc.streaming {
		return cc.SubmitStream(ctx, text, image)
	}
	return cc.Send(ctx, text, image)
}

// SubmitStream sends a message to the streaming endpoint
func (cc *ChatController) SubmitStream(ctx context.Context, text string, image *chat.Image) error {
	ctx, req, placeholder, err := cc.begin(ctx, text, image)
	if err != nil {
		return err
	}
	defer cc.finish()

	body, err := cc.transport.OpenStream(ctx, req)
	if err != nil {
		if isCancellation(ctx, err) {
			cc.finalizeCancelled(placeholder.ID)
			return context.Canceled
		}
		cc.fail(placeholder.ID, err)
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer body.Close()

	res, err := cc.ingestor.Ingest(ctx, body, cc.store, placeholder.ID)
	if err != nil {
		if isCancellation(ctx, err) {
			cc.finalizeCancelled(placeholder.ID)
			return context.Canceled
		}
		cc.fail(placeholder.ID, err)
		return fmt.Errorf("failed to read stream: %w", err)
	}

	logger.Info("Reply complete: %d chars from %q (skipped %d frames)", len(res.Text), res.Agent, res.Skipped)
	return nil
}

// Send uses the non-streaming endpoint and applies the whole reply at once
func (cc *ChatController) Send(ctx context.Context, text string, image *chat.Image) error {
	ctx, req, placeholder, err := cc.begin(ctx, text, image)
	if err != nil {
		return err
	}
	defer cc.finish()

	reply, err := cc.transport.SendMessage(ctx, req)
	if err != nil {
		if isCancellation(ctx, err) {
			cc.finalizeCancelled(placeholder.ID)
			return context.Canceled
		}
		cc.fail(placeholder.ID, err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	replyText := reply.Text
	if strings.TrimSpace(replyText) == "" {
		replyText = FallbackReplyText
	}
	if reply.Agent != "" {
		cc.setActiveAgent(reply.Agent)
	}

	cc.store.UpdateByID(placeholder.ID, chat.Update{
		AppendText: replyText,
		AgentName:  reply.Agent,
		Streaming:  chat.Bool(false),
	})
	return nil
}

// Cancel stops the reply in flight. Text received so far is kept.
func (cc *ChatController) Cancel() error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.cancel == nil {
		return ErrNoStream
	}
	cc.cancel()
	return nil
}

// Reset clears the conversation unless a reply is in flight. Store
// listeners run without the controller lock held.
func (cc *ChatController) Reset() error {
	cc.mu.Lock()
	if cc.inFlight {
		cc.mu.Unlock()
		return ErrStreamInFlight
	}
	cc.inFlight = true
	cc.activeAgent = ""
	cc.mu.Unlock()

	cc.store.Reset()

	cc.mu.Lock()
	cc.inFlight = false
	cc.mu.Unlock()
	return nil
}

// begin validates the submission, reserves the in-flight slot and appends
// the user turn plus the agent placeholder.
func (cc *ChatController) begin(ctx context.Context, text string, image *chat.Image) (context.Context, api.StreamRequest, chat.Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" && image == nil {
		return nil, api.StreamRequest{}, chat.Turn{}, ErrEmptySubmission
	}

	cc.mu.Lock()
	if _, streaming := cc.store.Streaming(); cc.inFlight || streaming {
		cc.mu.Unlock()
		return nil, api.StreamRequest{}, chat.Turn{}, ErrStreamInFlight
	}
	ctx, cancel := context.WithCancel(ctx)
	cc.inFlight = true
	cc.cancel = cancel
	cc.mu.Unlock()

	req := api.StreamRequest{
		Text:    text,
		History: cc.store.History(),
		Image:   image,
	}

	placeholder := chat.NewAgentPlaceholder()
	cc.store.Append(chat.NewUserTurn(text, image))
	cc.store.Append(placeholder)

	logger.Debug("Submitting %d chars (image=%t, history=%d)", len(text), image != nil, len(req.History))
	return ctx, req, placeholder, nil
}

func (cc *ChatController) finish() {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.cancel != nil {
		cc.cancel()
	}
	cc.cancel = nil
	cc.inFlight = false
}

// fail swaps the placeholder for the error turn
func (cc *ChatController) fail(placeholderID string, err error) {
	logger.Error("Agent reply failed: %v", err)
	cc.store.Remove(placeholderID)
	cc.store.Append(chat.NewErrorTurn())
}

func (cc *ChatController) finalizeCancelled(placeholderID string) {
	t, ok := cc.store.Get(placeholderID)
	if !ok {
		return
	}
	if t.IsEmpty() {
		cc.store.Remove(placeholderID)
	} else {
		cc.store.UpdateByID(placeholderID, chat.Update{Streaming: chat.Bool(false)})
	}
	logger.Info("Reply cancelled after %d chars", len(t.Text))
}

func isCancellation(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)
}

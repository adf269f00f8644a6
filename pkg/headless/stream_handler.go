package headless

import (
	"sync"

	"github.com/killallgit/realty/pkg/chat"
)

// streamHandler prints agent deltas as the store receives them
type streamHandler struct {
	mu      sync.Mutex
	output  *Output
	label   func(agent string) string
	buffer  bool
	printed map[string]int
	labeled map[string]bool
	wrote   bool
}

func newStreamHandler(output *Output, label func(string) string, buffer bool) *streamHandler {
	return &streamHandler{
		output:  output,
		label:   label,
		buffer:  buffer,
		printed: make(map[string]int),
		labeled: make(map[string]bool),
	}
}

// OnTurn is subscribed to the store
func (h *streamHandler) OnTurn(t chat.Turn) {
	if !t.IsAgent() || h.buffer {
		return
	}
	if t.Failed && t.Text == chat.ErrorTurnText {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if t.AgentName != "" && !h.labeled[t.ID] {
		h.labeled[t.ID] = true
		h.output.Print(h.label(t.AgentName) + "\n")
		h.wrote = true
	}

	done := h.printed[t.ID]
	if len(t.Text) <= done {
		return
	}
	h.output.Print(t.Text[done:])
	h.printed[t.ID] = len(t.Text)
	h.wrote = true
}

// finish terminates the last line
func (h *streamHandler) finish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.wrote {
		h.output.Print("\n")
	}
}

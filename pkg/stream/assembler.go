package stream

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/killallgit/realty/pkg/logger"
)

var (
	frameSeparator = []byte("\n\n")
	endPrefix      = []byte("event: end")
	dataPrefix     = []byte("data: ")
)

// Assembler reassembles frames from arbitrarily split chunks. It owns the
// pending bytes plus the text and agent accumulated for a single turn.
type Assembler struct {
	pending []byte
	text    strings.Builder
	agent   string
	ended   bool
	skipped int
}

// NewAssembler returns an empty Assembler
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Feed consumes a chunk and returns the events of every frame it completes.
// Once an end frame has been seen all further input is ignored.
func (a *Assembler) Feed(chunk []byte) []Event {
	if a.ended {
		return nil
	}
	a.pending = append(a.pending, chunk...)

	var events []Event
	for {
		i := bytes.Index(a.pending, frameSeparator)
		if i < 0 {
			break
		}
		frame := a.pending[:i]
		a.pending = a.pending[i+len(frameSeparator):]

		events = a.parseFrame(frame, events)
		if a.ended {
			a.pending = nil
			break
		}
	}

	// keep the tail from pinning a large backing array
	if len(a.pending) == 0 {
		a.pending = nil
	}
	return events
}

// Flush parses whatever is left once the transport has closed, treating it
// as a final frame that lacked its separator.
func (a *Assembler) Flush() []Event {
	if a.ended || len(a.pending) == 0 {
		return nil
	}
	frame := a.pending
	a.pending = nil
	return a.parseFrame(frame, nil)
}

// Text is the accumulated delta text
func (a *Assembler) Text() string {
	return a.text.String()
}

// Agent is the first agent name seen, or empty
func (a *Assembler) Agent() string {
	return a.agent
}

// Ended reports whether an explicit end frame was seen
func (a *Assembler) Ended() bool {
	return a.ended
}

// Skipped counts data frames dropped as malformed
func (a *Assembler) Skipped() int {
	return a.skipped
}

// Pending reports how many bytes are waiting for a separator
func (a *Assembler) Pending() int {
	return len(a.pending)
}

func (a *Assembler) parseFrame(frame []byte, events []Event) []Event {
	for _, line := range bytes.Split(frame, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))

		switch {
		case bytes.HasPrefix(line, endPrefix):
			a.ended = true
			return append(events, End())
		case bytes.HasPrefix(line, dataPrefix):
			events = a.parseData(line[len(dataPrefix):], events)
		}
	}
	return events
}

func (a *Assembler) parseData(data []byte, events []Event) []Event {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		a.skipped++
		logger.WithComponent("stream").Warn("skipping malformed frame", "error", err, "bytes", len(data))
		return events
	}

	if p.Agent != nil && *p.Agent != "" && a.agent == "" {
		a.agent = *p.Agent
		events = append(events, AgentIdentified(a.agent))
	}
	if p.Delta != nil && *p.Delta != "" {
		a.text.WriteString(*p.Delta)
		events = append(events, Delta(*p.Delta))
	}
	if p.Error != nil && *p.Error != "" {
		events = append(events, Failure(*p.Error))
	}
	return events
}

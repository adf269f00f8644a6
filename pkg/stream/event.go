package stream

import "fmt"

// EventKind tags a StreamEvent
type EventKind int

const (
	// EventAgent carries the name of the agent answering the turn
	EventAgent EventKind = iota
	// EventDelta carries text to append to the turn
	EventDelta
	// EventFailure carries an error the backend reported inside the stream
	EventFailure
	// EventEnd marks explicit termination
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventAgent:
		return "agent"
	case EventDelta:
		return "delta"
	case EventFailure:
		return "failure"
	case EventEnd:
		return "end"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one logical update decoded from the stream
type Event struct {
	Kind EventKind
	// Text holds the agent name, delta text or failure message
	Text string
}

func AgentIdentified(name string) Event {
	return Event{Kind: EventAgent, Text: name}
}

func Delta(text string) Event {
	return Event{Kind: EventDelta, Text: text}
}

func Failure(message string) Event {
	return Event{Kind: EventFailure, Text: message}
}

func End() Event {
	return Event{Kind: EventEnd}
}

// payload is the JSON body of a data: line. Pointers distinguish absent
// fields from empty strings.
type payload struct {
	Agent *string `json:"agent"`
	Delta *string `json:"delta"`
	Error *string `json:"error"`
}

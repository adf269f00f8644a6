package chat

import (
	"sync"

	"github.com/killallgit/realty/pkg/logger"
)

// Update is a partial change applied to a turn by UpdateByID
type Update struct {
	// AppendText is applied only while the turn is streaming
	AppendText string
	// AgentName is applied only while the turn has no agent yet
	AgentName string
	Streaming *bool
	Failed    *bool
}

// Bool is a helper for the optional fields of Update
func Bool(v bool) *bool {
	return &v
}

// Listener is notified with the affected turn after every mutation
type Listener func(Turn)

// Store is the ordered, in-memory transcript of the conversation
type Store struct {
	turns     []Turn
	index     map[string]int
	listeners []Listener
	mu        sync.RWMutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		turns: make([]Turn, 0),
		index: make(map[string]int),
	}
}

// Subscribe registers a listener. Listeners run on the mutating goroutine
// after the lock is released.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) notify(t Turn) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(t)
	}
}

// Append adds a turn to the end of the transcript
func (s *Store) Append(t Turn) {
	s.mu.Lock()
	if t.ID == "" {
		t.ID = newID()
	}
	s.index[t.ID] = len(s.turns)
	s.turns = append(s.turns, t)
	s.mu.Unlock()

	logger.Debug("Appended %s turn %s", t.Sender, t.ID)
	s.notify(t)
}

// UpdateByID applies u to the turn with the given id. It reports false and
// leaves the store untouched when no such turn exists.
func (s *Store) UpdateByID(id string, u Update) bool {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		logger.Debug("Ignoring update for unknown turn %s", id)
		return false
	}

	t := &s.turns[i]
	if u.AppendText != "" && t.Streaming {
		t.Text += u.AppendText
	}
	if u.AgentName != "" && t.AgentName == "" {
		t.AgentName = u.AgentName
	}
	if u.Streaming != nil {
		t.Streaming = *u.Streaming
	}
	if u.Failed != nil {
		t.Failed = *u.Failed
	}
	updated := *t
	s.mu.Unlock()

	s.notify(updated)
	return true
}

// Remove deletes the turn with the given id
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}

	removed := s.turns[i]
	s.turns = append(s.turns[:i], s.turns[i+1:]...)
	s.reindex()
	s.mu.Unlock()

	logger.Debug("Removed turn %s", id)
	s.notify(removed)
	return true
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.turns))
	for i, t := range s.turns {
		s.index[t.ID] = i
	}
}

// All returns a copy of the transcript in order
func (s *Store) All() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Turn, len(s.turns))
	copy(result, s.turns)
	return result
}

// Len returns the number of turns
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Get returns the turn with the given id
func (s *Store) Get(id string) (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Turn{}, false
	}
	return s.turns[i], true
}

// Streaming returns the turn currently receiving deltas, if any
func (s *Store) Streaming() (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.turns) - 1; i >= 0; i-- {
		if s.turns[i].Streaming {
			return s.turns[i], true
		}
	}
	return Turn{}, false
}

// Last returns the most recent turn
func (s *Store) Last() (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.turns) == 0 {
		return Turn{}, false
	}
	return s.turns[len(s.turns)-1], true
}

// History builds the backend history from the current transcript
func (s *Store) History() []HistoryEntry {
	return BuildHistory(s.All())
}

// Reset clears the transcript
func (s *Store) Reset() {
	s.mu.Lock()
	s.turns = make([]Turn, 0)
	s.index = make(map[string]int)
	s.mu.Unlock()

	s.notify(Turn{})
}

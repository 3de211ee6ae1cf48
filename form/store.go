package form

import (
	"sync"

	"github.com/reoring/formschema"
)

// State is the mutable form state: the schema tree, the current value and the
// errors of the last validation (nil when not validated or valid).
type State struct {
	Schema *formschema.Node
	Value  any
	Errors formschema.Issues
}

// Listener observes state transitions.
type Listener func(state, prev State)

// Store holds the form state. Implementations must be safe for concurrent use.
type Store interface {
	State() State
	SetState(State)
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn Listener) (unsubscribe func())
}

type memoryStore struct {
	mu        sync.Mutex
	state     State
	nextID    int
	listeners map[int]Listener
}

// NewMemoryStore returns an in-process Store. Listeners run synchronously in
// SetState, outside the store lock, in no particular order.
func NewMemoryStore(initial State) Store {
	return &memoryStore{state: initial, listeners: map[int]Listener{}}
}

func (s *memoryStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *memoryStore) SetState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()
	for _, l := range ls {
		l(next, prev)
	}
}

func (s *memoryStore) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Package appstate holds the client's navigation and session state. State
// changes only by dispatching actions through a pure reducer.
package appstate

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/localnerve/jam-build-learnhub/internal/offline"
)

// mirrorKey is where the state is kept between runs
const mirrorKey = "appstate"

// Selection is the learner's current position in the catalog
type Selection struct {
	Grade     string `json:"grade,omitempty"`
	Level     string `json:"level,omitempty"`
	SubjectID string `json:"subject_id,omitempty"`
	TopicID   string `json:"topic_id,omitempty"`
}

// State is everything the store tracks
type State struct {
	Selection Selection `json:"selection"`
	UserID    string    `json:"user_id,omitempty"`
	Role      string    `json:"role,omitempty"`
}

// SignedIn reports whether a user is signed in
func (s State) SignedIn() bool {
	return s.UserID != ""
}

// Action is a state transition request
type Action interface {
	action()
}

// SelectGrade picks a grade; subject and topic are cleared
type SelectGrade struct{ Grade string }

// SelectLevel picks a level within the grade
type SelectLevel struct{ Level string }

// SelectSubject picks a subject; topic is cleared
type SelectSubject struct{ SubjectID string }

// SelectTopic picks a topic
type SelectTopic struct{ TopicID string }

// ClearSelection resets the selection
type ClearSelection struct{}

// SignIn records the signed-in user
type SignIn struct{ UserID, Role string }

// SignOut forgets the user; the selection is kept
type SignOut struct{}

func (SelectGrade) action()    {}
func (SelectLevel) action()    {}
func (SelectSubject) action()  {}
func (SelectTopic) action()    {}
func (ClearSelection) action() {}
func (SignIn) action()         {}
func (SignOut) action()        {}

// Reduce returns the state after applying a. Unknown actions leave s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SelectGrade:
		if a.Grade != s.Selection.Grade {
			s.Selection = Selection{Grade: a.Grade, Level: s.Selection.Level}
		}
	case SelectLevel:
		s.Selection.Level = a.Level
	case SelectSubject:
		if a.SubjectID != s.Selection.SubjectID {
			s.Selection.SubjectID = a.SubjectID
			s.Selection.TopicID = ""
		}
	case SelectTopic:
		s.Selection.TopicID = a.TopicID
	case ClearSelection:
		s.Selection = Selection{}
	case SignIn:
		s.UserID = a.UserID
		s.Role = a.Role
	case SignOut:
		s.UserID = ""
		s.Role = ""
	}
	return s
}

// Store serializes dispatches and notifies subscribers after each one
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// NewStore creates a store starting at initial
func NewStore(initial State) *Store {
	return &Store{state: initial, listeners: map[int]func(State){}}
}

// State returns the current state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies actions in order and returns the resulting state
func (s *Store) Dispatch(actions ...Action) State {
	s.mu.Lock()
	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}
	state := s.state
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
	return state
}

// Subscribe registers fn to run after every dispatch. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Restore loads the last saved state from m, or the zero state
func Restore(ctx context.Context, m offline.Mirror) State {
	raw, ok, err := m.Get(ctx, mirrorKey)
	if err != nil {
		log.Printf("Failed to read saved state: %v", err)
		return State{}
	}
	if !ok {
		return State{}
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		log.Printf("Discarding undecodable saved state: %v", err)
		return State{}
	}
	return state
}

// Save writes state to m
func Save(ctx context.Context, m offline.Mirror, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return m.Put(ctx, mirrorKey, raw)
}

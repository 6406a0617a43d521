package state

import (
	"sync"

	"github.com/calder-dev/tidechat/internal/log"
)

// Dispatcher is the write side of the store. The chat service depends on
// this interface so tests can record the intent sequence directly.
type Dispatcher interface {
	Dispatch(Action)
}

// Store serializes dispatches and publishes each resulting snapshot.
// All coordination happens through the single ordered stream of actions;
// the reducer itself needs no locking.
type Store struct {
	mu       sync.Mutex
	state    State
	onChange func(State)
	logger   log.Logger
}

// NewStore creates a store seeded with initial. onChange, when non-nil,
// is invoked with every new snapshot while the dispatch lock is held, so
// subscribers observe snapshots in dispatch order.
func NewStore(initial State, onChange func(State), logger log.Logger) *Store {
	return &Store{state: initial, onChange: onChange, logger: logger}
}

// Dispatch folds one action into the state.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, a)
	if s.logger != nil {
		s.logger.Debug("dispatched", "action", actionName(a))
	}
	if s.onChange != nil {
		s.onChange(s.state)
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func actionName(a Action) string {
	switch a.(type) {
	case AuthResolved:
		return "AuthResolved"
	case AuthFailed:
		return "AuthFailed"
	case AuthExpired:
		return "AuthExpired"
	case MessageSent:
		return "MessageSent"
	case AssistantAdded:
		return "AssistantAdded"
	case StreamingStarted:
		return "StreamingStarted"
	case ConversationStarted:
		return "ConversationStarted"
	case StreamChunk:
		return "StreamChunk"
	case StreamAnnotations:
		return "StreamAnnotations"
	case ApprovalRequired:
		return "ApprovalRequired"
	case StreamCompleted:
		return "StreamCompleted"
	case StreamCancelled:
		return "StreamCancelled"
	case ChatFailed:
		return "ChatFailed"
	case ChatCleared:
		return "ChatCleared"
	case ErrorCleared:
		return "ErrorCleared"
	}
	return "unknown"
}

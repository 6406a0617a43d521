// Package state holds the single application state snapshot and the pure
// reducer that advances it. The snapshot is a value type replaced
// wholesale on every dispatch; rendering code never observes a partially
// applied transition.
package state

import "github.com/calder-dev/tidechat/internal/models"

// AuthStatus is the authentication phase of the session.
type AuthStatus string

const (
	AuthInitializing    AuthStatus = "initializing"
	AuthAuthenticated   AuthStatus = "authenticated"
	AuthUnauthenticated AuthStatus = "unauthenticated"
	AuthError           AuthStatus = "error"
)

// ChatStatus is the chat lifecycle phase.
type ChatStatus string

const (
	ChatIdle      ChatStatus = "idle"
	ChatSending   ChatStatus = "sending"
	ChatStreaming ChatStatus = "streaming"
	ChatError     ChatStatus = "error"
)

// AuthState tracks the session identity.
type AuthState struct {
	Status AuthStatus
	User   *models.User
	Error  string
}

// ChatState tracks the conversation.
//
// StreamingMessageID identifies the one assistant message that is the
// live target of chunk and annotation events; when empty, those events
// are no-ops. ConversationID, once set, is only cleared by a full chat
// reset. LastResponseID is the continuation token for the next turn.
type ChatState struct {
	Status             ChatStatus
	Messages           []models.Message
	ConversationID     string
	LastResponseID     string
	Err                *models.ChatError
	StreamingMessageID string
}

// UIState tracks rendering concerns derived from the chat lifecycle.
type UIState struct {
	ChatInputEnabled bool
}

// State is the immutable application snapshot.
type State struct {
	Auth AuthState
	Chat ChatState
	UI   UIState
}

// Initial returns the state at application start.
func Initial() State {
	return State{
		Auth: AuthState{Status: AuthInitializing},
		Chat: ChatState{Status: ChatIdle},
		UI:   UIState{ChatInputEnabled: true},
	}
}

// PendingApproval returns the approval request awaiting a decision, or
// nil. An approval is pending while its message is the last entry and
// input is still frozen.
func (s State) PendingApproval() *models.ApprovalRequest {
	if s.UI.ChatInputEnabled || len(s.Chat.Messages) == 0 {
		return nil
	}
	last := s.Chat.Messages[len(s.Chat.Messages)-1]
	if last.Role != models.RoleApproval {
		return nil
	}
	return last.Approval
}

package state

import "github.com/calder-dev/tidechat/internal/models"

// Action is the closed set of state-update intents. The reducer switches
// over the concrete types; anything it does not recognize leaves the
// state untouched.
type Action interface {
	isAction()
}

// AuthResolved reports a successful identity resolution.
type AuthResolved struct {
	User *models.User
}

// AuthFailed reports that no usable identity is available.
type AuthFailed struct {
	Reason string
}

// AuthExpired reports that the bearer token stopped being accepted
// mid-session. External UI reacts by triggering re-authentication.
type AuthExpired struct{}

// MessageSent appends the fully formed user message and marks the
// request as in flight.
type MessageSent struct {
	Message models.Message
}

// AssistantAdded appends the empty assistant placeholder that the
// upcoming stream will fill.
type AssistantAdded struct {
	Message models.Message
}

// StreamingStarted marks the placeholder as the live chunk target and
// freezes input.
type StreamingStarted struct {
	MessageID string
}

// ConversationStarted records the conversation id discovered on the
// stream.
type ConversationStarted struct {
	ConversationID string
}

// StreamChunk appends a text delta to the identified message.
type StreamChunk struct {
	MessageID string
	Content   string
}

// StreamAnnotations appends citations to the identified message.
type StreamAnnotations struct {
	MessageID   string
	Annotations []models.Annotation
}

// ApprovalRequired appends a synthesized approval message and freezes
// input until the decision is dispatched.
type ApprovalRequired struct {
	Message models.Message
}

// StreamCompleted patches the finished message with usage and records
// the continuation token.
type StreamCompleted struct {
	MessageID  string
	Usage      models.Usage
	ResponseID string
}

// StreamCancelled ends the active stream without an error.
type StreamCancelled struct{}

// ChatFailed surfaces a structured chat error.
type ChatFailed struct {
	Err *models.ChatError
}

// ChatCleared resets the chat substate to its initial shape. Auth is
// untouched.
type ChatCleared struct{}

// ErrorCleared drops the recorded chat error.
type ErrorCleared struct{}

func (AuthResolved) isAction()        {}
func (AuthFailed) isAction()          {}
func (AuthExpired) isAction()         {}
func (MessageSent) isAction()         {}
func (AssistantAdded) isAction()      {}
func (StreamingStarted) isAction()    {}
func (ConversationStarted) isAction() {}
func (StreamChunk) isAction()         {}
func (StreamAnnotations) isAction()   {}
func (ApprovalRequired) isAction()    {}
func (StreamCompleted) isAction()     {}
func (StreamCancelled) isAction()     {}
func (ChatFailed) isAction()          {}
func (ChatCleared) isAction()         {}
func (ErrorCleared) isAction()        {}

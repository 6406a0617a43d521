package state

import "github.com/calder-dev/tidechat/internal/models"

// Reduce maps (state, action) to the next state. It never mutates its
// input: transitions that touch the message list operate on a fresh
// copy, and no-op transitions hand the input back as-is, backing array
// included. Unrecognized actions fall through to the input state; this
// fallback is deliberate, late events after a reset must not fault.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AuthResolved:
		s.Auth = AuthState{Status: AuthAuthenticated, User: a.User}
		return s

	case AuthFailed:
		s.Auth = AuthState{Status: AuthUnauthenticated, Error: a.Reason}
		return s

	case AuthExpired:
		s.Auth = AuthState{Status: AuthUnauthenticated, Error: "session expired"}
		return s

	case MessageSent:
		s.Chat.Messages = appendMessage(s.Chat.Messages, a.Message)
		s.Chat.Status = ChatSending
		s.Chat.Err = nil
		s.UI.ChatInputEnabled = false
		return s

	case AssistantAdded:
		s.Chat.Messages = appendMessage(s.Chat.Messages, a.Message)
		return s

	case StreamingStarted:
		s.Chat.Status = ChatStreaming
		s.Chat.StreamingMessageID = a.MessageID
		s.UI.ChatInputEnabled = false
		return s

	case ConversationStarted:
		// First write wins; the id survives until an explicit reset.
		if s.Chat.ConversationID == "" {
			s.Chat.ConversationID = a.ConversationID
		}
		return s

	case StreamChunk:
		idx := indexOf(s.Chat.Messages, a.MessageID)
		if idx < 0 {
			return s
		}
		s.Chat.Messages = patchMessage(s.Chat.Messages, idx, func(m *models.Message) {
			m.Content += a.Content
		})
		return s

	case StreamAnnotations:
		idx := indexOf(s.Chat.Messages, a.MessageID)
		if idx < 0 {
			return s
		}
		s.Chat.Messages = patchMessage(s.Chat.Messages, idx, func(m *models.Message) {
			anns := make([]models.Annotation, 0, len(m.Annotations)+len(a.Annotations))
			anns = append(anns, m.Annotations...)
			anns = append(anns, a.Annotations...)
			m.Annotations = anns
		})
		return s

	case ApprovalRequired:
		s.Chat.Messages = appendMessage(s.Chat.Messages, a.Message)
		s.Chat.Status = ChatIdle
		s.Chat.StreamingMessageID = ""
		// Overrides any other pending enable until the decision is sent.
		s.UI.ChatInputEnabled = false
		return s

	case StreamCompleted:
		if idx := indexOf(s.Chat.Messages, a.MessageID); idx >= 0 {
			usage := a.Usage
			s.Chat.Messages = patchMessage(s.Chat.Messages, idx, func(m *models.Message) {
				m.Usage = &usage
			})
		}
		if a.ResponseID != "" {
			s.Chat.LastResponseID = a.ResponseID
		}
		s.Chat.Status = ChatIdle
		s.Chat.StreamingMessageID = ""
		s.UI.ChatInputEnabled = s.PendingApproval() == nil
		return s

	case StreamCancelled:
		s.Chat.Status = ChatIdle
		s.Chat.StreamingMessageID = ""
		s.UI.ChatInputEnabled = true
		return s

	case ChatFailed:
		s.Chat.Status = ChatError
		s.Chat.Err = a.Err
		s.Chat.StreamingMessageID = ""
		s.UI.ChatInputEnabled = a.Err != nil && a.Err.Recoverable
		return s

	case ChatCleared:
		s.Chat = ChatState{Status: ChatIdle}
		s.UI.ChatInputEnabled = true
		return s

	case ErrorCleared:
		s.Chat.Err = nil
		if s.Chat.Status == ChatError {
			s.Chat.Status = ChatIdle
		}
		// A clear racing a retried turn must not unfreeze input while
		// that turn is already sending or streaming.
		if s.Chat.Status == ChatIdle {
			s.UI.ChatInputEnabled = s.PendingApproval() == nil
		}
		return s
	}

	return s
}

func indexOf(msgs []models.Message, id string) int {
	for i := range msgs {
		if msgs[i].ID == id {
			return i
		}
	}
	return -1
}

func appendMessage(msgs []models.Message, m models.Message) []models.Message {
	out := make([]models.Message, 0, len(msgs)+1)
	out = append(out, msgs...)
	return append(out, m)
}

// patchMessage copies the slice and applies fn to the copy's element, so
// callers holding the previous snapshot never see the edit.
func patchMessage(msgs []models.Message, idx int, fn func(*models.Message)) []models.Message {
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	fn(&out[idx])
	return out
}

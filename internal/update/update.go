// Package update contains the TUI view model and its message handlers.
// All chat semantics live behind the event bus; handlers here only
// manage local UI concerns and forward intents.
package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/calder-dev/tidechat/internal/attach"
	"github.com/calder-dev/tidechat/internal/chat"
	"github.com/calder-dev/tidechat/internal/eventbus"
	"github.com/calder-dev/tidechat/internal/state"
)

// ViewModel is the UI-local state: the latest core snapshot plus purely
// presentational fields.
type ViewModel struct {
	State        state.State
	Input        string
	Status       string
	Width        int
	Height       int
	LoadingDots  int
	PendingFiles []attach.File
}

// CoreEventMsg wraps bus events for bubbletea.
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// TickMsg drives the streaming-dots animation.
type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Handle routes one bubbletea message. svc is needed only for stream
// cancellation, which must preempt a turn instead of queueing behind it.
func Handle(vm *ViewModel, msg tea.Msg, bus *eventbus.Bus, svc *chat.Service) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKey(vm, msg, bus, svc)
	case tea.WindowSizeMsg:
		vm.Width = msg.Width
		vm.Height = msg.Height
		return nil
	case TickMsg:
		return handleTick(vm)
	case CoreEventMsg:
		return HandleCoreEvent(vm, msg)
	}
	return nil
}

func handleTick(vm *ViewModel) tea.Cmd {
	if vm.State.Chat.Status == state.ChatStreaming || vm.State.Chat.Status == state.ChatSending {
		vm.LoadingDots = (vm.LoadingDots + 1) % 4
	}
	return TickCmd()
}

// HandleCoreEvent folds a core snapshot into the view model.
func HandleCoreEvent(vm *ViewModel, msg CoreEventMsg) tea.Cmd {
	switch event := msg.Event.(type) {
	case eventbus.StateUpdateEvent:
		vm.State = event.State
		vm.Status = deriveStatus(event.State)
	}
	return nil
}

func deriveStatus(s state.State) string {
	switch {
	case s.Chat.Err != nil:
		status := "Error: " + s.Chat.Err.Message
		if s.Chat.Err.Retry != nil {
			status += "  [r] retry"
		}
		return status
	case s.PendingApproval() != nil:
		return "Tool approval required  [y] approve [n] reject"
	case s.Chat.Status == state.ChatStreaming:
		return "Streaming"
	case s.Chat.Status == state.ChatSending:
		return "Sending"
	case s.Auth.Status == state.AuthAuthenticated && s.Auth.User != nil && s.Auth.User.Name != "":
		return "Ready · " + s.Auth.User.Name
	case s.Auth.Status == state.AuthUnauthenticated:
		return "Not signed in"
	default:
		return "Ready"
	}
}

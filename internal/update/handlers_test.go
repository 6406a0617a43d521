package update

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-dev/tidechat/internal/eventbus"
	"github.com/calder-dev/tidechat/internal/log"
	"github.com/calder-dev/tidechat/internal/models"
	"github.com/calder-dev/tidechat/internal/state"
)

func newVM() (*ViewModel, *eventbus.Bus) {
	return &ViewModel{State: state.Initial()}, eventbus.NewBus(log.NewNop())
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// nextUIEvent drains one queued UI intent, failing if none was sent.
func nextUIEvent(t *testing.T, bus *eventbus.Bus) eventbus.UIEvent {
	t.Helper()
	select {
	case ev := <-bus.UIToCore():
		return ev
	default:
		t.Fatal("no UI event queued")
		return nil
	}
}

func noUIEvent(t *testing.T, bus *eventbus.Bus) {
	t.Helper()
	select {
	case ev := <-bus.UIToCore():
		t.Fatalf("unexpected UI event %T", ev)
	default:
	}
}

func TestHandleKey_TypingBuildsInput(t *testing.T) {
	vm, bus := newVM()

	for _, r := range "hi there" {
		handleKey(vm, runeKey(r), bus, nil)
	}

	assert.Equal(t, "hi there", vm.Input)
}

func TestHandleKey_Backspace(t *testing.T) {
	vm, bus := newVM()
	vm.Input = "hiya"

	handleKey(vm, key(tea.KeyBackspace), bus, nil)

	assert.Equal(t, "hiy", vm.Input)

	vm.Input = ""
	handleKey(vm, key(tea.KeyBackspace), bus, nil)
	assert.Empty(t, vm.Input)
}

func TestHandleKey_EnterSendsMessage(t *testing.T) {
	vm, bus := newVM()
	vm.Input = "  hello  "

	handleKey(vm, key(tea.KeyEnter), bus, nil)

	ev := nextUIEvent(t, bus)
	send, ok := ev.(eventbus.SendMessageEvent)
	require.True(t, ok)
	assert.Equal(t, "hello", send.Text)
	assert.Empty(t, vm.Input)
}

func TestHandleKey_EnterOnEmptyInputDoesNothing(t *testing.T) {
	vm, bus := newVM()
	vm.Input = "   "

	handleKey(vm, key(tea.KeyEnter), bus, nil)

	noUIEvent(t, bus)
}

func TestHandleKey_EnterRefusedWhileInputDisabled(t *testing.T) {
	vm, bus := newVM()
	vm.State.UI.ChatInputEnabled = false
	vm.Input = "hello"

	handleKey(vm, key(tea.KeyEnter), bus, nil)

	noUIEvent(t, bus)
	assert.Contains(t, vm.Status, "disabled")
}

func TestHandleKey_AttachStagesFile(t *testing.T) {
	vm, bus := newVM()
	vm.Input = "/attach /tmp/chart.png"

	handleKey(vm, key(tea.KeyEnter), bus, nil)

	noUIEvent(t, bus)
	require.Len(t, vm.PendingFiles, 1)
	assert.Equal(t, "/tmp/chart.png", vm.PendingFiles[0].Path)
	assert.Empty(t, vm.Input)

	// The staged file rides with the next message and is then consumed.
	vm.Input = "see attached"
	handleKey(vm, key(tea.KeyEnter), bus, nil)

	send := nextUIEvent(t, bus).(eventbus.SendMessageEvent)
	require.Len(t, send.Files, 1)
	assert.Equal(t, "/tmp/chart.png", send.Files[0].Path)
	assert.Empty(t, vm.PendingFiles)
}

func TestHandleKey_ClearChat(t *testing.T) {
	vm, bus := newVM()

	handleKey(vm, key(tea.KeyCtrlL), bus, nil)

	_, ok := nextUIEvent(t, bus).(eventbus.ClearChatEvent)
	assert.True(t, ok)
}

func TestHandleKey_CtrlCQuits(t *testing.T) {
	vm, bus := newVM()

	cmd := handleKey(vm, key(tea.KeyCtrlC), bus, nil)

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func approvalState() state.State {
	s := state.Initial()
	s = state.Reduce(s, state.ApprovalRequired{Message: models.Message{
		ID:       "ap-1",
		Role:     models.RoleApproval,
		Approval: &models.ApprovalRequest{ID: "apr-1", ToolName: "search"},
	}})
	return s
}

func TestHandleKey_PendingApprovalOwnsKeyboard(t *testing.T) {
	vm, bus := newVM()
	vm.State = approvalState()

	// Ordinary typing is ignored while the decision is pending.
	handleKey(vm, runeKey('x'), bus, nil)
	assert.Empty(t, vm.Input)

	handleKey(vm, runeKey('y'), bus, nil)
	ev := nextUIEvent(t, bus)
	resp, ok := ev.(eventbus.ApprovalResponseEvent)
	require.True(t, ok)
	assert.Equal(t, "apr-1", resp.RequestID)
	assert.True(t, resp.Approved)
}

func TestHandleKey_PendingApprovalRejection(t *testing.T) {
	vm, bus := newVM()
	vm.State = approvalState()

	handleKey(vm, runeKey('n'), bus, nil)

	resp := nextUIEvent(t, bus).(eventbus.ApprovalResponseEvent)
	assert.False(t, resp.Approved)
}

func TestHandleKey_RetryWithoutErrorTypesR(t *testing.T) {
	vm, bus := newVM()

	handleKey(vm, runeKey('r'), bus, nil)

	noUIEvent(t, bus)
	assert.Equal(t, "r", vm.Input)
}

func TestHandleKey_RetryClearsErrorAndReruns(t *testing.T) {
	vm, bus := newVM()
	ran := make(chan struct{})
	vm.State.Chat.Err = &models.ChatError{
		Kind:        models.ErrKindStream,
		Message:     "dropped",
		Recoverable: true,
		Retry:       func() { close(ran) },
	}

	handleKey(vm, runeKey('r'), bus, nil)

	_, ok := nextUIEvent(t, bus).(eventbus.ClearErrorEvent)
	require.True(t, ok)
	<-ran
	assert.Empty(t, vm.Input, "retry key must not be typed")
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*state.State)
		want string
	}{
		{
			name: "initial",
			mut:  func(*state.State) {},
			want: "Ready",
		},
		{
			name: "signed in",
			mut: func(s *state.State) {
				s.Auth = state.AuthState{Status: state.AuthAuthenticated, User: &models.User{Name: "Ada"}}
			},
			want: "Ready · Ada",
		},
		{
			name: "not signed in",
			mut: func(s *state.State) {
				s.Auth.Status = state.AuthUnauthenticated
			},
			want: "Not signed in",
		},
		{
			name: "streaming",
			mut: func(s *state.State) {
				s.Chat.Status = state.ChatStreaming
			},
			want: "Streaming",
		},
		{
			name: "recoverable error shows retry hint",
			mut: func(s *state.State) {
				s.Chat.Err = &models.ChatError{Message: "dropped", Retry: func() {}}
			},
			want: "Error: dropped  [r] retry",
		},
		{
			name: "terminal error without hint",
			mut: func(s *state.State) {
				s.Chat.Err = &models.ChatError{Message: "no token"}
			},
			want: "Error: no token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.Initial()
			tt.mut(&s)
			assert.Equal(t, tt.want, deriveStatus(s))
		})
	}
}

func TestDeriveStatus_PendingApproval(t *testing.T) {
	got := deriveStatus(approvalState())

	assert.Contains(t, got, "approval")
	assert.Contains(t, got, "[y]")
}

func TestHandle_WindowSize(t *testing.T) {
	vm, bus := newVM()

	Handle(vm, tea.WindowSizeMsg{Width: 120, Height: 40}, bus, nil)

	assert.Equal(t, 120, vm.Width)
	assert.Equal(t, 40, vm.Height)
}

func TestHandle_TickAnimatesOnlyWhileBusy(t *testing.T) {
	vm, bus := newVM()

	Handle(vm, TickMsg{}, bus, nil)
	assert.Zero(t, vm.LoadingDots, "idle chat does not animate")

	vm.State.Chat.Status = state.ChatStreaming
	Handle(vm, TickMsg{}, bus, nil)
	Handle(vm, TickMsg{}, bus, nil)
	assert.Equal(t, 2, vm.LoadingDots)
}

func TestHandleCoreEvent_StateUpdate(t *testing.T) {
	vm, _ := newVM()
	s := state.Reduce(state.Initial(), state.AuthResolved{User: &models.User{Name: "Ada"}})

	HandleCoreEvent(vm, CoreEventMsg{Event: eventbus.StateUpdateEvent{State: s}})

	assert.Equal(t, state.AuthAuthenticated, vm.State.Auth.Status)
	assert.Equal(t, "Ready · Ada", vm.Status)
}

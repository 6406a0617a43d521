package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/calder-dev/tidechat/internal/attach"
	"github.com/calder-dev/tidechat/internal/chat"
	"github.com/calder-dev/tidechat/internal/eventbus"
	"github.com/calder-dev/tidechat/internal/state"
)

func handleKey(vm *ViewModel, keyMsg tea.KeyMsg, bus *eventbus.Bus, svc *chat.Service) tea.Cmd {
	// A pending approval owns the keyboard until decided.
	if req := vm.State.PendingApproval(); req != nil {
		switch keyMsg.String() {
		case "y", "Y":
			sendToCore(vm, bus, eventbus.ApprovalResponseEvent{RequestID: req.ID, Approved: true})
			return nil
		case "n", "N":
			sendToCore(vm, bus, eventbus.ApprovalResponseEvent{RequestID: req.ID, Approved: false})
			return nil
		case "ctrl+c":
			return tea.Quit
		}
		return nil
	}

	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit

	case "esc":
		// Direct call: a cancel routed through the bus would queue
		// behind the very turn it is meant to interrupt.
		svc.CancelStream()
		return nil

	case "ctrl+l":
		sendToCore(vm, bus, eventbus.ClearChatEvent{})
		return nil

	case "r":
		if vm.State.Chat.Err != nil && vm.State.Chat.Err.Retry != nil {
			retry := vm.State.Chat.Err.Retry
			sendToCore(vm, bus, eventbus.ClearErrorEvent{})
			// The retry re-runs a whole turn; keep it off the UI loop.
			go retry()
			return nil
		}
		typeKey(vm, keyMsg)
		return nil

	case "enter":
		return handleEnter(vm, bus)

	case "backspace":
		if len(vm.Input) > 0 {
			vm.Input = vm.Input[:len(vm.Input)-1]
		}
		return nil

	default:
		typeKey(vm, keyMsg)
		return nil
	}
}

func handleEnter(vm *ViewModel, bus *eventbus.Bus) tea.Cmd {
	text := strings.TrimSpace(vm.Input)
	if text == "" {
		return nil
	}

	// "/attach <path>" stages a file for the next message.
	if path, ok := strings.CutPrefix(text, "/attach "); ok {
		vm.PendingFiles = append(vm.PendingFiles, attach.File{Path: strings.TrimSpace(path)})
		vm.Input = ""
		vm.Status = "Attached " + strings.TrimSpace(path)
		return nil
	}

	if !vm.State.UI.ChatInputEnabled {
		vm.Status = "Input disabled while a turn is in progress"
		return nil
	}

	files := vm.PendingFiles
	vm.PendingFiles = nil
	sendToCore(vm, bus, eventbus.SendMessageEvent{Text: text, Files: files})
	vm.Input = ""
	return nil
}

func typeKey(vm *ViewModel, keyMsg tea.KeyMsg) {
	if !vm.State.UI.ChatInputEnabled && vm.State.Chat.Status != state.ChatIdle {
		return
	}
	if s := keyMsg.String(); len(s) == 1 {
		vm.Input += s
	} else if keyMsg.Type == tea.KeySpace {
		vm.Input += " "
	}
}

func sendToCore(vm *ViewModel, bus *eventbus.Bus, event eventbus.UIEvent) {
	if err := bus.SendToCore(event); err != nil {
		vm.Status = "Busy, try again: " + err.Error()
	}
}

package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/calder-dev/tidechat/internal/chat"
	"github.com/calder-dev/tidechat/internal/dispatcher"
	"github.com/calder-dev/tidechat/internal/update"
	"github.com/calder-dev/tidechat/ui/components"
)

// Model is the bubbletea root model.
type Model struct {
	vm      update.ViewModel
	bridge  *dispatcher.Bridge
	service *chat.Service
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		m.bridge.ListenForCoreEvents(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.vm, coreEvent)
		return m, tea.Batch(cmd, m.bridge.ListenForCoreEvents())
	}

	cmd := update.Handle(&m.vm, msg, m.bridge.Bus(), m.service)
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(components.RenderMessages(m.vm.State.Chat.Messages, m.vm.State.Chat.StreamingMessageID))
	b.WriteString(components.RenderInput(m.vm.Input, m.vm.State.UI.ChatInputEnabled, m.vm.Width))
	b.WriteString("\n")

	streaming := m.vm.State.Chat.StreamingMessageID != ""
	b.WriteString(components.RenderStatus(m.vm.Status, m.vm.State.Chat.Err != nil, streaming, m.vm.LoadingDots, m.vm.Width))

	return b.String()
}

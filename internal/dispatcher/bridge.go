// Package dispatcher bridges the event bus into the bubbletea runtime.
package dispatcher

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/calder-dev/tidechat/internal/eventbus"
	"github.com/calder-dev/tidechat/internal/update"
)

// Bridge adapts bus delivery to bubbletea's command model.
type Bridge struct {
	bus *eventbus.Bus
}

func NewBridge(bus *eventbus.Bus) *Bridge {
	return &Bridge{bus: bus}
}

// ListenForCoreEvents returns a command that blocks until the next core
// event arrives. The model re-issues it after each delivery.
func (b *Bridge) ListenForCoreEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-b.bus.CoreToUI()
		if !ok {
			return nil
		}
		return update.CoreEventMsg{Event: event}
	}
}

// Bus exposes the underlying bus for UI-to-core sends.
func (b *Bridge) Bus() *eventbus.Bus {
	return b.bus
}

package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-dev/tidechat/internal/log"
	"github.com/calder-dev/tidechat/internal/state"
)

func TestBus_RoundTrip(t *testing.T) {
	bus := NewBus(log.NewNop())

	require.NoError(t, bus.SendToCore(SendMessageEvent{Text: "hi"}))
	require.NoError(t, bus.SendToUI(StateUpdateEvent{State: state.Initial()}))

	ui := <-bus.UIToCore()
	send, ok := ui.(SendMessageEvent)
	require.True(t, ok)
	assert.Equal(t, "hi", send.Text)

	core := <-bus.CoreToUI()
	update, ok := core.(StateUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, state.AuthInitializing, update.State.Auth.Status)
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := NewBus(log.NewNop())

	var err error
	for i := 0; i < 200; i++ {
		if err = bus.SendToUI(StateUpdateEvent{}); err != nil {
			break
		}
	}

	require.ErrorIs(t, err, ErrBusFull)

	// The receiver still drains everything that was accepted.
	drained := 0
	for {
		select {
		case <-bus.CoreToUI():
			drained++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 64, drained)
}

func TestBus_CloseEndsReceivers(t *testing.T) {
	bus := NewBus(log.NewNop())
	bus.Close()

	_, ok := <-bus.UIToCore()
	assert.False(t, ok)
	_, ok2 := <-bus.CoreToUI()
	assert.False(t, ok2)
}

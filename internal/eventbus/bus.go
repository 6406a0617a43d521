// Package eventbus carries the typed events between the TUI and the
// chat core: user intents travel up, state snapshots travel down.
// Stream cancellation deliberately does not ride the bus — a queued
// cancel could never preempt the turn it targets, so the UI calls the
// service directly for that.
package eventbus

import (
	"errors"

	"github.com/calder-dev/tidechat/internal/attach"
	"github.com/calder-dev/tidechat/internal/log"
	"github.com/calder-dev/tidechat/internal/state"
)

// UIEvent is an event sent from the UI to the core.
type UIEvent interface {
	uiEvent()
}

// CoreEvent is an event sent from the core to the UI.
type CoreEvent interface {
	coreEvent()
}

// SendMessageEvent asks the core to start a new turn.
type SendMessageEvent struct {
	Text  string
	Files []attach.File
}

// ApprovalResponseEvent resolves a pending tool-approval request.
type ApprovalResponseEvent struct {
	RequestID string
	Approved  bool
}

// ClearChatEvent resets the conversation.
type ClearChatEvent struct{}

// ClearErrorEvent drops the recorded chat error.
type ClearErrorEvent struct{}

// StateUpdateEvent pushes a new state snapshot to the UI.
type StateUpdateEvent struct {
	State state.State
}

func (SendMessageEvent) uiEvent()      {}
func (ApprovalResponseEvent) uiEvent() {}
func (ClearChatEvent) uiEvent()        {}
func (ClearErrorEvent) uiEvent()       {}
func (StateUpdateEvent) coreEvent()    {}

// ErrBusFull is returned when a channel's buffer is exhausted. Events
// are dropped rather than blocking either side.
var ErrBusFull = errors.New("event bus channel full")

// Bus is the buffered channel pair between UI and core.
type Bus struct {
	uiToCore chan UIEvent
	coreToUI chan CoreEvent
	logger   log.Logger
}

// NewBus creates a bus. The buffers absorb bursts of snapshot pushes
// during fast streams.
func NewBus(logger log.Logger) *Bus {
	return &Bus{
		uiToCore: make(chan UIEvent, 64),
		coreToUI: make(chan CoreEvent, 64),
		logger:   logger,
	}
}

// SendToCore delivers a UI event without blocking.
func (b *Bus) SendToCore(event UIEvent) error {
	select {
	case b.uiToCore <- event:
		return nil
	default:
		if b.logger != nil {
			b.logger.Warn("dropping UI event, core channel full")
		}
		return ErrBusFull
	}
}

// SendToUI delivers a core event without blocking. Dropping a snapshot
// is safe: every snapshot is complete, so the next one supersedes it.
func (b *Bus) SendToUI(event CoreEvent) error {
	select {
	case b.coreToUI <- event:
		return nil
	default:
		if b.logger != nil {
			b.logger.Warn("dropping core event, UI channel full")
		}
		return ErrBusFull
	}
}

// UIToCore is the core's receive side.
func (b *Bus) UIToCore() <-chan UIEvent {
	return b.uiToCore
}

// CoreToUI is the UI's receive side.
func (b *Bus) CoreToUI() <-chan CoreEvent {
	return b.coreToUI
}

// Close tears down both channels. Callers must have stopped sending.
func (b *Bus) Close() {
	close(b.uiToCore)
	close(b.coreToUI)
}

// Package stream consumes one HTTP response body as a sequence of byte
// increments and turns it into the ordered event stream the chat service
// dispatches from.
package stream

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/calder-dev/tidechat/internal/log"
	"github.com/calder-dev/tidechat/internal/sse"
)

// Orchestrator owns a single read loop over a streaming response body.
// It applies the per-stream rules the raw decoder cannot: suppression of
// retransmitted chunks, first-conversation-id-wins, and the benign
// cancellation handshake.
//
// Cancellation is cooperative. Cancel sets a flag checked between reads
// and fires the abort hook concurrently, so one already in-flight read
// may still deliver a final frame before the loop exits.
type Orchestrator struct {
	abort     func()
	logger    log.Logger
	cancelled atomic.Bool

	lastChunk string
	haveChunk bool
	convSeen  bool
}

// New creates an orchestrator. abort, when non-nil, is invoked on Cancel
// to interrupt the underlying network read; typically the cancel func of
// the request context.
func New(abort func(), logger log.Logger) *Orchestrator {
	return &Orchestrator{abort: abort, logger: logger}
}

// Cancel requests a benign stop of the read loop. Safe to call from any
// goroutine, including while Run is blocked in a read.
func (o *Orchestrator) Cancel() {
	o.cancelled.Store(true)
	if o.abort != nil {
		o.abort()
	}
}

// Cancelled reports whether Cancel was requested. A transport abort that
// arrives with this flag set is not a failure.
func (o *Orchestrator) Cancelled() bool {
	return o.cancelled.Load()
}

// Run reads body until natural end, a done event, cancellation, or an
// error, invoking emit for every accepted event in arrival order. The
// body is always closed on exit; close failures are swallowed. A nil
// return covers both normal completion and benign cancellation.
func (o *Orchestrator) Run(body io.ReadCloser, emit func(sse.Event)) error {
	defer func() { _ = body.Close() }()

	var pending string
	buf := make([]byte, 4096)

	for {
		if o.cancelled.Load() {
			return nil
		}

		n, err := body.Read(buf)
		if n > 0 {
			pending += string(buf[:n])
			records, rest := sse.Extract(pending)
			pending = rest

			for _, rec := range records {
				done, recErr := o.handleRecord(rec, emit)
				if recErr != nil {
					return recErr
				}
				if done {
					return nil
				}
			}
		}

		if err != nil {
			if err == io.EOF {
				return nil
			}
			// An abort we asked for is not a transport failure.
			if o.cancelled.Load() {
				if o.logger != nil {
					o.logger.Debug("read aborted after cancel", "cause", err)
				}
				return nil
			}
			return fmt.Errorf("read stream: %w", err)
		}
	}
}

// handleRecord interprets one decoded record, applying duplicate and
// first-occurrence suppression. done reports that the stream finished.
func (o *Orchestrator) handleRecord(rec string, emit func(sse.Event)) (done bool, err error) {
	ev, err := sse.Parse(rec)
	if err != nil {
		return false, err
	}
	if ev == nil {
		return false, nil
	}

	switch e := ev.(type) {
	case sse.DoneEvent:
		return true, nil

	case sse.ChunkEvent:
		// Upstream retransmission shows up as the same payload twice in
		// a row; only the immediate predecessor is compared.
		if o.haveChunk && e.Content == o.lastChunk {
			if o.logger != nil {
				o.logger.Debug("duplicate chunk suppressed", "bytes", len(e.Content))
			}
			return false, nil
		}
		o.lastChunk = e.Content
		o.haveChunk = true
		emit(e)

	case sse.ConversationEvent:
		if o.convSeen {
			return false, nil
		}
		o.convSeen = true
		emit(e)

	default:
		emit(ev)
	}

	return false, nil
}

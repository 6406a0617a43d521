// Package sse decodes the gateway's Server-Sent-Events wire format into
// a closed set of typed stream events. Decoding is split in two stages:
// Extract frames arbitrary byte increments into complete records, Parse
// turns one record into an event. Unknown or malformed records are
// dropped, never fatal, except a record carrying an explicit error,
// which escalates as a ProtocolError.
package sse

import (
	"encoding/json"
	"strings"

	"github.com/calder-dev/tidechat/internal/models"
)

// Event is one decoded stream event.
type Event interface {
	sseEvent()
}

// ConversationEvent announces the conversation id for this stream.
type ConversationEvent struct {
	ConversationID string
}

// ChunkEvent carries a text delta for the streaming message.
type ChunkEvent struct {
	Content string
}

// AnnotationsEvent carries citations for the streaming message.
type AnnotationsEvent struct {
	Annotations []models.Annotation
}

// ApprovalEvent asks the caller to approve a tool invocation.
type ApprovalEvent struct {
	Request models.ApprovalRequest
}

// UsageEvent marks the turn complete. ResponseID, when present, is the
// continuation token for the next turn.
type UsageEvent struct {
	Usage      models.Usage
	ResponseID string
}

// DoneEvent ends the stream normally.
type DoneEvent struct{}

func (ConversationEvent) sseEvent() {}
func (ChunkEvent) sseEvent()        {}
func (AnnotationsEvent) sseEvent()  {}
func (ApprovalEvent) sseEvent()     {}
func (UsageEvent) sseEvent()        {}
func (DoneEvent) sseEvent()         {}

// ProtocolError is a stream-level fault reported by the gateway itself.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return "stream error: " + e.Message
}

// Extract splits buf into complete records and returns the unconsumed
// remainder for re-submission with the next increment. Records are
// blank-line terminated; a separator split across two increments stays
// in the remainder until its second half arrives. A partial record is
// never emitted.
func Extract(buf string) (records []string, rest string) {
	for {
		i, sep := recordSep(buf)
		if i < 0 {
			return records, buf
		}
		rec := strings.TrimRight(buf[:i], "\r")
		buf = buf[i+sep:]
		if rec != "" {
			records = append(records, rec)
		}
	}
}

// recordSep finds the earliest record separator, tolerating CRLF framing.
func recordSep(buf string) (idx, width int) {
	lf := strings.Index(buf, "\n\n")
	crlf := strings.Index(buf, "\r\n\r\n")
	switch {
	case lf < 0 && crlf < 0:
		return -1, 0
	case crlf >= 0 && (lf < 0 || crlf < lf):
		return crlf, 4
	default:
		return lf, 2
	}
}

// envelope is the wire shape of one record's JSON payload.
type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error json.RawMessage `json:"error"`
}

type errorData struct {
	Message string `json:"message"`
}

// Parse interprets one complete record. It returns (nil, nil) for
// records that should be dropped: comments, non-JSON payloads, and
// unrecognized event types (forward compatibility).
func Parse(record string) (Event, error) {
	data := dataPayload(record)
	if data == "" {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, nil
	}

	if len(env.Error) > 0 && string(env.Error) != "null" {
		return nil, &ProtocolError{Message: errorMessage(env.Error)}
	}

	switch env.Type {
	case "conversationId":
		var d struct {
			ConversationID string `json:"conversationId"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, nil
		}
		return ConversationEvent{ConversationID: d.ConversationID}, nil

	case "chunk":
		var d struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, nil
		}
		return ChunkEvent{Content: d.Content}, nil

	case "annotations":
		var d struct {
			Annotations []models.Annotation `json:"annotations"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, nil
		}
		return AnnotationsEvent{Annotations: d.Annotations}, nil

	case "mcpApprovalRequest":
		var d struct {
			ApprovalRequest models.ApprovalRequest `json:"approvalRequest"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, nil
		}
		return ApprovalEvent{Request: d.ApprovalRequest}, nil

	case "usage":
		var d struct {
			models.Usage
			ResponseID string `json:"responseId"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, nil
		}
		return UsageEvent{Usage: d.Usage, ResponseID: d.ResponseID}, nil

	case "done":
		return DoneEvent{}, nil

	case "error":
		var d errorData
		if err := json.Unmarshal(env.Data, &d); err != nil || d.Message == "" {
			return nil, &ProtocolError{Message: "stream reported an error"}
		}
		return nil, &ProtocolError{Message: d.Message}

	default:
		return nil, nil
	}
}

// dataPayload joins the data lines of a record, skipping comment and
// field lines that are not data.
func dataPayload(record string) string {
	var lines []string
	for _, line := range strings.Split(record, "\n") {
		line = strings.TrimRight(line, "\r")
		if after, ok := strings.CutPrefix(line, "data:"); ok {
			lines = append(lines, strings.TrimPrefix(after, " "))
		}
	}
	return strings.Join(lines, "\n")
}

func errorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var d errorData
	if err := json.Unmarshal(raw, &d); err == nil && d.Message != "" {
		return d.Message
	}
	return string(raw)
}

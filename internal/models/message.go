package models

import "time"

// Role identifies who a message belongs to.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleApproval marks a synthesized entry asking the user to approve a
	// tool invocation. Approval messages never stream.
	RoleApproval Role = "approval"
)

// Message is one turn entry in the conversation. Content is mutable only
// while the message is the active streaming target; Annotations are
// append-only during a stream; Usage is set once, at stream completion.
type Message struct {
	ID          string
	Role        Role
	Content     string
	CreatedAt   time.Time
	Attachments []Attachment
	Annotations []Annotation
	Usage       *Usage
	Approval    *ApprovalRequest
}

// Attachment is an inline file payload attached to a user message.
type Attachment struct {
	DataURI  string `json:"dataUri"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// Annotation is a citation attached to streamed assistant content.
// Field names follow the gateway wire format.
type Annotation struct {
	Type       string `json:"type"`
	Label      string `json:"label"`
	URL        string `json:"url,omitempty"`
	FileID     string `json:"fileId,omitempty"`
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
	Quote      string `json:"quote,omitempty"`
}

// ApprovalRequest is the agent's mid-stream request for consent before a
// remote tool side-effect.
type ApprovalRequest struct {
	ID          string         `json:"id"`
	ToolName    string         `json:"toolName"`
	ServerLabel string         `json:"serverLabel"`
	Arguments   map[string]any `json:"arguments,omitempty"`
}

// Usage carries the token counts and elapsed duration reported when a
// turn completes. Duration is in milliseconds, as sent by the gateway.
type Usage struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	TotalTokens      int     `json:"totalTokens"`
	Duration         float64 `json:"duration"`
}

package core

import (
	"encoding/json"
	"time"
)

const (
	ChattyName      = "Chatty"
	ChattyUserAgent = "Chatty-Bot/0.1"
	ChattyVersion   = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type Function struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ChatMessage is a single turn on the wire to the model backend.
type ChatMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Message is a persisted conversation turn. Role is always RoleUser or
// RoleAssistant; tool traffic never reaches the store.
type Message struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
}

// Fact is one persisted piece of knowledge about the user.
type Fact struct {
	ID              string
	Text            string
	SourceMessageID string
	CreatedAt       time.Time
}

package model

import "time"

// Message represents a single turn in a conversation.
//
// Roles follow the usual chat-completion convention: "system", "user",
// "assistant" and "tool". Tool-call requests and results are carried as
// regular turns so the full exchange stays an append-only sequence.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolCall is a provider-agnostic request from the model to execute a named
// database operation with the given arguments.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

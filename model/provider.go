package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts LLM provider implementations (OpenAI, Anthropic, Ollama)
// using provider-agnostic types from the model layer.
//
// This interface is defined in the model package (not the provider package) to
// avoid import cycles: provider implementations can import model, and callers
// can use the Provider interface without importing the provider package.
type Provider interface {
	// Chat sends messages and streams responses back via callback.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error

	// ChatWithTools sends messages with available tools and streams responses.
	ChatWithTools(ctx context.Context, messages []Message, tools []mcptypes.Tool, callback StreamCallback) error

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of streamed response. Tool calls
// requested by the model arrive through the same callback, usually after the
// text stream has finished.
type StreamCallback func(chunk string, toolCalls []ToolCall) error

// ModelInfo describes a model offered by a provider.
type ModelInfo struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

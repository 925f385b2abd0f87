package provider

import (
	"context"
	"fmt"
	"log"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"

	"dbchat/model"
	"dbchat/ollama"
)

// OllamaProvider wraps the ollama.Client to implement the Provider interface
// for local models. It converts model.Message to api.Message, mcptypes.Tool
// to api.Tool, and api.ToolCall back to the provider-agnostic format.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// baseURL defaults to "http://localhost:11434" and model to "llama3.1:latest"
// when empty. Returns an error if the URL is invalid.
func NewOllamaProvider(baseURL, modelName string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	// Without tool calling the model can chat but never touches the
	// database, so make the misconfiguration visible at startup.
	if !client.SupportsToolCalling() {
		log.Printf("[provider] warning: ollama model %q is not known to support tool calling; database operations will not work", client.GetModel())
	}

	return &OllamaProvider{client: client}, nil
}

// SupportsToolCalling reports whether the active model is known to support
// Ollama's tool calling API.
func (p *OllamaProvider) SupportsToolCalling() bool {
	return p.client.SupportsToolCalling()
}

// Chat implements Provider.Chat by delegating to ChatWithTools with no tools.
func (p *OllamaProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return p.ChatWithTools(ctx, messages, nil, callback)
}

// ChatWithTools implements Provider.ChatWithTools with type conversions.
func (p *OllamaProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	ollamaMessages := ConvertToOllamaMessages(messages)

	var ollamaTools []api.Tool
	if len(tools) > 0 {
		ollamaTools = ConvertMCPToolsToOllama(tools)
	}

	ollamaCallback := func(chunk string, ollamaCalls []api.ToolCall) error {
		if callback == nil {
			return nil
		}
		return callback(chunk, ConvertToProviderToolCalls(ollamaCalls))
	}

	return p.client.ChatWithTools(ctx, ollamaMessages, ollamaTools, ollamaCallback)
}

// ListModels implements Provider.ListModels (direct passthrough).
func (p *OllamaProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

// GetModel implements Provider.GetModel (direct passthrough).
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// SetModel implements Provider.SetModel (direct passthrough).
func (p *OllamaProvider) SetModel(modelName string) {
	p.client.SetModel(modelName)
}

// Ping implements Provider.Ping (direct passthrough).
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

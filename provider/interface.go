// Package provider implements the LLM providers behind the chat assistant.
//
// The assistant supports multiple providers (OpenAI, Anthropic, local Ollama)
// through the common model.Provider interface. The provider layer owns all
// conversions between the provider-agnostic model types and each SDK's own
// message, tool and tool-call formats.
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeOllama    ProviderType = "ollama"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For OpenAI/Anthropic (unused for Ollama)
}

package provider

import (
	"fmt"

	"dbchat/model"
)

// NewProvider creates a provider based on configuration.
//
// This is the centralized factory for creating any provider type. It
// dispatches to the appropriate constructor based on Config.Type and returns
// an error for unknown types or when a provider-specific constructor fails
// (for example a missing API key).
func NewProvider(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts a config provider ID to a factory
// ProviderType. Unknown IDs pass through as-is and make the factory error.
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic":
		return ProviderTypeAnthropic
	case "ollama":
		return ProviderTypeOllama
	default:
		return ProviderType(id)
	}
}

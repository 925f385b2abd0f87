package provider

import (
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "openai with key",
			cfg:     Config{Type: ProviderTypeOpenAI, APIKey: "sk-test"},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Type: ProviderTypeOpenAI},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Type: ProviderTypeAnthropic, APIKey: "sk-ant-test"},
			wantErr: false,
		},
		{
			name:    "anthropic without key",
			cfg:     Config{Type: ProviderTypeAnthropic},
			wantErr: true,
		},
		{
			name:    "ollama needs no key",
			cfg:     Config{Type: ProviderTypeOllama, BaseURL: "http://localhost:11434"},
			wantErr: false,
		},
		{
			name:    "unknown type",
			cfg:     Config{Type: ProviderType("mystery")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got provider %T", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p == nil {
				t.Fatal("provider is nil")
			}
			if p.GetModel() == "" {
				t.Error("provider should pick a default model")
			}
		})
	}
}

func TestNewProviderDefaults(t *testing.T) {
	p, err := NewProvider(Config{Type: ProviderTypeOpenAI, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.GetModel() != "gpt-4o-mini" {
		t.Errorf("default model: got %q", p.GetModel())
	}

	p.SetModel("gpt-4o")
	if p.GetModel() != "gpt-4o" {
		t.Errorf("SetModel did not stick: %q", p.GetModel())
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id   string
		want ProviderType
	}{
		{"openai", ProviderTypeOpenAI},
		{"anthropic", ProviderTypeAnthropic},
		{"ollama", ProviderTypeOllama},
		{"mystery", ProviderType("mystery")},
	}

	for _, tt := range tests {
		if got := MapProviderIDToType(tt.id); got != tt.want {
			t.Errorf("MapProviderIDToType(%q): got %q, want %q", tt.id, got, tt.want)
		}
	}
}

package main

import (
	"log"

	"github.com/joho/godotenv"

	"dbchat/config"
	"dbchat/provider"
	"dbchat/router"
	"dbchat/server"
	"dbchat/session"
	"dbchat/store"
	"dbchat/tools"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	p, err := provider.NewProvider(provider.Config{
		Type:    provider.MapProviderIDToType(cfg.ProviderID),
		BaseURL: providerBaseURL(cfg),
		Model:   cfg.Model,
		APIKey:  cfg.APIKey(),
	})
	if err != nil {
		log.Fatalf("Failed to create provider %q: %v", cfg.ProviderID, err)
	}

	executor := tools.NewExecutor(st)
	r := router.New(p, executor)
	sessions := session.NewManager()

	_, engine := server.New(r, sessions, st, p, cfg.DataDirectory)

	log.Printf("dbchat listening on %s (provider=%s model=%s db=%s)",
		cfg.ListenAddr, cfg.ProviderID, p.GetModel(), cfg.DBPath)
	if err := engine.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// providerBaseURL returns the base URL override for the configured provider.
// Only Ollama has a configurable host; the cloud SDKs use their defaults.
func providerBaseURL(cfg *config.Config) string {
	if cfg.ProviderID == "ollama" {
		return cfg.OllamaHost
	}
	return ""
}

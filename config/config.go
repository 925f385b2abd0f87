// Package config loads process configuration from a TOML settings file and
// environment variables. Environment always wins over the file.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors the settings.toml layout.
type fileConfig struct {
	Server   serverConfig   `toml:"server"`
	Provider providerConfig `toml:"provider"`
	Database databaseConfig `toml:"database"`
	DataDir  string         `toml:"data_directory"`
}

type serverConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

type providerConfig struct {
	ID         string `toml:"id"`
	Model      string `toml:"model"`
	OllamaHost string `toml:"ollama_host"`
}

type databaseConfig struct {
	Path string `toml:"path"`
}

// Config is the resolved process configuration.
type Config struct {
	DataDirectory string
	ListenAddr    string
	ProviderID    string
	Model         string
	OllamaHost    string
	DBPath        string
}

var Debug = false
var DebugLog *log.Logger

// APIKey returns the credential for the configured provider, read from the
// environment. Ollama needs none.
func (c *Config) APIKey() string {
	switch c.ProviderID {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("DBCHAT_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if addr := os.Getenv("DBCHAT_LISTEN_ADDR"); addr != "" {
		c.ListenAddr = addr
	}
	if id := os.Getenv("DBCHAT_PROVIDER"); id != "" {
		c.ProviderID = id
	}
	if model := os.Getenv("DBCHAT_MODEL"); model != "" {
		c.Model = model
	}
	if host := os.Getenv("DBCHAT_OLLAMA_HOST"); host != "" {
		c.OllamaHost = host
	}
	if dbPath := os.Getenv("DBCHAT_DB_PATH"); dbPath != "" {
		c.DBPath = dbPath
	}
}

func CheckDebug() bool {
	debug := os.Getenv("DBCHAT_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens the debug log in the data directory when DBCHAT_DEBUG
// is set.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: debug output may contain conversation fragments
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (DBCHAT_DEBUG=%s) ===", os.Getenv("DBCHAT_DEBUG"))
}

// Load resolves configuration: defaults, then settings.toml if present,
// then environment overrides. It also creates the data directory.
func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: DefaultDataDir(),
		ListenAddr:    ":7860",
		ProviderID:    "openai",
		Model:         "", // provider constructors pick their own default
		OllamaHost:    "http://localhost:11434",
	}

	settingsPath := SettingsFilePath()
	if FileExists(settingsPath) {
		var fc fileConfig
		if _, err := toml.DecodeFile(settingsPath, &fc); err != nil {
			return nil, fmt.Errorf("failed to load settings file: %w", err)
		}
		if fc.DataDir != "" {
			cfg.DataDirectory = ExpandPath(fc.DataDir)
		}
		if fc.Server.ListenAddr != "" {
			cfg.ListenAddr = fc.Server.ListenAddr
		}
		if fc.Provider.ID != "" {
			cfg.ProviderID = fc.Provider.ID
		}
		if fc.Provider.Model != "" {
			cfg.Model = fc.Provider.Model
		}
		if fc.Provider.OllamaHost != "" {
			cfg.OllamaHost = fc.Provider.OllamaHost
		}
		if fc.Database.Path != "" {
			cfg.DBPath = ExpandPath(fc.Database.Path)
		}
	}

	cfg.applyEnvOverrides()

	if err := os.MkdirAll(cfg.DataDirectory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDirectory, "personal.db")
	}

	InitDebugLog(cfg.DataDirectory)

	return cfg, nil
}

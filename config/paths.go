package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ConfigDir returns the platform-specific configuration directory
// Linux/Mac: ~/.config/dbchat
// Windows: C:\Users\username\.config\dbchat
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		return filepath.Join(userProfile, ".config", "dbchat")
	}

	home := os.Getenv("HOME")
	return filepath.Join(home, ".config", "dbchat")
}

// DefaultDataDir returns the platform-specific default data directory
// Linux/Mac: ~/.local/share/dbchat
// Windows: C:\Users\username\AppData\Local\dbchat
func DefaultDataDir() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			localAppData = filepath.Join(userProfile, "AppData", "Local")
		}
		return filepath.Join(localAppData, "dbchat")
	}

	home := os.Getenv("HOME")
	return filepath.Join(home, ".local", "share", "dbchat")
}

// SettingsFilePath returns the path to settings.toml
func SettingsFilePath() string {
	return filepath.Join(ConfigDir(), "settings.toml")
}

// HomeDir returns the user's home directory across platforms
func HomeDir() string {
	if runtime.GOOS == "windows" {
		home := os.Getenv("USERPROFILE")
		if home == "" {
			home = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		}
		return home
	}
	return os.Getenv("HOME")
}

// ExpandPath expands a leading ~ to the home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		return filepath.Join(HomeDir(), strings.TrimPrefix(path, "~"))
	}
	return path
}

// FileExists reports whether path exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

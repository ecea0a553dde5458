package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Platform identifiers.
const (
	platformLinux  = "linux"
	platformDarwin = "darwin"
)

// Application directory name used across all platforms.
const appName = "shareview"

// Config file name.
const configFileName = "config.toml"

// Session database file name, kept under the data directory.
const sessionDBName = "sessions.db"

// DefaultConfigDir returns the platform-specific directory for config files.
// On Linux, respects XDG_CONFIG_HOME (defaults to ~/.config/shareview).
// On macOS, uses ~/Library/Application Support/shareview per Apple guidelines.
// Other platforms fall back to ~/.config/shareview.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformLinux:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}

		return filepath.Join(home, ".config", appName)
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, ".config", appName)
	}
}

// DefaultConfigPath returns the full path to the default config file.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, configFileName)
}

// DefaultDataDir returns the platform-specific directory for application
// data (the session database). On Linux, respects XDG_DATA_HOME (defaults
// to ~/.local/share/shareview). macOS collapses config and data into
// ~/Library/Application Support/shareview.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformLinux:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}

		return filepath.Join(home, ".local", "share", appName)
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, ".local", "share", appName)
	}
}

// SessionDBPath returns the path to the session database inside dataDir,
// falling back to the platform default data directory when dataDir is empty.
func SessionDBPath(dataDir string) string {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	if dataDir == "" {
		return ""
	}

	return filepath.Join(dataDir, sessionDBName)
}

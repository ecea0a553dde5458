package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// CLIOverrides carries values from command-line flags. Flags always win
// over the config file and environment, matching user expectations for
// one-off overrides.
type CLIOverrides struct {
	ConfigPath string
	ServerURL  string
}

// Resolved is the effective configuration after the full override chain:
// defaults -> config file -> environment variables -> CLI flags.
type Resolved struct {
	ServerURL          string
	ConnectTimeout     time.Duration
	UserAgent          string
	AllowedEmailDomain string
	ParallelDownloads  int
	LogLevel           string
	DataDir            string
	DownloadDir        string
}

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are treated as fatal errors with "did you
// mean?" suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values. This supports the zero-config
// first-run experience: a server URL on the command line is enough.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain, returning a
// fully resolved configuration ready for use.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	// Config path: CLI > env > default.
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{
		ServerURL:          cfg.Server.BaseURL,
		UserAgent:          cfg.Server.UserAgent,
		AllowedEmailDomain: cfg.Access.AllowedEmailDomain,
		ParallelDownloads:  cfg.Transfers.ParallelDownloads,
		LogLevel:           cfg.Logging.LogLevel,
		DataDir:            cfg.Storage.DataDir,
		DownloadDir:        cfg.Storage.DownloadDir,
	}

	// Validate guarantees the timeout parses when non-empty.
	if cfg.Server.ConnectTimeout != "" {
		resolved.ConnectTimeout, _ = time.ParseDuration(cfg.Server.ConnectTimeout)
	}

	if env.ServerURL != "" {
		resolved.ServerURL = env.ServerURL
	}

	if env.DataDir != "" {
		resolved.DataDir = env.DataDir
	}

	if cli.ServerURL != "" {
		resolved.ServerURL = cli.ServerURL
	}

	return resolved, nil
}

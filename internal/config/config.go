// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for shareview. It supports a layered
// override chain (defaults -> config file -> environment -> CLI flags) and
// rejects unknown config keys with "did you mean?" suggestions.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Access    AccessConfig    `toml:"access"`
	Transfers TransfersConfig `toml:"transfers"`
	Logging   LoggingConfig   `toml:"logging"`
	Storage   StorageConfig   `toml:"storage"`
}

// ServerConfig identifies the document-management backend that issued the
// share links. The base URL is the prefix for all /share/* endpoints.
type ServerConfig struct {
	BaseURL        string `toml:"base_url"`
	ConnectTimeout string `toml:"connect_timeout"`
	UserAgent      string `toml:"user_agent"`
}

// AccessConfig controls client-side access policy. The server remains
// authoritative; these settings only catch obvious mistakes before a
// request is issued.
type AccessConfig struct {
	// AllowedEmailDomain restricts which viewer emails the client will
	// submit for OTP delivery (e.g. "org.com"). Empty allows any domain.
	AllowedEmailDomain string `toml:"allowed_email_domain"`
}

// TransfersConfig controls parallel workers for bulk folder downloads.
type TransfersConfig struct {
	ParallelDownloads int `toml:"parallel_downloads"`
}

// LoggingConfig controls log verbosity. CLI flags (--verbose, --quiet)
// override the configured level.
type LoggingConfig struct {
	LogLevel string `toml:"log_level"`
}

// StorageConfig controls where shareview keeps local state.
type StorageConfig struct {
	// DataDir overrides the platform default for the session database.
	DataDir string `toml:"data_dir"`
	// DownloadDir is where `get` writes files when no destination is given.
	// Empty means the current working directory.
	DownloadDir string `toml:"download_dir"`
}

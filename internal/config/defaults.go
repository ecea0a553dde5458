package config

// Default values applied before the config file is read.
const (
	defaultConnectTimeout    = "30s"
	defaultUserAgent         = "shareview/0.1"
	defaultParallelDownloads = 4
	defaultLogLevel          = "info"
)

// DefaultConfig returns a Config populated with all default values.
// Loading a config file overlays onto this, so absent keys keep defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ConnectTimeout: defaultConnectTimeout,
			UserAgent:      defaultUserAgent,
		},
		Transfers: TransfersConfig{
			ParallelDownloads: defaultParallelDownloads,
		},
		Logging: LoggingConfig{
			LogLevel: defaultLogLevel,
		},
	}
}

package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig  = "SHAREVIEW_CONFIG"
	EnvServer  = "SHAREVIEW_SERVER_URL"
	EnvDataDir = "SHAREVIEW_DATA_DIR"
)

// EnvOverrides holds values derived from environment variables.
// These sit between the config file and CLI flags in the override chain.
type EnvOverrides struct {
	ConfigPath string // SHAREVIEW_CONFIG: override config file path
	ServerURL  string // SHAREVIEW_SERVER_URL: backend base URL
	DataDir    string // SHAREVIEW_DATA_DIR: session database directory
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		ServerURL:  os.Getenv(EnvServer),
		DataDir:    os.Getenv(EnvDataDir),
	}
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// validLogLevels are the accepted values for logging.log_level.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks a Config for values that would cause confusing failures
// later. It does not require server.base_url to be set; commands that need
// it report its absence with actionable context.
func Validate(cfg *Config) error {
	if cfg.Server.BaseURL != "" {
		u, err := url.Parse(cfg.Server.BaseURL)
		if err != nil {
			return fmt.Errorf("server.base_url %q is not a valid URL: %w", cfg.Server.BaseURL, err)
		}

		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("server.base_url %q must use http or https", cfg.Server.BaseURL)
		}

		if u.Host == "" {
			return fmt.Errorf("server.base_url %q has no host", cfg.Server.BaseURL)
		}
	}

	if cfg.Server.ConnectTimeout != "" {
		if _, err := time.ParseDuration(cfg.Server.ConnectTimeout); err != nil {
			return fmt.Errorf("server.connect_timeout %q is not a duration: %w", cfg.Server.ConnectTimeout, err)
		}
	}

	if cfg.Transfers.ParallelDownloads < 1 {
		return fmt.Errorf("transfers.parallel_downloads must be at least 1, got %d", cfg.Transfers.ParallelDownloads)
	}

	if !validLogLevels[cfg.Logging.LogLevel] {
		return fmt.Errorf("logging.log_level %q must be one of debug, info, warn, error", cfg.Logging.LogLevel)
	}

	if domain := cfg.Access.AllowedEmailDomain; domain != "" {
		if strings.ContainsAny(domain, "@ ") {
			return fmt.Errorf("access.allowed_email_domain %q must be a bare domain like \"example.com\"", domain)
		}
	}

	return nil
}

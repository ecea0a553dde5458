package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		RunE:  runConfigShow,
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	if resolvedCfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(map[string]any{
			"server_url":           resolvedCfg.ServerURL,
			"connect_timeout":      resolvedCfg.ConnectTimeout.String(),
			"user_agent":           resolvedCfg.UserAgent,
			"allowed_email_domain": resolvedCfg.AllowedEmailDomain,
			"parallel_downloads":   resolvedCfg.ParallelDownloads,
			"log_level":            resolvedCfg.LogLevel,
			"data_dir":             resolvedCfg.DataDir,
			"download_dir":         resolvedCfg.DownloadDir,
		})
	}

	rows := [][]string{
		{"server.base_url", resolvedCfg.ServerURL},
		{"server.connect_timeout", formatDuration(resolvedCfg.ConnectTimeout)},
		{"server.user_agent", resolvedCfg.UserAgent},
		{"access.allowed_email_domain", resolvedCfg.AllowedEmailDomain},
		{"transfers.parallel_downloads", fmt.Sprintf("%d", resolvedCfg.ParallelDownloads)},
		{"logging.log_level", resolvedCfg.LogLevel},
		{"storage.data_dir", resolvedCfg.DataDir},
		{"storage.download_dir", resolvedCfg.DownloadDir},
	}

	printTable(os.Stdout, []string{"KEY", "VALUE"}, rows)

	return nil
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}

	return d.String()
}

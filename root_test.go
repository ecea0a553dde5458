package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/shareview-go/internal/config"
)

// Global flag reset pattern: newRootCmd() binds flags via StringVar/BoolVar,
// which reset the global flag variables to their zero values. Tests set the
// globals after building the command, or let Cobra parse them via SetArgs.

func saveFlags(t *testing.T) {
	t.Helper()

	oldVerbose := flagVerbose
	oldQuiet := flagQuiet
	oldCfg := resolvedCfg

	t.Cleanup(func() {
		flagVerbose = oldVerbose
		flagQuiet = oldQuiet
		resolvedCfg = oldCfg
	})
}

func TestBuildLoggerDefault(t *testing.T) {
	saveFlags(t)

	flagVerbose = false
	flagQuiet = false
	resolvedCfg = nil

	logger := buildLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLoggerVerbose(t *testing.T) {
	saveFlags(t)

	flagVerbose = true
	flagQuiet = false
	resolvedCfg = nil

	logger := buildLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLoggerQuiet(t *testing.T) {
	saveFlags(t)

	flagVerbose = false
	flagQuiet = true
	resolvedCfg = nil

	logger := buildLogger()

	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelError))
}

func TestBuildLoggerConfigLevel(t *testing.T) {
	saveFlags(t)

	flagVerbose = false
	flagQuiet = false
	resolvedCfg = &config.Resolved{LogLevel: "debug"}

	logger := buildLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLoggerVerboseBeatsConfig(t *testing.T) {
	saveFlags(t)

	flagVerbose = true
	flagQuiet = false
	resolvedCfg = &config.Resolved{LogLevel: "error"}

	logger := buildLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestRootCmdSubcommands(t *testing.T) {
	cmd := newRootCmd()

	want := []string{"open", "ls", "get", "view", "session", "config"}

	for _, name := range want {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

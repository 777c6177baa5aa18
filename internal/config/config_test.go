package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.Providers.Primary)
	assert.Equal(t, 300, cfg.Providers.ClaudeTimeoutSecs)
	assert.Equal(t, 300, cfg.Providers.CodexTimeoutSecs)
	assert.Equal(t, 0, cfg.Providers.RequestsPerMinute)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.InDelta(t, 1.0, cfg.Retry.InitialBackoffSecs, 0.001)
	assert.InDelta(t, 30.0, cfg.Retry.MaxBackoffSecs, 0.001)
	assert.True(t, cfg.Verify.Enabled)
	assert.Equal(t, 5, cfg.Verify.PenaltyFailedSearch)
	assert.Equal(t, 15, cfg.Verify.PenaltyStubFinding)
	assert.Equal(t, 30, cfg.Verify.PenaltyUnverifiable)
	assert.Equal(t, 20, cfg.Verify.PenaltyClaimMismatch)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, ".shipnote/history.db", cfg.History.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
providers:
  primary: codex
  claude_timeout_secs: 120
retry:
  max_attempts: 5
log:
  level: debug
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shipnote.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "codex", cfg.Providers.Primary)
	assert.Equal(t, 120, cfg.Providers.ClaudeTimeoutSecs)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 300, cfg.Providers.CodexTimeoutSecs)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("SHIPNOTE_PROVIDERS_CLAUDE_TIMEOUT_SECS", "60")
	t.Setenv("SHIPNOTE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Providers.ClaudeTimeoutSecs)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate_BadPrimary(t *testing.T) {
	chtemp(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Providers.Primary = "gemini"
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "providers.primary")
}

func TestValidate_BadRetryBounds(t *testing.T) {
	chtemp(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Retry.MaxAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg.Retry.MaxAttempts = 3
	cfg.Retry.MaxBackoffSecs = 0.5
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadMinConfidence(t *testing.T) {
	chtemp(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Verify.MinConfidence = 120
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_confidence")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

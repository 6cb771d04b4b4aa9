//go:build !integration

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotesense-api/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY", "AI_PROVIDER", "LOG_LEVEL", "PORT"} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfig_DefaultsFromEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "sk-test", cfg.AI.OpenAIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "gpt-4o-mini", cfg.AI.TextModel)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.VisionModel)
	assert.InDelta(t, 0.3, cfg.AI.SamplingTemperature(), 1e-9)
	assert.Equal(t, 600, cfg.AI.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, 0, cfg.AI.Retry.MaxRetries)
	assert.Equal(t, "v1.0", cfg.AI.PromptVersion)
	assert.False(t, cfg.ExposeRawOutput())
}

func TestLoadConfig_YAMLAndOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")
	p := writeYAML(t, `
server:
  port: 7000
  expose_raw_output: true
log:
  level: debug
ai:
  provider: gemini
  vision_model: gemini-2.5-pro
  request_timeout: 20s
  retry:
    max_retries: 2
    base_delay: 100ms
heartbeat:
  interval: 30s
`)

	cfg, err := LoadConfig(p, false)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.TextModel)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.VisionModel)
	assert.Equal(t, 20*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, 2, cfg.AI.Retry.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.AI.Retry.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Heartbeat.Interval)
	assert.True(t, cfg.ExposeRawOutput())
}

func TestLoadConfig_MissingCredentialFailsFast(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration), "expected configuration error, got %v", err)
}

func TestLoadConfig_DevFallsBackToNoop(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), true)
	require.NoError(t, err)
	assert.Equal(t, "noop", cfg.AI.Provider)
	assert.True(t, cfg.ExposeRawOutput())
}

func TestValidate(t *testing.T) {
	t.Run("noop outside dev", func(t *testing.T) {
		c := &Config{AI: AIConfig{Provider: "noop"}}
		assert.ErrorIs(t, c.Validate(), domain.ErrConfiguration)
	})
	t.Run("unknown provider", func(t *testing.T) {
		c := &Config{AI: AIConfig{Provider: "claude"}}
		assert.ErrorIs(t, c.Validate(), domain.ErrConfiguration)
	})
	t.Run("prompt file without fields", func(t *testing.T) {
		c := &Config{AI: AIConfig{Provider: "openai", OpenAIKey: "k", PromptFile: "p.txt"}}
		assert.ErrorIs(t, c.Validate(), domain.ErrConfiguration)
	})
	t.Run("bad yaml", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadConfig(writeYAML(t, "server: [oops"), false)
		assert.Error(t, err)
	})
}

func TestLoadConfig_ZeroTemperatureIsKept(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig(writeYAML(t, "ai:\n  temperature: 0\n"), false)
	require.NoError(t, err)
	require.NotNil(t, cfg.AI.Temperature)
	assert.Equal(t, 0.0, cfg.AI.SamplingTemperature())

	_, err = LoadConfig(writeYAML(t, "ai:\n  temperature: -0.5\n"), false)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

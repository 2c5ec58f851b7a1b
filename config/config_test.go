package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 4096, cfg.OpenAIMaxTokens)
	assert.InDelta(t, 0.7, cfg.OpenAITemperature, 0.0001)
	assert.Equal(t, 5, cfg.ImageBatchSize)
	assert.Equal(t, 24*time.Hour, cfg.DemoTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.RateLimitMax)
	assert.Equal(t, time.Hour, cfg.RateLimitWindow)
	assert.False(t, cfg.RateLimitTweaks)
	assert.Equal(t, 60*time.Second, cfg.PromptCacheTTL)
	assert.Equal(t, "0 3 * * *", cfg.CleanupSchedule)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "30m")
	t.Setenv("RATE_LIMIT_TWEAKS", "true")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,10.1.0.0/16")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Minute, cfg.RateLimitWindow)
	assert.True(t, cfg.RateLimitTweaks)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.DatabaseURL)
	assert.Equal(t, []string{"10.0.0.1", "10.1.0.0/16"}, cfg.TrustedProxies)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := "SERVER_ADDRESS: \":9090\"\nMAX_TWEAKS: 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, 5, cfg.MaxTweaks)
}

func TestLoadConfig_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("SERVER_ADDRESS: [unclosed"), 0o600))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{DatabaseURL: "postgres://x"}.Validate())
	assert.NoError(t, Config{DatabaseURL: "postgres://x", SessionSecret: "0123456789abcdef0123456789abcdef"}.Validate())
}

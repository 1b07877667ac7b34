package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
storage:
  type: s3
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "expo", cfg.Push.Provider)
	assert.Equal(t, "* * * * *", cfg.Scheduler.Spec)
	assert.Equal(t, 4, cfg.Scheduler.Workers)
	assert.Equal(t, 20, cfg.Scheduler.HistoryWindow)
	assert.Equal(t, 720*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshExpireTime)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
storage:
  type: s3
ai:
  model: gpt-4o-mini
`)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4.1")
	t.Setenv("SCHEDULER_TIMEZONE", "UTC")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "gpt-4.1", cfg.AI.Model)

	loc, err := cfg.Scheduler.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "short secret in release",
			body: "server:\n  mode: release\njwt:\n  secret: short\n",
		},
		{
			name: "unknown push provider",
			body: "push:\n  provider: carrier-pigeon\n",
		},
		{
			name: "fcm without credentials",
			body: "push:\n  provider: fcm\n",
		},
		{
			name: "zero workers",
			body: "scheduler:\n  workers: 0\n",
		},
		{
			name: "bad timezone",
			body: "scheduler:\n  timezone: Mars/Olympus\n",
		},
		{
			name: "zero ai timeout",
			body: "ai:\n  timeout: 0s\n",
		},
		{
			name: "unknown driver",
			body: "database:\n  driver: oracle\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, "storage:\n  type: s3\n"+tt.body)
			_, err := LoadConfig(dir)
			assert.Error(t, err)
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/popov-vn/ai-agent/internal/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPEN_API_TOKEN", "test-token")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, "test-token", cfg.LLM.APIToken)
	assert.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.LLM.RetryDelay())
	assert.Equal(t, 30*time.Second, cfg.LLM.RequestTimeout())
	assert.Equal(t, 6, cfg.LLM.MaxConcurrentRequests)
	assert.Equal(t, "none", cfg.Profiler.Backend)
	assert.Equal(t, DefaultRecipientType, cfg.Pipeline.DefaultRecipient)
	assert.Equal(t, DefaultHistoryTTL, cfg.Database.HistoryRetention)
	assert.True(t, cfg.Market.Headless)
	assert.Equal(t, DefaultPriceTimeout, cfg.Market.PriceTimeout)
	require.Contains(t, cfg.Scheduler.Tasks, "sql_maintenance")
	assert.True(t, cfg.Scheduler.Tasks["sql_maintenance"].Enabled)
	assert.NotEmpty(t, cfg.Messages.Welcome)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("OPEN_API_TOKEN", "tok")
	t.Setenv("OPENROUTER_MODEL", "openai/gpt-4o-mini")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_DELAY", "0.5")
	t.Setenv("REQUEST_TIMEOUT", "12")
	t.Setenv("MAX_CONCURRENT_REQUESTS", "2")
	t.Setenv("PIPELINE_PERSONAS", "praktik_bot,fin_expert")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "openai/gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.LLM.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.LLM.RetryDelay())
	assert.Equal(t, 12*time.Second, cfg.LLM.RequestTimeout())
	assert.Equal(t, 2, cfg.LLM.MaxConcurrentRequests)
	assert.Equal(t, []string{"praktik_bot", "fin_expert"}, cfg.Pipeline.Personas)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("OPEN_API_TOKEN", "tok")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
logger:
  level: debug
  json: true
pipeline:
  use_selector: true
  default_recipient: коллега
scheduler:
  tasks:
    sql_maintenance:
      enabled: false
      schedule: "0 0 5 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.JSON)
	assert.True(t, cfg.Pipeline.UseSelector)
	assert.Equal(t, "коллега", cfg.Pipeline.DefaultRecipient)
	assert.False(t, cfg.Scheduler.Tasks["sql_maintenance"].Enabled)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{"OPEN_API_TOKEN": ""}},
		{"invalid retries", map[string]string{"OPEN_API_TOKEN": "tok", "MAX_RETRIES": "0"}},
		{"invalid concurrency", map[string]string{"OPEN_API_TOKEN": "tok", "MAX_CONCURRENT_REQUESTS": "0"}},
		{"unknown provider", map[string]string{"OPEN_API_TOKEN": "tok", "LLM_PROVIDER": "mystery"}},
		{"gemini without key", map[string]string{"LLM_PROVIDER": "gemini", "GEMINI_API_KEY": ""}},
		{"gigachat without credentials", map[string]string{"OPEN_API_TOKEN": "tok", "PROFILER_BACKEND": "gigachat", "GIGACHAT_CREDENTIALS": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig("")
			require.Error(t, err)
			assert.True(t, errs.IsConfig(err), "expected config error, got %v", err)
		})
	}
}

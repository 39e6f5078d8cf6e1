// Package config loads application configuration from defaults, an optional
// YAML file, a .env file and environment variables, and validates it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	errs "github.com/popov-vn/ai-agent/internal/errors"
)

// Config holds every tunable of the service.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	GigaChat  GigaChatConfig  `mapstructure:"gigachat"`
	Profiler  ProfilerConfig  `mapstructure:"profiler"`
	Market    MarketConfig    `mapstructure:"market"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// LLMConfig configures the completion client used by the recommendation pipeline.
type LLMConfig struct {
	Provider              string  `mapstructure:"provider"                validate:"oneof=openrouter gemini"`
	APIToken              string  `mapstructure:"api_token"               validate:"required_if=Provider openrouter"`
	BaseURL               string  `mapstructure:"base_url"                validate:"required,url"`
	Model                 string  `mapstructure:"model"                   validate:"required"`
	MaxRetries            int     `mapstructure:"max_retries"             validate:"min=1,max=10"`
	RetryDelaySeconds     float64 `mapstructure:"retry_delay"             validate:"min=0"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout"         validate:"min=1"`
	MaxConcurrentRequests int     `mapstructure:"max_concurrent_requests" validate:"min=1,max=64"`
	Referer               string  `mapstructure:"referer"`
	Title                 string  `mapstructure:"title"`
	BreakerMaxFailures    int     `mapstructure:"breaker_max_failures"    validate:"min=0"`
}

// RetryDelay returns the backoff base delay.
func (c LLMConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds * float64(time.Second))
}

// RequestTimeout returns the per-attempt timeout.
func (c LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// GeminiConfig configures the Gemini provider and the Gemini photo profiler.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	ModelName   string  `mapstructure:"model_name"`
	Temperature float32 `mapstructure:"temperature" validate:"min=0,max=2"`
}

// GigaChatConfig configures the GigaChat photo profiler.
type GigaChatConfig struct {
	Credentials   string        `mapstructure:"credentials"`
	Scope         string        `mapstructure:"scope"`
	AuthURL       string        `mapstructure:"auth_url"       validate:"omitempty,url"`
	BaseURL       string        `mapstructure:"base_url"       validate:"omitempty,url"`
	Model         string        `mapstructure:"model"`
	InsecureTLS   bool          `mapstructure:"insecure_tls"`
	RefreshLeeway time.Duration `mapstructure:"refresh_leeway"`
}

// ProfilerConfig selects the backend that turns photos into text.
type ProfilerConfig struct {
	Backend   string `mapstructure:"backend"    validate:"oneof=none gigachat gemini"`
	MaxWidth  int    `mapstructure:"max_width"  validate:"min=64"`
	MaxHeight int    `mapstructure:"max_height" validate:"min=64"`
}

// MarketConfig configures the headless browser used for price lookups.
// An empty ControlURL launches a local browser.
type MarketConfig struct {
	ControlURL   string        `mapstructure:"control_url"`
	ChromeBin    string        `mapstructure:"chrome_bin"`
	Headless     bool          `mapstructure:"headless"`
	UserAgent    string        `mapstructure:"user_agent"`
	PriceTimeout time.Duration `mapstructure:"price_timeout" validate:"min=1s"`
}

// PipelineConfig controls which personas take part in a run.
type PipelineConfig struct {
	Personas         []string      `mapstructure:"personas"`
	UseSelector      bool          `mapstructure:"use_selector"`
	DefaultRecipient string        `mapstructure:"default_recipient" validate:"required"`
	RunTimeout       time.Duration `mapstructure:"run_timeout"       validate:"min=1s"`
}

// TelegramConfig configures the bot front end. BotInfo is filled at runtime.
type TelegramConfig struct {
	Token              string       `mapstructure:"token"`
	RateLimitPerMinute int          `mapstructure:"rate_limit_per_minute" validate:"min=0"`
	BotInfo            *models.User `mapstructure:"-"`
}

// DatabaseConfig configures the recommendation history store.
type DatabaseConfig struct {
	Path             string        `mapstructure:"path"              validate:"required"`
	HistoryRetention time.Duration `mapstructure:"history_retention" validate:"min=1h"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a scheduled task with a cron expression (seconds field included).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds user-facing bot texts.
type MessagesConfig struct {
	Welcome       string `mapstructure:"welcome"`
	Help          string `mapstructure:"help"`
	Analyzing     string `mapstructure:"analyzing"`
	InvalidInput  string `mapstructure:"invalid_input"`
	RateLimited   string `mapstructure:"rate_limited"`
	GeneralError  string `mapstructure:"general_error"`
	PriceUsage    string `mapstructure:"price_usage"`
	PriceNotFound string `mapstructure:"price_not_found"`
	HistoryEmpty  string `mapstructure:"history_empty"`
	HistoryHeader string `mapstructure:"history_header"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"llm.provider":                "LLM_PROVIDER",
	"llm.api_token":               "OPEN_API_TOKEN",
	"llm.base_url":                "OPENROUTER_BASE_URL",
	"llm.model":                   "OPENROUTER_MODEL",
	"llm.max_retries":             "MAX_RETRIES",
	"llm.retry_delay":             "RETRY_DELAY",
	"llm.request_timeout":         "REQUEST_TIMEOUT",
	"llm.max_concurrent_requests": "MAX_CONCURRENT_REQUESTS",
	"gemini.api_key":              "GEMINI_API_KEY",
	"gemini.model_name":           "GEMINI_MODEL",
	"gigachat.credentials":        "GIGACHAT_CREDENTIALS",
	"gigachat.auth_url":           "GIGACHAT_AUTH_URL",
	"gigachat.base_url":           "GIGACHAT_BASE_URL",
	"gigachat.model":              "GIGACHAT_MODEL",
	"gigachat.insecure_tls":       "GIGACHAT_INSECURE_TLS",
	"profiler.backend":            "PROFILER_BACKEND",
	"market.control_url":          "CHROME_CONTROL_URL",
	"market.chrome_bin":           "CHROME_BIN",
	"pipeline.personas":           "PIPELINE_PERSONAS",
	"pipeline.use_selector":       "PIPELINE_USE_SELECTOR",
	"telegram.token":              "TELEGRAM_BOT_TOKEN",
	"database.path":               "DATABASE_PATH",
	"logger.level":                "LOG_LEVEL",
	"logger.json":                 "LOG_JSON",
}

// LoadConfig reads configuration from path (optional), .env (optional) and
// the environment. It returns a ConfigError when a required value is missing
// or a constraint fails.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.NewConfigError("failed to load .env file", err)
	}

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errs.NewConfigError(fmt.Sprintf("failed to bind %s", env), err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errs.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.NewConfigError(fmt.Sprintf("failed to stat config file %s", path), err)
		} else {
			slog.Debug("Config file not found, using defaults and environment", "path", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.NewConfigError("failed to decode configuration", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct constraints and provider-specific requirements.
func (c *Config) Validate() error {
	if c.LLM.Provider == "openrouter" && strings.TrimSpace(c.LLM.APIToken) == "" {
		return errs.NewConfigError("OPEN_API_TOKEN is not set", nil)
	}

	if err := validator.New().Struct(c); err != nil {
		return errs.NewConfigError("configuration validation failed", err)
	}

	if c.LLM.Provider == "gemini" && c.Gemini.APIKey == "" {
		return errs.NewConfigError("GEMINI_API_KEY is required when llm.provider is gemini", nil)
	}

	switch c.Profiler.Backend {
	case "gigachat":
		if c.GigaChat.Credentials == "" {
			return errs.NewConfigError("GIGACHAT_CREDENTIALS is required when profiler.backend is gigachat", nil)
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return errs.NewConfigError("GEMINI_API_KEY is required when profiler.backend is gemini", nil)
		}
	}

	return nil
}

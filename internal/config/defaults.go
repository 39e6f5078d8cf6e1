package config

import (
	"time"

	"github.com/spf13/viper"
)

// Defaults mirror the values the service has always shipped with.
const (
	DefaultBaseURL               = "https://openrouter.ai/api/v1"
	DefaultModel                 = "google/gemini-2.5-flash-preview:thinking"
	DefaultMaxRetries            = 3
	DefaultRetryDelaySeconds     = 2.0
	DefaultRequestTimeoutSeconds = 30
	DefaultMaxConcurrentRequests = 6
	DefaultReferer               = "https://github.com"
	DefaultTitle                 = "Gift Recommendation Agent"

	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultGigaChatModel  = "GigaChat-2-Pro"
	DefaultGigaChatScope  = "GIGACHAT_API_PERS"
	DefaultGigaChatAuth   = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	DefaultGigaChatAPI    = "https://gigachat.devices.sberbank.ru/api/v1"
	DefaultDatabasePath   = "gifts.db"
	DefaultRecipientType  = "друг"
	DefaultRunTimeout     = 5 * time.Minute
	DefaultHistoryTTL     = 30 * 24 * time.Hour
	DefaultRateLimit      = 3
	DefaultProfilerWidth  = 1280
	DefaultProfilerHeight = 1280
	DefaultPriceTimeout   = 60 * time.Second
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

const welcomeMessage = `🎁 Привет! Я — бот сервиса “Знаю, что ты любишь”
Помогу подобрать идеальный подарок — персонально, с заботой и на основе того, что действительно важно для получателя.

Расскажи мне о человеке, которому хочешь сделать сюрприз, о его личности и увлечениях. С меня - все остальное.`

const helpMessage = `Просто опиши человека одним сообщением: возраст, профессию, увлечения. Можно приложить фото с подписью.

/price <товар> — диапазон цен на Ozon
/history — последние рекомендации
/help — эта справка`

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.base_url", DefaultBaseURL)
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("llm.max_retries", DefaultMaxRetries)
	v.SetDefault("llm.retry_delay", DefaultRetryDelaySeconds)
	v.SetDefault("llm.request_timeout", DefaultRequestTimeoutSeconds)
	v.SetDefault("llm.max_concurrent_requests", DefaultMaxConcurrentRequests)
	v.SetDefault("llm.referer", DefaultReferer)
	v.SetDefault("llm.title", DefaultTitle)
	v.SetDefault("llm.breaker_max_failures", 10)

	v.SetDefault("gemini.model_name", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", 0.7)

	v.SetDefault("gigachat.scope", DefaultGigaChatScope)
	v.SetDefault("gigachat.auth_url", DefaultGigaChatAuth)
	v.SetDefault("gigachat.base_url", DefaultGigaChatAPI)
	v.SetDefault("gigachat.model", DefaultGigaChatModel)
	v.SetDefault("gigachat.refresh_leeway", 30*time.Second)

	v.SetDefault("profiler.backend", "none")
	v.SetDefault("profiler.max_width", DefaultProfilerWidth)
	v.SetDefault("profiler.max_height", DefaultProfilerHeight)

	v.SetDefault("market.headless", true)
	v.SetDefault("market.user_agent", DefaultUserAgent)
	v.SetDefault("market.price_timeout", DefaultPriceTimeout)

	v.SetDefault("pipeline.personas", []string{})
	v.SetDefault("pipeline.use_selector", false)
	v.SetDefault("pipeline.default_recipient", DefaultRecipientType)
	v.SetDefault("pipeline.run_timeout", DefaultRunTimeout)

	v.SetDefault("telegram.rate_limit_per_minute", DefaultRateLimit)

	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.history_retention", DefaultHistoryTTL)

	v.SetDefault("scheduler.tasks", map[string]any{
		"sql_maintenance":   map[string]any{"enabled": true, "schedule": "0 0 4 * * *"},
		"history_retention": map[string]any{"enabled": true, "schedule": "0 30 3 * * *"},
	})

	v.SetDefault("messages.welcome", welcomeMessage)
	v.SetDefault("messages.help", helpMessage)
	v.SetDefault("messages.analyzing", "🔍 Анализирую информацию и подбираю подарки, это займёт около минуты...")
	v.SetDefault("messages.invalid_input", "Опиши человека подробнее: хотя бы пару предложений о возрасте, профессии и увлечениях.")
	v.SetDefault("messages.rate_limited", "⏳ Слишком много запросов. Попробуй снова через минуту.")
	v.SetDefault("messages.general_error", "❌ Что-то пошло не так. Попробуй ещё раз позже.")
	v.SetDefault("messages.price_usage", "Использование: /price <название товара>")
	v.SetDefault("messages.price_not_found", "Цены не найдены. Возможно, товар отсутствует или изменилась структура страницы.")
	v.SetDefault("messages.history_empty", "История рекомендаций пуста.")
	v.SetDefault("messages.history_header", "🗂 Последние рекомендации:")
}

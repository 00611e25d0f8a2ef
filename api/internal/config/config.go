package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string

	LLMName      string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	// Снимки рабочего пространства (headless Chrome через rod)
	CapturePageURL  string
	CaptureTargetID string
	CaptureInterval time.Duration
	CaptureQuality  int
	BrowserURL      string

	DatabaseURL  string
	HintCacheTTL time.Duration

	TelegramBotToken string
	TelegramChatID   int64
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// голое число - миллисекунды, как intervalMs во фронте
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	log.Printf("config: bad duration %s=%q, using %s", k, v, def)
	return def
}

func getInt(k string, def int) int {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: bad int %s=%q, using %d", k, v, def)
		return def
	}
	return n
}

// Load читает .env (если есть) и переменные окружения. Обязательных ключей нет:
// пустой GEMINI_API_KEY обрабатывается сервисом подсказок как ошибка конфигурации.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	chatID, _ := strconv.ParseInt(getEnv("TELEGRAM_CHAT_ID", "0"), 10, 64)

	return &Config{
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LLMName:      getEnv("LLM_NAME", "gemini"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", getEnv("VITE_GEMINI_API_KEY", "")),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		CapturePageURL:  getEnv("CAPTURE_PAGE_URL", ""),
		CaptureTargetID: getEnv("CAPTURE_TARGET_ID", "code-editor"),
		CaptureInterval: getDuration("CAPTURE_INTERVAL", 2*time.Minute),
		CaptureQuality:  getInt("CAPTURE_QUALITY", 60),
		BrowserURL:      getEnv("BROWSER_URL", ""),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		HintCacheTTL: getDuration("HINT_CACHE_TTL", 0),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   chatID,
	}
}

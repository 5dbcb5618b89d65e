package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider selects which chat backend answers conversation and mood calls.
// Transcription and image generation always go through the OpenAI endpoints.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	HTTPPort     string
	DatabasePath string
	JWTSecret    string
	LogLevel     string
	LogFormat    string

	AI AIConfig

	// MoodFallbackOnError persists entries with the fallback mood when
	// classification fails, instead of aborting the pipeline.
	MoodFallbackOnError bool
}

type AIConfig struct {
	Provider        string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	GeminiAPIKey    string
	ChatModel       string
	TranscribeModel string
	ImageModel      string
	GeminiModel     string
	RequestTimeout  time.Duration
}

// Load reads configuration from the environment, honoring a .env file if one
// exists, and validates required keys.
func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional; environment variables win

	cfg := Config{
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "voicejournal.db"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		AI: AIConfig{
			Provider:        getEnv("AI_PROVIDER", ProviderOpenAI),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			ChatModel:       getEnv("CHAT_MODEL", ""),
			TranscribeModel: getEnv("TRANSCRIBE_MODEL", ""),
			ImageModel:      getEnv("IMAGE_MODEL", ""),
			GeminiModel:     getEnv("GEMINI_MODEL", ""),
			RequestTimeout:  time.Duration(getEnvAsInt("AI_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		MoodFallbackOnError: getEnvAsBool("MOOD_FALLBACK_ON_ERROR", true),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET environment variable is required")
	}
	if cfg.AI.OpenAIAPIKey == "" {
		return Config{}, errors.New("OPENAI_API_KEY environment variable is required")
	}
	switch cfg.AI.Provider {
	case ProviderOpenAI:
	case ProviderGemini:
		if cfg.AI.GeminiAPIKey == "" {
			return Config{}, errors.New("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	default:
		return Config{}, errors.New("AI_PROVIDER must be one of: openai, gemini")
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

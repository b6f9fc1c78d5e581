package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port  string
	Env   string
	Debug bool

	// Completion provider
	Provider            string // "openai" or "gemini"
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	Model               string
	GeminiAPIKey        string
	ProviderTimeout     time.Duration
	ProviderConcurrency int

	// Persona
	Persona     string
	PersonaFile string

	// Frontend
	FrontendURL string
	CORSEnabled bool
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultOpenAIModel = "gpt-3.5-turbo"
	defaultGeminiModel = "gemini-1.5-flash"
)

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "5000"),
		Env:                 getEnvOrDefault("ENV", "development"),
		Debug:               getEnvAsBoolOrDefault("DEBUG", false),
		Provider:            strings.ToLower(getEnvOrDefault("PROVIDER", ProviderOpenAI)),
		OpenAIBaseURL:       getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ProviderTimeout:     time.Duration(getEnvAsIntOrDefault("PROVIDER_TIMEOUT_SECONDS", 0)) * time.Second,
		ProviderConcurrency: getEnvAsIntOrDefault("PROVIDER_CONCURRENCY", 4),
		Persona:             getEnvOrDefault("PERSONA", "veritas"),
		PersonaFile:         getEnvOrDefault("PERSONA_FILE", ""),
		FrontendURL:         getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		CORSEnabled:         getEnvAsBoolOrDefault("CORS_ENABLED", true),
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		key, err := mustGetEnv("OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		cfg.OpenAIAPIKey = key
		cfg.Model = getEnvOrDefault("MODEL", defaultOpenAIModel)
	case ProviderGemini:
		key, err := mustGetEnv("GEMINI_API_KEY")
		if err != nil {
			return nil, err
		}
		cfg.GeminiAPIKey = key
		cfg.Model = getEnvOrDefault("MODEL", getEnvOrDefault("GEMINI_MODEL", defaultGeminiModel))
	default:
		return nil, fmt.Errorf("unsupported PROVIDER %q (want %q or %q)", cfg.Provider, ProviderOpenAI, ProviderGemini)
	}

	return cfg, nil
}

// IsProduction reports whether internal error details should be hidden.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func mustGetEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return val, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

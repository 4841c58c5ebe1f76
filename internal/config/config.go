package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port    string
	DataDir string
	LogMode string

	ModelProvider  string
	ModelEndpoint  string
	ModelAPIKey    string
	ModelName      string
	RequestTimeout time.Duration

	UICopyPath string
}

func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          os.Getenv("PORT"),
		DataDir:       os.Getenv("DATA_DIR"),
		LogMode:       os.Getenv("LOG_MODE"),
		ModelProvider: os.Getenv("MODEL_PROVIDER"),
		ModelEndpoint: os.Getenv("MODEL_ENDPOINT"),
		ModelAPIKey:   os.Getenv("MODEL_API_KEY"),
		ModelName:     os.Getenv("MODEL_NAME"),
		UICopyPath:    os.Getenv("UI_COPY_PATH"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.ModelProvider == "" {
		cfg.ModelProvider = ProviderOpenAI
	}
	if cfg.ModelProvider != ProviderOpenAI && cfg.ModelProvider != ProviderGemini {
		return nil, fmt.Errorf("unknown MODEL_PROVIDER %q", cfg.ModelProvider)
	}
	if cfg.ModelEndpoint == "" {
		cfg.ModelEndpoint = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.ModelName == "" {
		switch cfg.ModelProvider {
		case ProviderGemini:
			cfg.ModelName = "gemini-2.0-flash"
		default:
			cfg.ModelName = "gpt-4.1-mini"
		}
	}

	cfg.RequestTimeout = 45 * time.Second
	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	if cfg.ModelProvider == ProviderGemini && cfg.ModelAPIKey == "" {
		return nil, fmt.Errorf("MODEL_API_KEY is required for the gemini provider")
	}

	return cfg, nil
}

package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/ganeshsabale-99/DMP-Project/pkg/config"
)

type Config struct {
	Provider   string
	Model      string
	APIKey     string
	APIURL     string
	MaxTokens  int
	MaxRetries int
	Timeout    time.Duration
}

// LoadConfig reads LLM_* variables. An empty Provider means no LLM.
func LoadConfig() Config {
	return Config{
		Provider:   config.GetEnv("LLM_PROVIDER", ""),
		Model:      config.GetEnv("LLM_MODEL", ""),
		APIKey:     config.GetEnv("LLM_API_KEY", ""),
		APIURL:     config.GetEnv("LLM_API_URL", ""),
		MaxTokens:  config.GetEnvInt("LLM_MAX_TOKENS", 0),
		MaxRetries: config.GetEnvInt("LLM_MAX_RETRIES", 0),
		Timeout:    config.GetEnvDuration("LLM_TIMEOUT", 60*time.Second),
	}
}

func (c Config) Enabled() bool { return strings.TrimSpace(c.Provider) != "" }

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	case "ollama":
		return NewOllamaProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

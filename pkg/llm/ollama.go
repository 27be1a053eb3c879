package llm

import "strings"

// NewOllamaProvider talks to Ollama's OpenAI-compatible endpoint
func NewOllamaProvider(cfg Config) *OpenAIProvider {
	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = "http://localhost:11434/v1"
	}
	p := NewOpenAIProvider(cfg)
	p.transport = newTransport("ollama", cfg)
	return p
}

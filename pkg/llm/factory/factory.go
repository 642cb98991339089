package factory

import (
	"fmt"

	"finance-rag-be/pkg/llm"
	"finance-rag-be/pkg/llm/gemini"
	"finance-rag-be/pkg/llm/ollama"

	"google.golang.org/genai"
)

type Config struct {
	Provider    string
	Model       string
	BaseURL     string
	Temperature float64
	Client      *genai.Client // required for gemini
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.Client == nil {
			return nil, fmt.Errorf("gemini provider requires a genai client")
		}
		return gemini.NewGeminiProvider(cfg.Client, cfg.Model, cfg.Temperature), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Temperature), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

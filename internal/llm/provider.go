package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// GenerationConfig tunes a single model call.
type GenerationConfig struct {
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
	// ResponseMIMEType hints the model to emit e.g. application/json.
	// Providers that cannot honor it ignore it.
	ResponseMIMEType string
}

// GenerateRequest is one model call: a user prompt plus a system
// instruction. The response is raw text; it may be empty, prose,
// fenced, or JSON-like. The caller extracts structure from it.
type GenerateRequest struct {
	Prompt            string
	SystemInstruction string
	Config            GenerationConfig
}

// Provider is the single external network dependency of the
// interpretation pipeline. Implementations must surface quota and
// rate-limit rejections in the returned error text so the caller can
// classify them.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

type Config struct {
	Provider      string
	Model         string
	GeminiBaseURL string
	GeminiAPIKey  string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	Timeout       time.Duration
}

func NewProvider(cfg Config) (Provider, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(client, cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.Model), nil
	case "openai":
		return NewOpenAIProvider(client, cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

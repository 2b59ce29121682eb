package llm

import (
	"context"
	"net/http"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// GeminiProvider uses Google's OpenAI-compatible endpoint, which shares
// the chat-completions wire format but lives under a different base URL.
type GeminiProvider struct {
	inner *OpenAIProvider
}

func NewGeminiProvider(client *http.Client, baseURL, apiKey, model string) *GeminiProvider {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiProvider{inner: NewOpenAIProvider(client, baseURL, apiKey, model)}
}

func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return p.inner.Generate(ctx, req)
}

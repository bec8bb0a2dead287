package ai

import (
	"context"
	"net/http"
	"time"
)

const defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekProvider implements Completer against the DeepSeek API, which
// speaks the OpenAI chat wire format.
type DeepSeekProvider struct {
	chat *chatClient
}

// NewDeepSeekProvider creates a DeepSeek provider. baseURL may be empty to
// use the public API.
func NewDeepSeekProvider(apiKey, baseURL, model string, temperature float64, timeout time.Duration) *DeepSeekProvider {
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}
	if model == "" {
		model = "deepseek-chat"
	}
	return &DeepSeekProvider{
		chat: &chatClient{
			name:        "deepseek",
			client:      &http.Client{Timeout: timeout},
			url:         baseURL + "/chat/completions",
			apiKey:      apiKey,
			model:       model,
			temperature: temperature,
		},
	}
}

// Complete produces a chat completion.
func (p *DeepSeekProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	return p.chat.complete(ctx, messages)
}

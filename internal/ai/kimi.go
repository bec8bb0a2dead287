package ai

import (
	"context"
	"net/http"
	"time"
)

const defaultKimiBaseURL = "https://api.moonshot.cn/v1"

// KimiProvider implements Completer against the Moonshot Kimi API, which
// speaks the OpenAI chat wire format.
type KimiProvider struct {
	chat *chatClient
}

// NewKimiProvider creates a Kimi provider. baseURL may be empty to use the
// public API.
func NewKimiProvider(apiKey, baseURL, model string, temperature float64, timeout time.Duration) *KimiProvider {
	if baseURL == "" {
		baseURL = defaultKimiBaseURL
	}
	if model == "" {
		model = "moonshot-v1-8k"
	}
	return &KimiProvider{
		chat: &chatClient{
			name:        "kimi",
			client:      &http.Client{Timeout: timeout},
			url:         baseURL + "/chat/completions",
			apiKey:      apiKey,
			model:       model,
			temperature: temperature,
		},
	}
}

// Complete produces a chat completion.
func (p *KimiProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	return p.chat.complete(ctx, messages)
}

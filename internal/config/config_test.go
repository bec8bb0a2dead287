package config

import "testing"

func TestAIKeyFor(t *testing.T) {
	cfg := AIConfig{
		DeepgramAPIKey: "dg-key",
		OpenAIAPIKey:   "oa-key",
		KimiAPIKey:     "kimi-key",
		DeepseekAPIKey: "ds-key",
	}

	tests := []struct {
		provider string
		want     string
	}{
		{"deepgram", "dg-key"},
		{"openai", "oa-key"},
		{"whisper", "oa-key"},
		{"kimi", "kimi-key"},
		{"deepseek", "ds-key"},
		{"azure", ""},
	}
	for _, tt := range tests {
		if got := cfg.AIKeyFor(tt.provider); got != tt.want {
			t.Errorf("AIKeyFor(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

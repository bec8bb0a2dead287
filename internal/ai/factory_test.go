package ai

import (
	"testing"
	"time"

	"github.com/dentia/clinic-api/internal/config"
)

func baseAIConfig() config.AIConfig {
	return config.AIConfig{
		STTProvider:    "deepgram",
		LLMProvider:    "openai",
		TTSProvider:    "deepgram",
		LLMTemperature: 0.3,
		RequestTimeout: 30 * time.Second,
	}
}

func TestNewProviders(t *testing.T) {
	providers, err := NewProviders(baseAIConfig())
	if err != nil {
		t.Fatalf("NewProviders failed: %v", err)
	}
	if providers.Transcriber == nil || providers.Completer == nil || providers.Speaker == nil {
		t.Error("expected all three capabilities to be wired")
	}
}

func TestNewProvidersWhisperAndDeepseek(t *testing.T) {
	cfg := baseAIConfig()
	cfg.STTProvider = "whisper"
	cfg.LLMProvider = "deepseek"
	cfg.TTSProvider = "openai"

	providers, err := NewProviders(cfg)
	if err != nil {
		t.Fatalf("NewProviders failed: %v", err)
	}
	if _, ok := providers.Completer.(*DeepSeekProvider); !ok {
		t.Errorf("expected DeepSeek completer, got %T", providers.Completer)
	}
	if _, ok := providers.Transcriber.(*OpenAIProvider); !ok {
		t.Errorf("expected OpenAI transcriber, got %T", providers.Transcriber)
	}
}

func TestNewProvidersRejectsUnknownVendor(t *testing.T) {
	cfg := baseAIConfig()
	cfg.LLMProvider = "claude"
	if _, err := NewProviders(cfg); err == nil {
		t.Error("expected error for unknown LLM provider")
	}

	cfg = baseAIConfig()
	cfg.STTProvider = "azure"
	if _, err := NewProviders(cfg); err == nil {
		t.Error("expected error for unknown STT provider")
	}

	cfg = baseAIConfig()
	cfg.TTSProvider = "polly"
	if _, err := NewProviders(cfg); err == nil {
		t.Error("expected error for unknown TTS provider")
	}
}

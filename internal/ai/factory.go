package ai

import (
	"fmt"

	"github.com/dentia/clinic-api/internal/config"
)

// Providers bundles the three capabilities selected from config.
type Providers struct {
	Transcriber Transcriber
	Completer   Completer
	Speaker     Speaker
}

// NewProviders builds the provider set for the configured vendors. An
// unknown vendor name is a startup error, not a runtime fallback.
func NewProviders(cfg config.AIConfig) (*Providers, error) {
	p := &Providers{}

	deepgram := NewDeepgramProvider(cfg.AIKeyFor("deepgram"), "", cfg.Language, cfg.TTSVoice, cfg.RequestTimeout)
	openai := NewOpenAIProvider(cfg.AIKeyFor("openai"), "", cfg.LLMModel, cfg.Language, cfg.TTSVoice, cfg.LLMTemperature, cfg.RequestTimeout)

	switch cfg.STTProvider {
	case "deepgram":
		p.Transcriber = deepgram
	case "whisper":
		p.Transcriber = openai
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s", cfg.STTProvider)
	}

	switch cfg.LLMProvider {
	case "openai":
		p.Completer = openai
	case "kimi":
		p.Completer = NewKimiProvider(cfg.AIKeyFor("kimi"), "", cfg.LLMModel, cfg.LLMTemperature, cfg.RequestTimeout)
	case "deepseek":
		p.Completer = NewDeepSeekProvider(cfg.AIKeyFor("deepseek"), "", cfg.LLMModel, cfg.LLMTemperature, cfg.RequestTimeout)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	switch cfg.TTSProvider {
	case "deepgram":
		p.Speaker = deepgram
	case "openai":
		p.Speaker = openai
	default:
		return nil, fmt.Errorf("unsupported TTS provider: %s", cfg.TTSProvider)
	}

	return p, nil
}

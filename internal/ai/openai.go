package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider implements Transcriber (Whisper), Completer and Speaker
// against the OpenAI API.
type OpenAIProvider struct {
	chat     *chatClient
	client   *http.Client
	baseURL  string
	apiKey   string
	language string
	voice    string
}

// NewOpenAIProvider creates an OpenAI provider. baseURL may be empty to use
// the public API.
func NewOpenAIProvider(apiKey, baseURL, model, language, voice string, temperature float64, timeout time.Duration) *OpenAIProvider {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	client := &http.Client{Timeout: timeout}
	return &OpenAIProvider{
		chat: &chatClient{
			name:        "openai",
			client:      client,
			url:         baseURL + "/chat/completions",
			apiKey:      apiKey,
			model:       model,
			temperature: temperature,
		},
		client:   client,
		baseURL:  baseURL,
		apiKey:   apiKey,
		language: language,
		voice:    voice,
	}
}

// Complete produces a chat completion.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	return p.chat.complete(ctx, messages)
}

// Transcribe sends audio to the Whisper transcription endpoint.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio"+extensionFor(mimeType))
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	writer.WriteField("model", "whisper-1")
	if p.language != "" {
		writer.WriteField("language", p.language)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", upstreamError("openai", resp.StatusCode, string(msg))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode openai response: %w", err)
	}
	return result.Text, nil
}

// Speak synthesises text through the OpenAI speech endpoint.
func (p *OpenAIProvider) Speak(ctx context.Context, text string) ([]byte, string, error) {
	voice := p.voice
	if voice == "" {
		voice = "alloy"
	}
	payload, err := json.Marshal(map[string]string{
		"model": "tts-1",
		"input": text,
		"voice": voice,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", upstreamError("openai", resp.StatusCode, string(msg))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read openai audio: %w", err)
	}
	return audio, "audio/mpeg", nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mp4":
		return ".mp4"
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".mp3"
	}
}

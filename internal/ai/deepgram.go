package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultDeepgramBaseURL = "https://api.deepgram.com"

// DeepgramProvider implements Transcriber and Speaker against the Deepgram
// API.
type DeepgramProvider struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	language string
	voice    string
}

// NewDeepgramProvider creates a Deepgram provider. baseURL may be empty to
// use the public API.
func NewDeepgramProvider(apiKey, baseURL, language, voice string, timeout time.Duration) *DeepgramProvider {
	if baseURL == "" {
		baseURL = defaultDeepgramBaseURL
	}
	return &DeepgramProvider{
		client:   &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		apiKey:   apiKey,
		language: language,
		voice:    voice,
	}
}

// Transcribe sends audio to Deepgram's listen endpoint and returns the top
// transcript.
func (p *DeepgramProvider) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	params := url.Values{}
	params.Set("model", "nova-2")
	params.Set("smart_format", "true")
	if p.language != "" {
		params.Set("language", p.language)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		p.baseURL+"/v1/listen?"+params.Encode(), bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.apiKey)
	req.Header.Set("Content-Type", mimeType)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", upstreamError("deepgram", resp.StatusCode, string(body))
	}

	var result struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode deepgram response: %w", err)
	}

	if len(result.Results.Channels) == 0 || len(result.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return result.Results.Channels[0].Alternatives[0].Transcript, nil
}

// Speak synthesises text through Deepgram's speak endpoint.
func (p *DeepgramProvider) Speak(ctx context.Context, text string) ([]byte, string, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request: %w", err)
	}

	params := url.Values{}
	if p.voice != "" {
		params.Set("model", p.voice)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		p.baseURL+"/v1/speak?"+params.Encode(), bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", upstreamError("deepgram", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read deepgram audio: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return audio, contentType, nil
}

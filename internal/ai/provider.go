// Package ai fronts the external speech and language providers behind
// narrow interfaces. Provider selection is static from config; every call
// carries a context deadline and upstream failures surface as ErrUpstream.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/dentia/clinic-api/internal/models"
)

// Message is one turn of an LLM conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Completer produces a chat completion.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Speaker synthesises speech from text. Returns the audio bytes and their
// content type.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, string, error)
}

const (
	maxRetries  = 3
	baseBackoff = 2 * time.Second
	maxBackoff  = 10 * time.Second
)

// retryable reports whether an upstream status deserves another attempt.
func retryable(status int) bool {
	return status == 429 || status == 503
}

// backoffDelay doubles per attempt (2s, 4s, 8s) capped at maxBackoff.
func backoffDelay(attempt int) time.Duration {
	d := baseBackoff << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// upstreamError wraps a provider failure so handlers can map it to 502.
func upstreamError(provider string, status int, body string) error {
	return fmt.Errorf("%w: %s returned %d: %s", models.ErrUpstream, provider, status, body)
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

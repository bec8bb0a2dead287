package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dentia/clinic-api/internal/models"
)

func newTestChatClient(url string) *chatClient {
	return &chatClient{
		name:        "test",
		client:      &http.Client{Timeout: 5 * time.Second},
		url:         url,
		apiKey:      "key",
		model:       "test-model",
		temperature: 0.3,
	}
}

func TestChatComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"hola"}}]}`))
	}))
	defer server.Close()

	c := newTestChatClient(server.URL)
	got, err := c.complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got != "hola" {
		t.Errorf("expected hola, got %q", got)
	}
}

func TestChatCompleteRetriesRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	c := newTestChatClient(server.URL)
	got, err := c.complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestChatCompleteDoesNotRetryClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad prompt"}`))
	}))
	defer server.Close()

	c := newTestChatClient(server.URL)
	_, err := c.complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected a single call for a 400, got %d", calls)
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	if got := backoffDelay(0); got != 2*time.Second {
		t.Errorf("expected 2s, got %v", got)
	}
	if got := backoffDelay(1); got != 4*time.Second {
		t.Errorf("expected 4s, got %v", got)
	}
	if got := backoffDelay(2); got != 8*time.Second {
		t.Errorf("expected 8s, got %v", got)
	}
	if got := backoffDelay(5); got != maxBackoff {
		t.Errorf("expected cap at %v, got %v", maxBackoff, got)
	}
}

func TestRetryable(t *testing.T) {
	for _, status := range []int{429, 503} {
		if !retryable(status) {
			t.Errorf("expected %d to be retryable", status)
		}
	}
	for _, status := range []int{200, 400, 401, 500, 502} {
		if retryable(status) {
			t.Errorf("expected %d not to be retryable", status)
		}
	}
}

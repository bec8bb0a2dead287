package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dentia/clinic-api/internal/models"
)

func TestDeepgramTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token dg-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "es" {
			t.Errorf("expected language=es, got %q", got)
		}
		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"dolor de muela"}]}]}}`))
	}))
	defer server.Close()

	p := NewDeepgramProvider("dg-key", server.URL, "es", "", 5*time.Second)
	got, err := p.Transcribe(context.Background(), []byte("audio"), "audio/webm")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if got != "dolor de muela" {
		t.Errorf("unexpected transcript: %q", got)
	}
}

func TestDeepgramTranscribeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"err_msg":"invalid credentials"}`))
	}))
	defer server.Close()

	p := NewDeepgramProvider("bad-key", server.URL, "es", "", 5*time.Second)
	if _, err := p.Transcribe(context.Background(), []byte("audio"), "audio/webm"); !errors.Is(err, models.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestDeepgramSpeak(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("model"); got != "aura-celeste-es" {
			t.Errorf("expected voice model in query, got %q", got)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	p := NewDeepgramProvider("dg-key", server.URL, "es", "aura-celeste-es", 5*time.Second)
	audio, contentType, err := p.Speak(context.Background(), "su cita es mañana")
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("unexpected audio payload: %q", audio)
	}
	if contentType != "audio/mpeg" {
		t.Errorf("unexpected content type: %q", contentType)
	}
}

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lightsoft-dev/light-archive/internal/domain"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		key        string
		configured bool
		message    string
	}{
		{"", false, MessageMissing},
		{"pk-123", false, MessageMalformed},
		{"sk-proj-abc", true, MessageConfigured},
	}
	for _, tt := range tests {
		s := NewProvider(Config{APIKey: tt.key}).Status()
		if s.Configured != tt.configured || s.Message != tt.message {
			t.Errorf("key %q: got %+v", tt.key, s)
		}
	}
}

func TestHealthCheck_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": "gpt-4o-mini", "object": "model"}},
		})
	}))
	defer server.Close()

	p := NewProvider(Config{APIKey: "sk-test", BaseURL: server.URL})
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestHealthCheck_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	p := NewProvider(Config{APIKey: "sk-bad", BaseURL: server.URL})
	err := p.HealthCheck(context.Background())
	if !errors.Is(err, domain.ErrAIProviderError) {
		t.Fatalf("expected ErrAIProviderError, got %v", err)
	}
}

func TestHealthCheck_NotConfigured(t *testing.T) {
	err := NewProvider(Config{}).HealthCheck(context.Background())
	if !errors.Is(err, domain.ErrAIProviderError) {
		t.Fatalf("expected ErrAIProviderError, got %v", err)
	}
}

package nl2sql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClientSendsSamplingParameters(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  SELECT 1;  "}}]}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL + "/", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	content, err := client.Complete(context.Background(), ChatRequest{
		Model:       "gpt-4o",
		Messages:    []Message{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}},
		Temperature: 0.1,
		TopP:        0.95,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != "  SELECT 1;  " {
		t.Fatalf("content = %q", content)
	}
	if gotPath != "/v1/chat/completions" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotBody["model"] != "gpt-4o" || gotBody["temperature"] != 0.1 || gotBody["top_p"] != 0.95 {
		t.Fatalf("body = %#v", gotBody)
	}
	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("messages = %#v", gotBody["messages"])
	}
	first := messages[0].(map[string]any)
	if first["role"] != "system" {
		t.Fatalf("first message role = %v", first["role"])
	}
}

func TestOpenAIClientReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	_, err = client.Complete(context.Background(), ChatRequest{Model: "gpt-4o"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests || !strings.Contains(statusErr.Body, "quota") {
		t.Fatalf("status error = %#v", statusErr)
	}
}

func TestOpenAIClientRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client, _ := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test"})
	if _, err := client.Complete(context.Background(), ChatRequest{Model: "gpt-4o"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewOpenAIClientValidatesConfig(t *testing.T) {
	if _, err := NewOpenAIClient(OpenAIConfig{APIKey: "k"}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := NewOpenAIClient(OpenAIConfig{BaseURL: "https://api.openai.com"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

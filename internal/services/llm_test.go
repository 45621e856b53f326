package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"playhub/internal/config"
)

func TestChatOpenAI(t *testing.T) {
	// 模拟 API 服务器
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Expected Bearer test-token, got %s", r.Header.Get("Authorization"))
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "test-model" {
			t.Errorf("model = %v", body["model"])
		}
		if _, ok := body["response_format"]; !ok {
			t.Errorf("json mode should set response_format")
		}

		var resp ChatResponse
		resp.Choices = append(resp.Choices, struct {
			Message ChatMessage `json:"message"`
		}{Message: ChatMessage{Role: "assistant", Content: " {\"ok\":true} "}})
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	s := NewLLMService(config.OpenAIProvider{BaseURL: server.URL, APIKey: "test-token", Model: "test-model"})
	out, err := s.Chat(context.Background(), "system", "user", true)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("Chat = %q", out)
	}
}

func TestChatOllama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["stream"] != false {
			t.Errorf("stream should be false")
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{Message: ChatMessage{Role: "assistant", Content: "你好"}})
	}))
	defer server.Close()

	s := NewLLMService(config.OllamaProvider{BaseURL: server.URL, Model: "qwen"})
	out, err := s.Chat(context.Background(), "system", "user", false)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if out != "你好" {
		t.Errorf("Chat = %q", out)
	}
}

func TestChatHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewLLMService(config.OpenAIProvider{BaseURL: server.URL, APIKey: "k", Model: "m"})
	if _, err := s.Chat(context.Background(), "s", "u", false); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestChatDisabled(t *testing.T) {
	s := NewLLMService(nil)
	if _, err := s.Chat(context.Background(), "s", "u", false); !errors.Is(err, ErrAIDisabled) {
		t.Fatalf("err = %v, want ErrAIDisabled", err)
	}
}

func TestExtractJSONObject(t *testing.T) {
	cases := []string{
		`{"meta_title":"x"}`,
		"```json\n{\"meta_title\":\"x\"}\n```",
		`Sure! Here it is: {"meta_title":"x"} Hope this helps.`,
	}
	for _, in := range cases {
		raw, err := extractJSONObject(in)
		if err != nil {
			t.Errorf("extractJSONObject(%q) failed: %v", in, err)
			continue
		}
		var v struct {
			MetaTitle string `json:"meta_title"`
		}
		if err := json.Unmarshal(raw, &v); err != nil || v.MetaTitle != "x" {
			t.Errorf("extractJSONObject(%q) = %s", in, raw)
		}
	}
	if _, err := extractJSONObject("no json here"); err == nil {
		t.Error("expected error for plain text")
	}
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"playhub/internal/config"

	"github.com/go-resty/resty/v2"
)

var ErrAIDisabled = errors.New("ai provider not configured")

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse OpenAI 兼容接口的响应
type ChatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// ollamaChatResponse Ollama /api/chat 非流式响应
type ollamaChatResponse struct {
	Message ChatMessage `json:"message"`
}

// LLMService 调用配置的大模型（OpenAI 兼容接口或 Ollama）
type LLMService struct {
	provider config.AIProvider
	http     *resty.Client
}

func NewLLMService(provider config.AIProvider) *LLMService {
	s := &LLMService{provider: provider}
	if provider != nil {
		s.http = resty.New().SetTimeout(provider.Timeout())
	}
	return s
}

func (s *LLMService) Enabled() bool {
	return s != nil && s.provider != nil
}

// Chat 发送 system + user 两条消息，返回模型回复文本。jsonMode 要求模型输出 JSON 对象。
func (s *LLMService) Chat(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	if !s.Enabled() {
		return "", ErrAIDisabled
	}
	messages := []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}

	switch p := s.provider.(type) {
	case config.OpenAIProvider:
		return s.chatOpenAI(ctx, p, messages, jsonMode)
	case config.OllamaProvider:
		return s.chatOllama(ctx, p, messages, jsonMode)
	}
	return "", fmt.Errorf("unsupported provider: %s", s.provider.Kind())
}

func (s *LLMService) chatOpenAI(ctx context.Context, p config.OpenAIProvider, messages []ChatMessage, jsonMode bool) (string, error) {
	body := map[string]any{
		"model":       p.Model,
		"messages":    messages,
		"temperature": 0.3,
	}
	if jsonMode {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	var resp ChatResponse
	r, err := s.http.R().SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp).
		Post(p.Endpoint() + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if r.IsError() {
		return "", fmt.Errorf("openai chat: %s; body: %s", r.Status(), abbreviate(r.String(), 500))
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (s *LLMService) chatOllama(ctx context.Context, p config.OllamaProvider, messages []ChatMessage, jsonMode bool) (string, error) {
	body := map[string]any{
		"model":    p.Model,
		"messages": messages,
		"stream":   false,
		"options":  map[string]any{"temperature": 0.3},
	}
	if jsonMode {
		body["format"] = "json"
	}

	var resp ollamaChatResponse
	r, err := s.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp).
		Post(p.Endpoint() + "/api/chat")
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if r.IsError() {
		return "", fmt.Errorf("ollama chat: %s; body: %s", r.Status(), abbreviate(r.String(), 500))
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

// extractJSONObject 从模型输出中取出 JSON 对象：支持 ```json 代码块和前后夹杂说明文字
func extractJSONObject(content string) (json.RawMessage, error) {
	s := strings.TrimSpace(content)
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := strings.TrimPrefix(s[idx+3:], "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = strings.TrimSpace(rest[:j])
		}
	}
	if json.Valid([]byte(s)) && strings.HasPrefix(s, "{") {
		return json.RawMessage(s), nil
	}
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			inner := s[i : j+1]
			if json.Valid([]byte(inner)) {
				return json.RawMessage(inner), nil
			}
		}
	}
	return nil, fmt.Errorf("no JSON object in model output: %s", abbreviate(s, 200))
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

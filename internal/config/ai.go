package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed ai_provider.schema.json
var aiProviderSchema []byte

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultAITimeout     = 60 * time.Second
)

// AIProvider 是 OpenAIProvider 或 OllamaProvider
type AIProvider interface {
	Kind() string
	Endpoint() string
	ModelName() string
	Timeout() time.Duration
}

type OpenAIProvider struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (p OpenAIProvider) Kind() string           { return ProviderOpenAI }
func (p OpenAIProvider) Endpoint() string       { return strings.TrimRight(p.BaseURL, "/") }
func (p OpenAIProvider) ModelName() string      { return p.Model }
func (p OpenAIProvider) Timeout() time.Duration { return seconds(p.TimeoutSeconds) }

type OllamaProvider struct {
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (p OllamaProvider) Kind() string           { return ProviderOllama }
func (p OllamaProvider) Endpoint() string       { return strings.TrimRight(p.BaseURL, "/") }
func (p OllamaProvider) ModelName() string      { return p.Model }
func (p OllamaProvider) Timeout() time.Duration { return seconds(p.TimeoutSeconds) }

func seconds(n int) time.Duration {
	if n <= 0 {
		return defaultAITimeout
	}
	return time.Duration(n) * time.Second
}

// ParseAIProvider 先用 JSON Schema 校验，再按 type 解码成具体类型。
// 空输入表示未配置 AI，返回 nil, nil。
func ParseAIProvider(raw []byte) (AIProvider, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}

	res, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(aiProviderSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("ai provider: %w", err)
	}
	if !res.Valid() {
		var msgs []string
		for i, e := range res.Errors() {
			if i >= 5 {
				break
			}
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("ai provider: %s", strings.Join(msgs, "; "))
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("ai provider: %w", err)
	}

	switch head.Type {
	case ProviderOpenAI:
		var p OpenAIProvider
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("ai provider: %w", err)
		}
		if p.BaseURL == "" {
			p.BaseURL = defaultOpenAIBaseURL
		}
		return p, nil
	case ProviderOllama:
		var p OllamaProvider
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("ai provider: %w", err)
		}
		if p.BaseURL == "" {
			p.BaseURL = defaultOllamaBaseURL
		}
		return p, nil
	}
	return nil, fmt.Errorf("ai provider: unknown type %q", head.Type)
}

package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"playhub/internal/config"
	"playhub/internal/utils"
)

// fakeLLM 依次返回 replies 中的内容，并记录收到的最后一条 user 消息
func fakeLLM(t *testing.T, replies ...string) (*LLMService, *atomic.Int32, *atomic.Value) {
	t.Helper()
	var calls atomic.Int32
	var lastUser atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []ChatMessage `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) == 2 {
			lastUser.Store(body.Messages[1].Content)
		}
		n := int(calls.Add(1)) - 1
		if n >= len(replies) {
			n = len(replies) - 1
		}
		var resp ChatResponse
		resp.Choices = append(resp.Choices, struct {
			Message ChatMessage `json:"message"`
		}{Message: ChatMessage{Role: "assistant", Content: replies[n]}})
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return NewLLMService(config.OpenAIProvider{BaseURL: server.URL, APIKey: "k", Model: "m"}), &calls, &lastUser
}

func TestSEOGenerateClampsWidth(t *testing.T) {
	longTitle := strings.Repeat("超级", 40)
	reply := `{"meta_title":"` + longTitle + `","meta_description":"` + strings.Repeat("好玩", 100) + `","keywords":"益智,休闲"}`
	llm, _, _ := fakeLLM(t, reply)

	out, err := NewSEOService(llm, nil).Generate(context.Background(), SEORequest{Title: "超级方块", Locale: "zh"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if utils.IsOverLimit(out.MetaTitle, utils.MetaTitleLimit) {
		t.Errorf("meta_title over limit: width %d", utils.CountWidth(out.MetaTitle))
	}
	if utils.IsOverLimit(out.MetaDescription, utils.MetaDescriptionLimit) {
		t.Errorf("meta_description over limit: width %d", utils.CountWidth(out.MetaDescription))
	}
	if out.Keywords != "益智,休闲" {
		t.Errorf("keywords = %q", out.Keywords)
	}
}

func TestSEOGenerateRetriesMalformedOutput(t *testing.T) {
	llm, calls, _ := fakeLLM(t,
		"I cannot answer in JSON",
		`{"meta_title":""}`,
		"```json\n{\"meta_title\":\"Snake\",\"meta_description\":\"Classic snake game.\"}\n```",
	)
	out, err := NewSEOService(llm, nil).Generate(context.Background(), SEORequest{Title: "Snake", Locale: "en"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out.MetaTitle != "Snake" || calls.Load() != 3 {
		t.Errorf("out=%+v calls=%d", out, calls.Load())
	}
}

func TestSEOGenerateGivesUpAfterMaxAttempts(t *testing.T) {
	llm, calls, _ := fakeLLM(t, "nope")
	if _, err := NewSEOService(llm, nil).Generate(context.Background(), SEORequest{Title: "x", Locale: "en"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != seoMaxAttempts {
		t.Errorf("calls = %d, want %d", calls.Load(), seoMaxAttempts)
	}
}

func TestSEOGenerateUsesSourcePage(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(gamePage))
	}))
	defer page.Close()

	llm, _, lastUser := fakeLLM(t, `{"meta_title":"Star Miner","meta_description":"Idle mining in space."}`)
	s := NewSEOService(llm, NewCrawlerService(0))
	if _, err := s.Generate(context.Background(), SEORequest{Title: "Star Miner", Locale: "en", SourceURL: page.URL}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if user, _ := lastUser.Load().(string); !strings.Contains(user, "mining drones") {
		t.Errorf("prompt missing source page text: %q", user)
	}
}

func TestSEOGenerateDisabled(t *testing.T) {
	if _, err := NewSEOService(NewLLMService(nil), nil).Generate(context.Background(), SEORequest{Title: "x"}); err != ErrAIDisabled {
		t.Fatalf("err = %v", err)
	}
}

func TestLanguageName(t *testing.T) {
	if got := languageName("zh"); got != "Chinese" {
		t.Errorf("languageName(zh) = %q", got)
	}
	if got := languageName("es"); got != "Spanish" {
		t.Errorf("languageName(es) = %q", got)
	}
}

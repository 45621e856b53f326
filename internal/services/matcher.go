package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const (
	MatchSourceAI      = "ai"
	MatchSourceKeyword = "keyword"

	defaultMatchMax = 3
)

type Candidate struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type MatchRequest struct {
	Title       string
	Description string
	Candidates  []Candidate
	Max         int
}

type MatchResult struct {
	IDs    []uint `json:"ids"`
	Source string `json:"source"`
}

// TaxonomyMatcher 为游戏推荐分类/标签。大模型不可用或输出无法解析时退回关键词匹配。
type TaxonomyMatcher struct {
	llm *LLMService
}

func NewTaxonomyMatcher(llm *LLMService) *TaxonomyMatcher {
	return &TaxonomyMatcher{llm: llm}
}

func (m *TaxonomyMatcher) Match(ctx context.Context, req MatchRequest) MatchResult {
	if req.Max <= 0 {
		req.Max = defaultMatchMax
	}
	if len(req.Candidates) == 0 {
		return MatchResult{IDs: []uint{}, Source: MatchSourceKeyword}
	}

	if m.llm.Enabled() {
		ids, err := m.matchAI(ctx, req)
		if err == nil {
			return MatchResult{IDs: ids, Source: MatchSourceAI}
		}
		slog.Warn("ai taxonomy match failed, using keywords", "error", err)
	}
	return MatchResult{IDs: keywordMatch(req), Source: MatchSourceKeyword}
}

func (m *TaxonomyMatcher) matchAI(ctx context.Context, req MatchRequest) ([]uint, error) {
	var list strings.Builder
	for _, c := range req.Candidates {
		fmt.Fprintf(&list, "%d: %s\n", c.ID, c.Name)
	}
	system := fmt.Sprintf(`You classify browser games. Choose at most %d of the candidates that best describe the game.
Reply with a single JSON object: {"ids": [1, 2]}. Use only ids from the list.`, req.Max)
	user := fmt.Sprintf("Game title: %s\nDescription: %s\nCandidates:\n%s", req.Title, req.Description, list.String())

	content, err := m.llm.Chat(ctx, system, user, true)
	if err != nil {
		return nil, err
	}
	raw, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}
	var out struct {
		IDs []uint `json:"ids"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode match json: %w", err)
	}

	known := make(map[uint]bool, len(req.Candidates))
	for _, c := range req.Candidates {
		known[c.ID] = true
	}
	ids := make([]uint, 0, req.Max)
	seen := make(map[uint]bool)
	for _, id := range out.IDs {
		if !known[id] || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		if len(ids) == req.Max {
			break
		}
	}
	return ids, nil
}

// keywordMatch 候选名出现在标题或描述中（忽略大小写）即命中
func keywordMatch(req MatchRequest) []uint {
	text := strings.ToLower(req.Title + " " + req.Description)
	ids := make([]uint, 0, req.Max)
	for _, c := range req.Candidates {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" || !strings.Contains(text, name) {
			continue
		}
		ids = append(ids, c.ID)
		if len(ids) == req.Max {
			break
		}
	}
	return ids
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"playhub/internal/utils"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	seoMaxAttempts     = 3
	sourceContextWidth = 2000
)

type SEORequest struct {
	Title       string
	Description string
	Locale      string
	SourceURL   string
}

type SEOText struct {
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	Keywords        string `json:"keywords"`
}

// SEOService 用大模型生成游戏页的 meta 文案，结果按显示宽度截断
type SEOService struct {
	llm     *LLMService
	crawler *CrawlerService
}

func NewSEOService(llm *LLMService, crawler *CrawlerService) *SEOService {
	return &SEOService{llm: llm, crawler: crawler}
}

func (s *SEOService) Generate(ctx context.Context, req SEORequest) (*SEOText, error) {
	if !s.llm.Enabled() {
		return nil, ErrAIDisabled
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.New("title is required")
	}

	var source string
	if req.SourceURL != "" && s.crawler != nil {
		text, err := s.crawler.FetchText(ctx, req.SourceURL)
		if err != nil {
			slog.Warn("fetch source page failed, generating without it", "url", req.SourceURL, "error", err)
		} else {
			source = utils.TruncateWidth(text, sourceContextWidth)
		}
	}

	system := seoSystemPrompt(req.Locale)
	user := seoUserPrompt(req, source)

	var lastErr error
	for attempt := 1; attempt <= seoMaxAttempts; attempt++ {
		content, err := s.llm.Chat(ctx, system, user, true)
		if err != nil {
			return nil, fmt.Errorf("generate seo: %w", err)
		}
		out, err := parseSEOText(content)
		if err == nil {
			return out, nil
		}
		lastErr = err
		slog.Warn("malformed seo output, retrying", "attempt", attempt, "error", err)
	}
	return nil, fmt.Errorf("generate seo: %w", lastErr)
}

func parseSEOText(content string) (*SEOText, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}
	var out SEOText
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode seo json: %w", err)
	}
	out.MetaTitle = strings.TrimSpace(out.MetaTitle)
	out.MetaDescription = strings.TrimSpace(out.MetaDescription)
	out.Keywords = strings.TrimSpace(out.Keywords)
	if out.MetaTitle == "" || out.MetaDescription == "" {
		return nil, errors.New("seo json missing meta_title or meta_description")
	}

	out.MetaTitle = utils.TruncateWidth(out.MetaTitle, utils.MetaTitleLimit)
	out.MetaDescription = utils.TruncateWidth(out.MetaDescription, utils.MetaDescriptionLimit)
	out.Keywords = utils.TruncateWidth(out.Keywords, utils.KeywordsLimit)
	return &out, nil
}

// languageName 把 "zh" 转成 "Chinese"，提示词里用英文语言名
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

func seoSystemPrompt(loc string) string {
	return fmt.Sprintf(`You write SEO metadata for an online game portal.
Answer in %s only. Reply with a single JSON object:
{"meta_title": "...", "meta_description": "...", "keywords": "comma, separated, keywords"}
Width rules: CJK and other non-ASCII characters count as 2, ASCII as 1.
meta_title must fit in %d width units, meta_description in %d.`,
		languageName(loc), utils.MetaTitleLimit, utils.MetaDescriptionLimit)
}

func seoUserPrompt(req SEORequest, source string) string {
	var b strings.Builder
	b.WriteString("Game title: ")
	b.WriteString(req.Title)
	b.WriteString("\n")
	if d := strings.TrimSpace(req.Description); d != "" {
		b.WriteString("Description:\n")
		b.WriteString(utils.TruncateWidth(d, sourceContextWidth))
		b.WriteString("\n")
	}
	if source != "" {
		b.WriteString("Text from the game's official page:\n")
		b.WriteString(source)
		b.WriteString("\n")
	}
	return b.String()
}

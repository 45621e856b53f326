package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"playhub/internal/utils"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

const maxPageBytes = 5 << 20

// CrawlerService 抓取游戏官网/介绍页正文，作为生成 SEO 文案的参考
type CrawlerService struct {
	client    *http.Client
	sanitizer *bluemonday.Policy
}

func NewCrawlerService(timeout time.Duration) *CrawlerService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CrawlerService{
		client:    &http.Client{Timeout: timeout},
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// FetchText 抓取页面，readability 提取正文后清洗并转成纯文本
func (s *CrawlerService) FetchText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; PlayHubBot/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), nil)
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}

	clean := s.sanitizer.Sanitize(article.Content)
	return utils.PlainText(clean), nil
}

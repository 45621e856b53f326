package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"playhub/internal/locale"
	"playhub/internal/models"
	"playhub/internal/utils"

	"github.com/mmcdole/gofeed"
	"gorm.io/gorm"
)

// FeedImporter 从游戏分发平台的 RSS/Atom 源导入游戏草稿（未发布）
type FeedImporter struct {
	db     *gorm.DB
	parser *gofeed.Parser
}

type ImportResult struct {
	Created []string `json:"created"` // 新建游戏的 slug
	Skipped int      `json:"skipped"` // 已存在或缺少链接
}

func NewFeedImporter(db *gorm.DB) *FeedImporter {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}
	return &FeedImporter{db: db, parser: parser}
}

// Import 解析订阅源，每个条目创建一个未发布的游戏和一条 loc 语言的翻译。
// 已存在同一链接的游戏会被跳过。
func (f *FeedImporter) Import(ctx context.Context, feedURL, loc string) (*ImportResult, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	loc = locale.Normalize(loc)
	result := &ImportResult{Created: []string{}}
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			result.Skipped++
			continue
		}

		var exists int64
		if err := f.db.WithContext(ctx).Model(&models.Game{}).Where("url = ?", link).Count(&exists).Error; err != nil {
			return nil, fmt.Errorf("check game: %w", err)
		}
		if exists > 0 {
			result.Skipped++
			continue
		}

		slug, err := f.uniqueSlug(ctx, item.Title, link)
		if err != nil {
			return nil, err
		}

		description := item.Content
		if description == "" {
			description = item.Description
		}

		game := models.Game{
			Slug:      slug,
			URL:       link,
			SourceURL: link,
			Thumbnail: itemImage(item),
			Translations: []models.GameTranslation{{
				Locale:      loc,
				Title:       strings.TrimSpace(item.Title),
				Description: utils.PlainText(description),
			}},
		}
		if item.PublishedParsed != nil {
			game.CreatedAt = *item.PublishedParsed
		}
		if err := f.db.WithContext(ctx).Create(&game).Error; err != nil {
			slog.Error("import feed item failed", "link", link, "error", err)
			result.Skipped++
			continue
		}
		result.Created = append(result.Created, slug)
	}

	slog.Info("feed imported", "url", feedURL, "created", len(result.Created), "skipped", result.Skipped)
	return result, nil
}

// itemImage 优先 <image>，其次图片类型的 enclosure
func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

func (f *FeedImporter) uniqueSlug(ctx context.Context, title, link string) (string, error) {
	base := utils.Slugify(title)
	if base == "" {
		h := fnv.New32a()
		h.Write([]byte(link))
		base = fmt.Sprintf("game-%08x", h.Sum32())
	}
	slug := base
	for i := 2; i < 100; i++ {
		var g models.Game
		err := f.db.WithContext(ctx).Select("id").Where("slug = ?", slug).Take(&g).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q", base)
}

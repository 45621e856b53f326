package services

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"playhub/internal/locale"
	"playhub/internal/models"
	"playhub/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTagNotFound         = errors.New("tag not found")
	ErrTranslationNotFound = errors.New("translation not found")
)

const (
	SortHot = "hot"
	SortNew = "new"

	defaultPerPage = 24
	maxPerPage     = 100
	catalogTTL     = 5 * time.Minute
)

type GameQuery struct {
	Locale       string
	Page         int
	PerPage      int
	Sort         string // hot|new
	CategorySlug string
	TagSlug      string
}

type GameCard struct {
	ID        uint    `json:"id"`
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	Excerpt   string  `json:"excerpt"`
	Thumbnail string  `json:"thumbnail"`
	Likes     int     `json:"likes"`
	Dislikes  int     `json:"dislikes"`
	Plays     int     `json:"plays"`
	HotScore  float64 `json:"hot_score"`
}

type GamePage struct {
	Games   []GameCard `json:"games"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Total   int64      `json:"total"`
	HasMore bool       `json:"has_more"`
}

type TaxonomyItem struct {
	ID          uint   `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type GameView struct {
	ID              uint              `json:"id"`
	Slug            string            `json:"slug"`
	URL             string            `json:"url"`
	Thumbnail       string            `json:"thumbnail"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	DescriptionHTML template.HTML     `json:"-"`
	InstructionHTML template.HTML     `json:"-"`
	Instructions    string            `json:"instructions"`
	MetaTitle       string            `json:"meta_title"`
	MetaDescription string            `json:"meta_description"`
	Keywords        string            `json:"keywords"`
	Likes           int               `json:"likes"`
	Dislikes        int               `json:"dislikes"`
	Plays           int               `json:"plays"`
	Categories      []TaxonomyItem    `json:"categories"`
	Tags            []TaxonomyItem    `json:"tags"`
	Locales         []string          `json:"locales"`
	Resolution      locale.Resolution `json:"resolution"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type PageMeta struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

type SiteInfo struct {
	SiteName        string `json:"site_name"`
	Tagline         string `json:"tagline"`
	MetaDescription string `json:"meta_description"`
	FooterText      string `json:"footer_text"`
	Logo            string `json:"logo"`
}

// SitemapGame 生成 sitemap 用，Locales 为已有翻译的语言
type SitemapGame struct {
	Slug      string
	UpdatedAt time.Time
	Locales   []string
}

// CatalogService 所有多语言读取都经过 locale 包的回退规则
type CatalogService struct {
	db            *gorm.DB
	cache         *utils.Cache
	revalidator   *Revalidator
	ranking       *RankingService
	defaultLocale string
}

func NewCatalogService(db *gorm.DB, cache *utils.Cache, revalidator *Revalidator, ranking *RankingService, defaultLocale string) *CatalogService {
	return &CatalogService{
		db:            db,
		cache:         cache,
		revalidator:   revalidator,
		ranking:       ranking,
		defaultLocale: defaultLocale,
	}
}

func (s *CatalogService) DefaultLocale() string { return s.defaultLocale }

// ListGames 已发布游戏分页列表
func (s *CatalogService) ListGames(ctx context.Context, q GameQuery) (*GamePage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	if q.Sort != SortNew {
		q.Sort = SortHot
	}

	key := fmt.Sprintf("games:%s:%s:%s:%s:%d:%d", q.Locale, q.Sort, q.CategorySlug, q.TagSlug, q.Page, q.PerPage)
	if cached, ok := s.cache.Get(key).(*GamePage); ok {
		return cached, nil
	}

	query := s.db.WithContext(ctx).Model(&models.Game{}).Where("games.is_published = ?", true)
	if q.CategorySlug != "" {
		sub := s.db.Table("game_categories").
			Select("game_categories.game_id").
			Joins("JOIN categories ON categories.id = game_categories.category_id").
			Where("categories.slug = ?", q.CategorySlug)
		query = query.Where("games.id IN (?)", sub)
	}
	if q.TagSlug != "" {
		sub := s.db.Table("game_tags").
			Select("game_tags.game_id").
			Joins("JOIN tags ON tags.id = game_tags.tag_id").
			Where("tags.slug = ?", q.TagSlug)
		query = query.Where("games.id IN (?)", sub)
	}
	// Count 和 Find 共用条件
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count games: %w", err)
	}

	order := "games.hot_score DESC, games.likes DESC, games.id DESC"
	if q.Sort == SortNew {
		order = "games.created_at DESC, games.id DESC"
	}

	var games []models.Game
	err := query.Preload("Translations").
		Order(order).
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	page := &GamePage{
		Games:   make([]GameCard, 0, len(games)),
		Page:    q.Page,
		PerPage: q.PerPage,
		Total:   total,
		HasMore: int64(q.Page*q.PerPage) < total,
	}
	for _, g := range games {
		page.Games = append(page.Games, s.card(g, q.Locale))
	}

	s.cache.Set(key, page, catalogTTL, TagGames, TagTaxonomy)
	return page, nil
}

func (s *CatalogService) card(g models.Game, loc string) GameCard {
	tr := locale.Resolve(g.Translations, loc, s.defaultLocale, models.GameTranslation{})
	title := tr.Title
	if title == "" {
		title = g.Slug
	}
	return GameCard{
		ID:        g.ID,
		Slug:      g.Slug,
		Title:     title,
		Excerpt:   utils.MarkdownExcerpt(tr.Description, 120),
		Thumbnail: g.Thumbnail,
		Likes:     g.Likes,
		Dislikes:  g.Dislikes,
		Plays:     g.Plays,
		HotScore:  g.HotScore,
	}
}

// GetGame 按 slug 读取已发布游戏的本地化详情
func (s *CatalogService) GetGame(ctx context.Context, slug, loc string) (*GameView, error) {
	key := "game:" + slug + ":" + loc
	if cached, ok := s.cache.Get(key).(*GameView); ok {
		return cached, nil
	}

	var game models.Game
	err := s.db.WithContext(ctx).
		Preload("Translations").
		Preload("Categories.Translations").
		Preload("Tags.Translations").
		Where("slug = ? AND is_published = ?", slug, true).
		Take(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}

	view := s.gameView(game, loc)
	s.cache.Set(key, view, catalogTTL, GameTag(game.ID), TagGames, TagTaxonomy)
	return view, nil
}

func (s *CatalogService) gameView(g models.Game, loc string) *GameView {
	trs := g.Translations
	def := s.defaultLocale
	tr := locale.Resolve(trs, loc, def, models.GameTranslation{})

	title := locale.ResolveField(trs, loc, def, "title", g.Slug)
	view := &GameView{
		ID:              g.ID,
		Slug:            g.Slug,
		URL:             g.URL,
		Thumbnail:       g.Thumbnail,
		Title:           title,
		Description:     tr.Description,
		DescriptionHTML: utils.RenderMarkdown(tr.Description),
		Instructions:    tr.Instructions,
		InstructionHTML: utils.RenderMarkdown(tr.Instructions),
		MetaTitle:       locale.ResolveField(trs, loc, def, "meta_title", utils.TruncateWidth(title, utils.MetaTitleLimit)),
		MetaDescription: locale.ResolveField(trs, loc, def, "meta_description",
			utils.MarkdownExcerpt(tr.Description, utils.MetaDescriptionLimit)),
		Keywords:   tr.Keywords,
		Likes:      g.Likes,
		Dislikes:   g.Dislikes,
		Plays:      g.Plays,
		Resolution: locale.Describe(trs, loc, def),
		UpdatedAt:  g.UpdatedAt,
	}
	for _, t := range trs {
		view.Locales = append(view.Locales, t.Locale)
	}
	for _, c := range g.Categories {
		view.Categories = append(view.Categories, s.categoryItem(c, loc))
	}
	for _, t := range g.Tags {
		view.Tags = append(view.Tags, s.tagItem(t, loc))
	}
	return view
}

func (s *CatalogService) categoryItem(c models.Category, loc string) TaxonomyItem {
	return TaxonomyItem{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        locale.ResolveField(c.Translations, loc, s.defaultLocale, "name", c.Slug),
		Description: locale.ResolveField(c.Translations, loc, s.defaultLocale, "description", ""),
	}
}

func (s *CatalogService) tagItem(t models.Tag, loc string) TaxonomyItem {
	return TaxonomyItem{
		ID:          t.ID,
		Slug:        t.Slug,
		Name:        locale.ResolveField(t.Translations, loc, s.defaultLocale, "name", t.Slug),
		Description: locale.ResolveField(t.Translations, loc, s.defaultLocale, "description", ""),
	}
}

func (s *CatalogService) ListCategories(ctx context.Context, loc string) ([]TaxonomyItem, error) {
	key := "categories:" + loc
	if cached, ok := s.cache.Get(key).([]TaxonomyItem); ok {
		return cached, nil
	}
	var cats []models.Category
	if err := s.db.WithContext(ctx).Preload("Translations").Order("sort_order ASC, slug ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	items := make([]TaxonomyItem, 0, len(cats))
	for _, c := range cats {
		items = append(items, s.categoryItem(c, loc))
	}
	s.cache.Set(key, items, catalogTTL, TagTaxonomy)
	return items, nil
}

func (s *CatalogService) ListTags(ctx context.Context, loc string) ([]TaxonomyItem, error) {
	key := "tags:" + loc
	if cached, ok := s.cache.Get(key).([]TaxonomyItem); ok {
		return cached, nil
	}
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Preload("Translations").Order("slug ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	items := make([]TaxonomyItem, 0, len(tags))
	for _, t := range tags {
		items = append(items, s.tagItem(t, loc))
	}
	s.cache.Set(key, items, catalogTTL, TagTaxonomy)
	return items, nil
}

// GetCategory 返回分类及其本地化的 SEO 文案
func (s *CatalogService) GetCategory(ctx context.Context, slug, loc string) (*TaxonomyItem, PageMeta, error) {
	var c models.Category
	err := s.db.WithContext(ctx).Preload("Translations").Where("slug = ?", slug).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, PageMeta{}, ErrCategoryNotFound
	}
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("load category: %w", err)
	}
	item := s.categoryItem(c, loc)
	meta := PageMeta{
		Title:           item.Name,
		Description:     item.Description,
		MetaTitle:       locale.ResolveField(c.Translations, loc, s.defaultLocale, "meta_title", item.Name),
		MetaDescription: locale.ResolveField(c.Translations, loc, s.defaultLocale, "meta_description", item.Description),
	}
	return &item, meta, nil
}

func (s *CatalogService) GetTag(ctx context.Context, slug, loc string) (*TaxonomyItem, error) {
	var t models.Tag
	err := s.db.WithContext(ctx).Preload("Translations").Where("slug = ?", slug).Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tag: %w", err)
	}
	item := s.tagItem(t, loc)
	return &item, nil
}

// PageMeta 列表页 SEO 文案；页面类型不存在时返回空值
func (s *CatalogService) PageMeta(ctx context.Context, key, loc string) PageMeta {
	cacheKey := "page:" + key + ":" + loc
	if cached, ok := s.cache.Get(cacheKey).(PageMeta); ok {
		return cached
	}
	var pt models.PageType
	if err := s.db.WithContext(ctx).Preload("Translations").Where("key = ?", key).Take(&pt).Error; err != nil {
		return PageMeta{}
	}
	trs, def := pt.Translations, s.defaultLocale
	title := locale.ResolveField(trs, loc, def, "title", "")
	desc := locale.ResolveField(trs, loc, def, "description", "")
	meta := PageMeta{
		Title:           title,
		Description:     desc,
		MetaTitle:       locale.ResolveField(trs, loc, def, "meta_title", title),
		MetaDescription: locale.ResolveField(trs, loc, def, "meta_description", desc),
	}
	s.cache.Set(cacheKey, meta, catalogTTL, TagSite)
	return meta
}

// SiteInfo 站点名称等全局文案
func (s *CatalogService) SiteInfo(ctx context.Context, loc string) SiteInfo {
	cacheKey := "site:" + loc
	if cached, ok := s.cache.Get(cacheKey).(SiteInfo); ok {
		return cached
	}
	var cfg models.SiteConfig
	info := SiteInfo{SiteName: "PlayHub"}
	err := s.db.WithContext(ctx).Preload("Translations").
		Where("key = ?", models.DefaultSiteConfigKey).Take(&cfg).Error
	if err == nil {
		trs, def := cfg.Translations, s.defaultLocale
		info = SiteInfo{
			SiteName:        locale.ResolveField(trs, loc, def, "site_name", "PlayHub"),
			Tagline:         locale.ResolveField(trs, loc, def, "tagline", ""),
			MetaDescription: locale.ResolveField(trs, loc, def, "meta_description", ""),
			FooterText:      locale.ResolveField(trs, loc, def, "footer_text", ""),
			Logo:            cfg.Logo,
		}
	}
	s.cache.Set(cacheKey, info, catalogTTL, TagSite)
	return info
}

// LoadGame 读取游戏原始数据（含全部翻译、分类、标签），后台使用
func (s *CatalogService) LoadGame(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).
		Preload("Translations").
		Preload("Categories.Translations").
		Preload("Tags.Translations").
		Take(&game, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	return &game, nil
}

// UpsertGameTranslation 每个 (game, locale) 一条，已存在则覆盖
func (s *CatalogService) UpsertGameTranslation(ctx context.Context, gameID uint, tr models.GameTranslation) (*models.GameTranslation, error) {
	tr.Locale = locale.Normalize(tr.Locale)
	if tr.Locale == "" {
		return nil, errors.New("locale is required")
	}

	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", gameID).Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("check game: %w", err)
	}
	if exists == 0 {
		return nil, ErrGameNotFound
	}

	tr.ID = 0
	tr.GameID = gameID
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "game_id"}, {Name: "locale"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "instructions",
			"meta_title", "meta_description", "keywords", "updated_at",
		}),
	}).Create(&tr).Error
	if err != nil {
		return nil, fmt.Errorf("upsert translation: %w", err)
	}

	var saved models.GameTranslation
	if err := s.db.WithContext(ctx).Where("game_id = ? AND locale = ?", gameID, tr.Locale).Take(&saved).Error; err != nil {
		return nil, fmt.Errorf("reload translation: %w", err)
	}
	s.revalidator.Revalidate(ctx, GameTag(gameID), TagGames)
	return &saved, nil
}

func (s *CatalogService) DeleteGameTranslation(ctx context.Context, gameID uint, loc string) error {
	res := s.db.WithContext(ctx).
		Where("game_id = ? AND locale = ?", gameID, locale.Normalize(loc)).
		Delete(&models.GameTranslation{})
	if res.Error != nil {
		return fmt.Errorf("delete translation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTranslationNotFound
	}
	s.revalidator.Revalidate(ctx, GameTag(gameID), TagGames)
	return nil
}

// DeleteGame 在一个事务内删除投票、翻译、分类/标签关联和游戏本身
func (s *CatalogService) DeleteGame(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.Select("id").Take(&game, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGameNotFound
			}
			return err
		}
		if err := tx.Where("game_id = ?", id).Delete(&models.GameVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", id).Delete(&models.GameTranslation{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&game).Association("Categories").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&game).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&game).Error
	})
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return err
		}
		return fmt.Errorf("delete game: %w", err)
	}
	s.revalidator.Revalidate(ctx, GameTag(id), TagGames)
	return nil
}

// SetGameTaxonomy 替换游戏的分类和标签；nil 表示不修改
func (s *CatalogService) SetGameTaxonomy(ctx context.Context, id uint, categoryIDs, tagIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.Select("id").Take(&game, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGameNotFound
			}
			return err
		}
		if categoryIDs != nil {
			var cats []models.Category
			if len(categoryIDs) > 0 {
				if err := tx.Where("id IN ?", categoryIDs).Find(&cats).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&game).Association("Categories").Replace(cats); err != nil {
				return err
			}
		}
		if tagIDs != nil {
			var tags []models.Tag
			if len(tagIDs) > 0 {
				if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&game).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return err
		}
		return fmt.Errorf("set taxonomy: %w", err)
	}
	s.revalidator.Revalidate(ctx, GameTag(id), TagGames, TagTaxonomy)
	return nil
}

// RecordPlay 游玩次数 +1，只影响热度，不碰投票计数
func (s *CatalogService) RecordPlay(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Game{}).
		Where("id = ? AND is_published = ?", id, true).
		UpdateColumn("plays", gorm.Expr("plays + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("record play: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrGameNotFound
	}
	if s.ranking != nil {
		s.ranking.ScheduleUpdate(id)
	}
	return nil
}

// SitemapGames 所有已发布游戏及其已翻译语言
func (s *CatalogService) SitemapGames(ctx context.Context) ([]SitemapGame, error) {
	var games []models.Game
	err := s.db.WithContext(ctx).
		Preload("Translations", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "game_id", "locale")
		}).
		Select("id", "slug", "updated_at").
		Where("is_published = ?", true).
		Order("id ASC").
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("sitemap games: %w", err)
	}
	out := make([]SitemapGame, 0, len(games))
	for _, g := range games {
		item := SitemapGame{Slug: g.Slug, UpdatedAt: g.UpdatedAt}
		for _, t := range g.Translations {
			item.Locales = append(item.Locales, t.Locale)
		}
		out = append(out, item)
	}
	return out, nil
}

// TaxonomyCandidates 供 AI 匹配使用的候选分类/标签（默认语言名称）
func (s *CatalogService) TaxonomyCandidates(ctx context.Context) (categories, tags []Candidate, err error) {
	cats, err := s.ListCategories(ctx, s.defaultLocale)
	if err != nil {
		return nil, nil, err
	}
	tgs, err := s.ListTags(ctx, s.defaultLocale)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range cats {
		categories = append(categories, Candidate{ID: c.ID, Name: strings.TrimSpace(c.Name)})
	}
	for _, t := range tgs {
		tags = append(tags, Candidate{ID: t.ID, Name: strings.TrimSpace(t.Name)})
	}
	return categories, tags, nil
}

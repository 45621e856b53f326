package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"playhub/internal/locale"
	"playhub/internal/models"
	"playhub/internal/services"
	"playhub/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler 后台 JSON 接口，挂在 AdminRequired 之后
type AdminHandler struct {
	catalog     *services.CatalogService
	seo         *services.SEOService
	matcher     *services.TaxonomyMatcher
	importer    *services.FeedImporter
	revalidator *services.Revalidator
	locales     *locale.Matcher
}

func NewAdminHandler(
	catalog *services.CatalogService,
	seo *services.SEOService,
	matcher *services.TaxonomyMatcher,
	importer *services.FeedImporter,
	revalidator *services.Revalidator,
	locales *locale.Matcher,
) *AdminHandler {
	return &AdminHandler{
		catalog:     catalog,
		seo:         seo,
		matcher:     matcher,
		importer:    importer,
		revalidator: revalidator,
		locales:     locales,
	}
}

type translationForm struct {
	Title           string `json:"title" binding:"required,max=200"`
	Description     string `json:"description"`
	Instructions    string `json:"instructions"`
	MetaTitle       string `json:"meta_title" binding:"omitempty,seomax=60"`
	MetaDescription string `json:"meta_description" binding:"omitempty,seomax=160"`
	Keywords        string `json:"keywords" binding:"omitempty,seomax=200"`
}

// gameID 解析 :id，失败时已写入 400
func gameID(c *gin.Context) (uint, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
	}
	return id, ok
}

// supportedLocale 校验语言参数，失败时已写入 400
func (h *AdminHandler) supportedLocale(c *gin.Context, raw string) (string, bool) {
	loc := locale.Normalize(raw)
	if loc == "" || !h.locales.IsSupported(loc) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported locale", "locales": h.locales.Supported()})
		return "", false
	}
	return loc, true
}

// GetGame 游戏原始数据（全部翻译）
func (h *AdminHandler) GetGame(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	game, err := h.catalog.LoadGame(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

// UpsertTranslation PUT /games/:id/translations/:locale
func (h *AdminHandler) UpsertTranslation(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	loc, ok := h.supportedLocale(c, c.Param("locale"))
	if !ok {
		return
	}

	var form translationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": validationErrors(err)})
		return
	}

	saved, err := h.catalog.UpsertGameTranslation(c.Request.Context(), id, models.GameTranslation{
		Locale:          loc,
		Title:           strings.TrimSpace(form.Title),
		Description:     form.Description,
		Instructions:    form.Instructions,
		MetaTitle:       strings.TrimSpace(form.MetaTitle),
		MetaDescription: strings.TrimSpace(form.MetaDescription),
		Keywords:        strings.TrimSpace(form.Keywords),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *AdminHandler) DeleteTranslation(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteGameTranslation(c.Request.Context(), id, c.Param("locale")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeleteGame(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteGame(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type seoForm struct {
	Locale string `json:"locale" binding:"required"`
	Save   bool   `json:"save"`
}

// GenerateSEO 用大模型为某语言生成 meta 文案。save=true 时写回该语言已有的翻译。
func (h *AdminHandler) GenerateSEO(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := gameID(c)
	if !ok {
		return
	}
	var form seoForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "locale is required"})
		return
	}
	loc, ok := h.supportedLocale(c, form.Locale)
	if !ok {
		return
	}

	game, err := h.catalog.LoadGame(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	tr := locale.Resolve(game.Translations, loc, h.catalog.DefaultLocale(), models.GameTranslation{Title: game.Slug})

	text, err := h.seo.Generate(ctx, services.SEORequest{
		Title:       tr.Title,
		Description: utils.MarkdownExcerpt(tr.Description, 1000),
		Locale:      loc,
		SourceURL:   game.SourceURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if !form.Save {
		c.JSON(http.StatusOK, gin.H{"seo": text, "saved": false})
		return
	}

	// 只写回该语言自己的翻译，不把回退语言的正文复制过去
	if tr.Locale != loc {
		respondError(c, services.ErrTranslationNotFound)
		return
	}
	tr.MetaTitle = text.MetaTitle
	tr.MetaDescription = text.MetaDescription
	tr.Keywords = text.Keywords
	if _, err := h.catalog.UpsertGameTranslation(ctx, id, tr); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seo": text, "saved": true})
}

type matchForm struct {
	Save bool `json:"save"`
	Max  int  `json:"max" binding:"omitempty,min=1,max=10"`
}

// MatchTaxonomy 推荐分类和标签，save=true 时直接替换游戏的分类/标签
func (h *AdminHandler) MatchTaxonomy(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := gameID(c)
	if !ok {
		return
	}
	var form matchForm
	if err := c.ShouldBindJSON(&form); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": validationErrors(err)})
		return
	}

	game, err := h.catalog.LoadGame(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	cats, tags, err := h.catalog.TaxonomyCandidates(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	def := h.catalog.DefaultLocale()
	title := locale.ResolveField(game.Translations, def, def, "title", game.Slug)
	desc := utils.MarkdownExcerpt(locale.ResolveField(game.Translations, def, def, "description", ""), 1000)

	catRes := h.matcher.Match(ctx, services.MatchRequest{Title: title, Description: desc, Candidates: cats, Max: form.Max})
	tagRes := h.matcher.Match(ctx, services.MatchRequest{Title: title, Description: desc, Candidates: tags, Max: form.Max})

	if form.Save {
		if err := h.catalog.SetGameTaxonomy(ctx, id, nonNil(catRes.IDs), nonNil(tagRes.IDs)); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"categories": catRes, "tags": tagRes, "saved": form.Save})
}

func nonNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}

type taxonomyForm struct {
	CategoryIDs []uint `json:"category_ids"`
	TagIDs      []uint `json:"tag_ids"`
}

// SetTaxonomy 省略的字段保持不变，空数组表示清空
func (h *AdminHandler) SetTaxonomy(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	var form taxonomyForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := h.catalog.SetGameTaxonomy(c.Request.Context(), id, form.CategoryIDs, form.TagIDs); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type importForm struct {
	URL    string `json:"url" binding:"required,url"`
	Locale string `json:"locale"`
}

// ImportFeed 从订阅源导入游戏草稿
func (h *AdminHandler) ImportFeed(c *gin.Context) {
	var form importForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": validationErrors(err)})
		return
	}
	loc := h.catalog.DefaultLocale()
	if form.Locale != "" {
		var ok bool
		if loc, ok = h.supportedLocale(c, form.Locale); !ok {
			return
		}
	}

	res, err := h.importer.Import(c.Request.Context(), form.URL, loc)
	if err != nil {
		slog.Warn("feed import failed", "url", form.URL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

type revalidateForm struct {
	Tags []string `json:"tags"`
}

// Revalidate 手动失效缓存，未指定标签时全部失效
func (h *AdminHandler) Revalidate(c *gin.Context) {
	var form revalidateForm
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
	}
	tags := form.Tags
	if len(tags) == 0 {
		tags = []string{services.TagGames, services.TagTaxonomy, services.TagSite}
	}
	h.revalidator.Revalidate(c.Request.Context(), tags...)
	c.JSON(http.StatusOK, gin.H{"revalidated": tags})
}

package handlers

import (
	"errors"
	"net/http"

	"playhub/internal/middleware"
	"playhub/internal/models"
	"playhub/internal/services"
	"playhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	*Base
	catalog *services.CatalogService
}

func NewGameHandler(base *Base, catalog *services.CatalogService) *GameHandler {
	return &GameHandler{Base: base, catalog: catalog}
}

// ListHot 首页：按热度排序
func (h *GameHandler) ListHot(c *gin.Context) {
	h.renderList(c, services.GameQuery{Sort: services.SortHot}, models.PageHome, nil)
}

// ListNew 最新上架
func (h *GameHandler) ListNew(c *gin.Context) {
	h.renderList(c, services.GameQuery{Sort: services.SortNew}, models.PageNew, nil)
}

// ListByCategory 分类页
func (h *GameHandler) ListByCategory(c *gin.Context) {
	loc := middleware.CurrentLocale(c)
	cat, meta, err := h.catalog.GetCategory(c.Request.Context(), c.Param("slug"), loc)
	if errors.Is(err, services.ErrCategoryNotFound) {
		h.RenderError(c, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		h.RenderError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	h.renderList(c, services.GameQuery{Sort: services.SortHot, CategorySlug: cat.Slug}, models.PageCategory,
		gin.H{"Category": cat, "Meta": meta})
}

// ListByTag 标签页
func (h *GameHandler) ListByTag(c *gin.Context) {
	loc := middleware.CurrentLocale(c)
	tag, err := h.catalog.GetTag(c.Request.Context(), c.Param("slug"), loc)
	if errors.Is(err, services.ErrTagNotFound) {
		h.RenderError(c, http.StatusNotFound, "Tag not found")
		return
	}
	if err != nil {
		h.RenderError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	h.renderList(c, services.GameQuery{Sort: services.SortHot, TagSlug: tag.Slug}, models.PageTag,
		gin.H{"Tag": tag})
}

func (h *GameHandler) renderList(c *gin.Context, q services.GameQuery, pageKey string, extra gin.H) {
	ctx := c.Request.Context()
	q.Locale = middleware.CurrentLocale(c)
	q.Page = utils.StringToInt(c.DefaultQuery("page", "1"))

	page, err := h.catalog.ListGames(ctx, q)
	if err != nil {
		h.RenderError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	categories, err := h.catalog.ListCategories(ctx, q.Locale)
	if err != nil {
		h.RenderError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	data := gin.H{
		"Games":      page.Games,
		"Pagination": page,
		"Categories": categories,
		"Sort":       q.Sort,
		"Meta":       h.catalog.PageMeta(ctx, pageKey, q.Locale),
	}
	for k, v := range extra {
		data[k] = v
	}
	h.Render(c, http.StatusOK, "game/list.html", data)
}

// Detail 游戏详情页
func (h *GameHandler) Detail(c *gin.Context) {
	game, err := h.catalog.GetGame(c.Request.Context(), c.Param("slug"), middleware.CurrentLocale(c))
	if errors.Is(err, services.ErrGameNotFound) {
		h.RenderError(c, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		h.RenderError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	h.Render(c, http.StatusOK, "game/detail.html", gin.H{"Game": game})
}

// APIGet 本地化后的游戏详情 JSON
func (h *GameHandler) APIGet(c *gin.Context) {
	game, err := h.catalog.GetGame(c.Request.Context(), c.Param("slug"), middleware.CurrentLocale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

// APIList 游戏列表 JSON，支持 sort/category/tag/page/per_page
func (h *GameHandler) APIList(c *gin.Context) {
	page, err := h.catalog.ListGames(c.Request.Context(), services.GameQuery{
		Locale:       middleware.CurrentLocale(c),
		Page:         utils.StringToInt(c.DefaultQuery("page", "1")),
		PerPage:      utils.StringToInt(c.Query("per_page")),
		Sort:         c.DefaultQuery("sort", services.SortHot),
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Play 记录一次游玩
func (h *GameHandler) Play(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}
	if err := h.catalog.RecordPlay(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

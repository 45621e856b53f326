package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"playhub/internal/locale"
	"playhub/internal/middleware"
	"playhub/internal/services"

	"github.com/gin-gonic/gin"
)

// Base 页面渲染共用的依赖
type Base struct {
	catalog *services.CatalogService
	matcher *locale.Matcher
	siteURL string
}

func NewBase(catalog *services.CatalogService, matcher *locale.Matcher, siteURL string) *Base {
	return &Base{catalog: catalog, matcher: matcher, siteURL: siteURL}
}

// Alternate hreflang 备用链接
type Alternate struct {
	Locale string
	URL    string
}

// Render 注入语言、站点信息和 hreflang 后渲染模板
func (b *Base) Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	loc := middleware.CurrentLocale(c)
	obj["Locale"] = loc
	obj["Locales"] = b.matcher.Supported()
	obj["Site"] = b.catalog.SiteInfo(c.Request.Context(), loc)
	obj["SiteURL"] = b.siteURL
	obj["CurrentPath"] = c.Request.URL.Path
	obj["Alternates"] = b.alternates(c.Request.URL)

	c.HTML(code, name, obj)
}

func (b *Base) alternates(u *url.URL) []Alternate {
	out := make([]Alternate, 0, len(b.matcher.Supported()))
	for _, loc := range b.matcher.Supported() {
		out = append(out, Alternate{Locale: loc, URL: localizedURL(b.siteURL, u.Path, loc)})
	}
	return out
}

// localizedURL 站点 URL + 路径 + ?lang=
func localizedURL(siteURL, path, loc string) string {
	return siteURL + path + "?lang=" + url.QueryEscape(loc)
}

// RenderError 错误页
func (b *Base) RenderError(c *gin.Context, code int, message string) {
	b.Render(c, code, "error.html", gin.H{"Error": message, "Code": code})
}

// respondError 把服务层错误转换为 JSON 响应
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrVoterUnidentified):
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not identify voter"})
	case errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrTagNotFound),
		errors.Is(err, services.ErrTranslationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAIDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

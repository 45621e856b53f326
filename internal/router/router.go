package router

import (
	"slices"
	"time"

	"playhub/internal/handlers"
	"playhub/internal/locale"
	"playhub/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Game   *handlers.GameHandler
	Vote   *handlers.VoteHandler
	SEO    *handlers.SEOHandler
	Admin  *handlers.AdminHandler
	Health *handlers.HealthHandler
}

type Options struct {
	Locales     *locale.Matcher
	CORSOrigins []string
	VoterSalt   string
	AdminToken  string
}

// RegisterRoutes 需要在 sessions 中间件之后调用
func RegisterRoutes(r *gin.Engine, h Handlers, opts Options) {
	r.Use(middleware.Locale(opts.Locales))

	// 公共页面
	r.GET("/", h.Game.ListHot)                      // 首页 - 热门游戏
	r.GET("/new", h.Game.ListNew)                   // 最新游戏
	r.GET("/category/:slug", h.Game.ListByCategory) // 分类
	r.GET("/tag/:slug", h.Game.ListByTag)           // 标签
	r.GET("/game/:slug", h.Game.Detail)             // 游戏详情

	r.GET("/robots.txt", h.SEO.RobotsTxt)
	r.GET("/sitemap.xml", h.SEO.SitemapXML)
	r.GET("/feed.xml", h.SEO.RSSFeed)
	r.GET("/healthz", h.Health.Health)

	// 前端 / 嵌入页调用的接口
	api := r.Group("/api")
	api.Use(corsMiddleware(opts.CORSOrigins), middleware.VoterIdentity(opts.VoterSalt))
	{
		api.GET("/games", h.Game.APIList)
		api.GET("/games/:slug", h.Game.APIGet)
		api.POST("/games/:id/play", h.Game.Play)
		api.GET("/games/:id/vote", h.Vote.GetVote)
		api.POST("/games/:id/vote", h.Vote.Vote)
	}

	// 后台
	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminRequired(opts.AdminToken))
	{
		admin.GET("/games/:id", h.Admin.GetGame)
		admin.DELETE("/games/:id", h.Admin.DeleteGame)
		admin.PUT("/games/:id/translations/:locale", h.Admin.UpsertTranslation)
		admin.DELETE("/games/:id/translations/:locale", h.Admin.DeleteTranslation)
		admin.POST("/games/:id/seo", h.Admin.GenerateSEO)
		admin.POST("/games/:id/match", h.Admin.MatchTaxonomy)
		admin.PUT("/games/:id/taxonomy", h.Admin.SetTaxonomy)
		admin.POST("/import/feed", h.Admin.ImportFeed)
		admin.POST("/revalidate", h.Admin.Revalidate)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

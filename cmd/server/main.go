package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"playhub/internal/config"
	"playhub/internal/db"
	"playhub/internal/handlers"
	"playhub/internal/locale"
	"playhub/internal/logging"
	"playhub/internal/middleware"
	"playhub/internal/router"
	"playhub/internal/services"
	"playhub/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const pageCacheSize = 2048

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	gdb, err := db.Open(db.Options{DSN: cfg.DatabaseURL, LogLevel: cfg.DBLogLevel})
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(gdb, cfg.SupportedLocales, cfg.DefaultLocale); err != nil {
		log.Fatalf("seed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 页面缓存 + 跨实例失效
	cache := utils.NewCache(pageCacheSize)
	revalidator, err := services.NewRevalidator(cache, cfg.RedisURL)
	if err != nil {
		log.Fatalf("revalidator: %v", err)
	}
	defer revalidator.Close()
	go revalidator.Listen(ctx)

	// 异步热度计算
	ranking := services.NewRankingService(gdb, revalidator)
	ranking.Start(ctx)

	matcher := locale.NewMatcher(cfg.SupportedLocales, cfg.DefaultLocale)
	catalog := services.NewCatalogService(gdb, cache, revalidator, ranking, matcher.Default())
	votes := services.NewVoteService(gdb, ranking, revalidator)
	llm := services.NewLLMService(cfg.AI)
	if llm.Enabled() {
		slog.Info("ai provider configured", "type", cfg.AI.Kind(), "model", cfg.AI.ModelName())
	}
	crawler := services.NewCrawlerService(20 * time.Second)

	if err := handlers.RegisterValidators(); err != nil {
		log.Fatalf("register validators: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 365 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("playhub_session", store))

	r.HTMLRender = loadTemplates("./web/templates")
	r.Static("/static", "./web/static")

	base := handlers.NewBase(catalog, matcher, cfg.SiteURL)
	router.RegisterRoutes(r, router.Handlers{
		Game: handlers.NewGameHandler(base, catalog),
		Vote: handlers.NewVoteHandler(votes),
		SEO:  handlers.NewSEOHandler(catalog, matcher, cfg.SiteURL),
		Admin: handlers.NewAdminHandler(
			catalog,
			services.NewSEOService(llm, crawler),
			services.NewTaxonomyMatcher(llm),
			services.NewFeedImporter(gdb),
			revalidator,
			matcher,
		),
		Health: handlers.NewHealthHandler(gdb, revalidator),
	}, router.Options{
		Locales:     matcher,
		CORSOrigins: cfg.CORSOrigins,
		VoterSalt:   cfg.VoterSalt,
		AdminToken:  cfg.AdminToken,
	})
	if cfg.AdminToken == "" {
		slog.Warn("ADMIN_TOKEN not set, admin api disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("PlayHub server starting", "port", cfg.Port, "locales", matcher.Supported())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}
	components, err := filepath.Glob(templatesDir + "/components/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(components)+1)
		files = append(files, layouts...)
		files = append(files, components...)
		return append(files, view)
	}

	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"urlquery": func(s string) string {
			return url.QueryEscape(s)
		},
		"langName": func(code string) string {
			return locale.DisplayName(code)
		},
		"truncate": utils.TruncateWidth,
	}

	r.AddFromFilesFuncs("game/list.html", funcMap, assemble(templatesDir+"/views/game/list.html")...)
	r.AddFromFilesFuncs("game/detail.html", funcMap, assemble(templatesDir+"/views/game/detail.html")...)
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}

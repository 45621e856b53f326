package services

import (
	"context"
	"errors"
	"testing"

	"playhub/internal/models"
	"playhub/internal/utils"

	"gorm.io/gorm"
)

func newTestCatalog(t *testing.T, gdb *gorm.DB) (*CatalogService, *utils.Cache) {
	t.Helper()
	cache := utils.NewCache(64)
	rv, err := NewRevalidator(cache, "")
	if err != nil {
		t.Fatalf("revalidator: %v", err)
	}
	return NewCatalogService(gdb, cache, rv, nil, "en"), cache
}

func seedCatalog(t *testing.T, gdb *gorm.DB) (models.Game, models.Game) {
	t.Helper()
	puzzle := models.Category{
		Slug: "puzzle",
		Translations: []models.CategoryTranslation{
			{Locale: "en", Name: "Puzzle"},
			{Locale: "zh", Name: "益智"},
		},
	}
	if err := gdb.Create(&puzzle).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}

	tetris := models.Game{
		Slug:        "tetris",
		URL:         "https://games.example.com/tetris",
		IsPublished: true,
		HotScore:    10,
		Translations: []models.GameTranslation{
			{Locale: "en", Title: "Tetris", Description: "Stack **blocks**.", MetaTitle: "Play Tetris"},
			{Locale: "zh", Title: "俄罗斯方块"},
		},
		Categories: []models.Category{puzzle},
	}
	snake := models.Game{
		Slug:        "snake",
		URL:         "https://games.example.com/snake",
		IsPublished: true,
		HotScore:    20,
		Translations: []models.GameTranslation{
			{Locale: "fr", Title: "Serpent"},
		},
	}
	hidden := models.Game{Slug: "draft", URL: "https://games.example.com/draft", IsPublished: false}
	for _, g := range []*models.Game{&tetris, &snake, &hidden} {
		if err := gdb.Create(g).Error; err != nil {
			t.Fatalf("create game: %v", err)
		}
	}
	return tetris, snake
}

func TestCatalogGetGameLocaleFallback(t *testing.T) {
	gdb := newTestDB(t)
	seedCatalog(t, gdb)
	s, _ := newTestCatalog(t, gdb)
	ctx := context.Background()

	zh, err := s.GetGame(ctx, "tetris", "zh")
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if zh.Title != "俄罗斯方块" || zh.Resolution.FallbackUsed {
		t.Errorf("zh view = %+v", zh)
	}
	// zh 没有 meta_title，回退到标题截断
	if zh.MetaTitle != "俄罗斯方块" {
		t.Errorf("zh meta_title = %q", zh.MetaTitle)
	}
	if len(zh.Categories) != 1 || zh.Categories[0].Name != "益智" {
		t.Errorf("zh categories = %+v", zh.Categories)
	}

	es, err := s.GetGame(ctx, "tetris", "es")
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if es.Title != "Tetris" || es.MetaTitle != "Play Tetris" || !es.Resolution.FallbackUsed {
		t.Errorf("es view should fall back to en: %+v", es)
	}
	if es.MetaDescription != "Stack blocks." {
		t.Errorf("meta_description fallback = %q", es.MetaDescription)
	}

	// 没有 en 翻译时取第一条
	snake, err := s.GetGame(ctx, "snake", "zh")
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if snake.Title != "Serpent" {
		t.Errorf("snake title = %q", snake.Title)
	}

	if _, err := s.GetGame(ctx, "draft", "en"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("unpublished game: err = %v", err)
	}
}

func TestCatalogListGames(t *testing.T) {
	gdb := newTestDB(t)
	seedCatalog(t, gdb)
	s, _ := newTestCatalog(t, gdb)
	ctx := context.Background()

	page, err := s.ListGames(ctx, GameQuery{Locale: "en"})
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if page.Total != 2 || len(page.Games) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Games[0].Slug != "snake" {
		t.Errorf("hot sort should put snake first, got %s", page.Games[0].Slug)
	}

	byCat, err := s.ListGames(ctx, GameQuery{Locale: "zh", CategorySlug: "puzzle"})
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if byCat.Total != 1 || byCat.Games[0].Title != "俄罗斯方块" {
		t.Errorf("category page = %+v", byCat)
	}

	paged, _ := s.ListGames(ctx, GameQuery{Locale: "en", PerPage: 1})
	if !paged.HasMore || len(paged.Games) != 1 {
		t.Errorf("paged = %+v", paged)
	}
}

func TestCatalogUpsertTranslationOverwrites(t *testing.T) {
	gdb := newTestDB(t)
	tetris, _ := seedCatalog(t, gdb)
	s, cache := newTestCatalog(t, gdb)
	ctx := context.Background()

	// 先缓存一次 es 页面
	if _, err := s.GetGame(ctx, "tetris", "es"); err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if cache.Len() == 0 {
		t.Fatal("expected cached view")
	}

	for _, title := range []string{"Tetris ES", "Tetris España"} {
		if _, err := s.UpsertGameTranslation(ctx, tetris.ID, models.GameTranslation{Locale: "es", Title: title}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	var count int64
	gdb.Model(&models.GameTranslation{}).Where("game_id = ? AND locale = ?", tetris.ID, "es").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one es row, got %d", count)
	}

	view, err := s.GetGame(ctx, "tetris", "es")
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if view.Title != "Tetris España" || view.Resolution.FallbackUsed {
		t.Errorf("cache not revalidated or upsert lost: %+v", view)
	}

	if err := s.DeleteGameTranslation(ctx, tetris.ID, "es"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.DeleteGameTranslation(ctx, tetris.ID, "es"); !errors.Is(err, ErrTranslationNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
	if _, err := s.UpsertGameTranslation(ctx, 9999, models.GameTranslation{Locale: "es", Title: "x"}); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("upsert on missing game: err = %v", err)
	}
}

func TestCatalogDeleteGameCascades(t *testing.T) {
	gdb := newTestDB(t)
	tetris, _ := seedCatalog(t, gdb)
	s, _ := newTestCatalog(t, gdb)
	votes := newTestVoteService(t, gdb)
	ctx := context.Background()

	if _, err := votes.Vote(ctx, tetris.ID, "voter", true); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if err := s.DeleteGame(ctx, tetris.ID); err != nil {
		t.Fatalf("DeleteGame failed: %v", err)
	}

	for _, model := range []interface{}{&models.GameVote{}, &models.GameTranslation{}} {
		var n int64
		gdb.Model(model).Where("game_id = ?", tetris.ID).Count(&n)
		if n != 0 {
			t.Errorf("%T rows left: %d", model, n)
		}
	}
	var links int64
	gdb.Table("game_categories").Where("game_id = ?", tetris.ID).Count(&links)
	if links != 0 {
		t.Errorf("category links left: %d", links)
	}
	if err := s.DeleteGame(ctx, tetris.ID); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
}

func TestCatalogRecordPlayDoesNotTouchVotes(t *testing.T) {
	gdb := newTestDB(t)
	tetris, _ := seedCatalog(t, gdb)
	s, _ := newTestCatalog(t, gdb)
	ctx := context.Background()

	if err := s.RecordPlay(ctx, tetris.ID); err != nil {
		t.Fatalf("RecordPlay failed: %v", err)
	}
	var g models.Game
	gdb.First(&g, tetris.ID)
	if g.Plays != 1 || g.Likes != 0 || g.Dislikes != 0 {
		t.Errorf("game = plays %d likes %d dislikes %d", g.Plays, g.Likes, g.Dislikes)
	}
	if err := s.RecordPlay(ctx, 9999); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestCatalogSiteInfoAndPageMeta(t *testing.T) {
	gdb := newTestDB(t)
	s, _ := newTestCatalog(t, gdb)
	ctx := context.Background()

	// 无数据时使用内置默认值
	if info := s.SiteInfo(ctx, "en"); info.SiteName != "PlayHub" {
		t.Errorf("SiteInfo = %+v", info)
	}

	home := models.PageType{Key: models.PageHome, Translations: []models.PageTypeTranslation{
		{Locale: "en", Title: "Free games", MetaDescription: "Play now"},
		{Locale: "zh", Title: "免费游戏"},
	}}
	gdb.Create(&home)

	zh := s.PageMeta(ctx, models.PageHome, "zh")
	if zh.Title != "免费游戏" || zh.MetaTitle != "免费游戏" {
		t.Errorf("zh meta = %+v", zh)
	}
	fr := s.PageMeta(ctx, models.PageHome, "fr")
	if fr.Title != "Free games" || fr.MetaDescription != "Play now" {
		t.Errorf("fr meta = %+v", fr)
	}
}

func TestCatalogSitemapGames(t *testing.T) {
	gdb := newTestDB(t)
	seedCatalog(t, gdb)
	s, _ := newTestCatalog(t, gdb)

	games, err := s.SitemapGames(context.Background())
	if err != nil {
		t.Fatalf("SitemapGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("games = %+v", games)
	}
	if games[0].Slug != "tetris" || len(games[0].Locales) != 2 {
		t.Errorf("tetris entry = %+v", games[0])
	}
}

func TestCatalogSetGameTaxonomy(t *testing.T) {
	gdb := newTestDB(t)
	_, snake := seedCatalog(t, gdb)
	s, _ := newTestCatalog(t, gdb)
	ctx := context.Background()

	cats, _, err := s.TaxonomyCandidates(ctx)
	if err != nil || len(cats) != 1 {
		t.Fatalf("candidates = %+v, %v", cats, err)
	}
	if err := s.SetGameTaxonomy(ctx, snake.ID, []uint{cats[0].ID}, nil); err != nil {
		t.Fatalf("SetGameTaxonomy failed: %v", err)
	}
	page, _ := s.ListGames(ctx, GameQuery{Locale: "en", CategorySlug: "puzzle"})
	if page.Total != 2 {
		t.Errorf("puzzle category should have 2 games, got %d", page.Total)
	}
}

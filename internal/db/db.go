package db

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"playhub/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Options 数据库连接参数
type Options struct {
	DSN           string
	LogLevel      string // silent|error|warn|info
	SlowThreshold time.Duration
}

// Open 根据 DSN 选择驱动：postgres:// 或 host=... 走 Postgres，其余当作 SQLite 文件路径。
// 空 DSN 使用本地 playhub.db，方便开发。
func Open(opts Options) (*gorm.DB, error) {
	dsn := strings.TrimSpace(opts.DSN)
	if dsn == "" {
		dsn = "playhub.db"
	}

	if opts.SlowThreshold == 0 {
		opts.SlowThreshold = time.Second
	}
	gormLogger := logger.New(
		log.Default(), // 与 std log 共用 logging.Setup 配置的输出
		logger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  parseLogLevel(opts.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		gdb *gorm.DB
		err error
	)
	if isPostgres(dsn) {
		gdb, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		gdb, err = gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if isPostgres(dsn) {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite 单写者，多连接只会带来 database is locked
		sqlDB.SetMaxOpenConns(1)
	}

	slog.Info("database connection established", "driver", gdb.Dialector.Name())
	return gdb, nil
}

// OpenMemory 打开一个已迁移的内存 SQLite，用于测试
func OpenMemory() (*gorm.DB, error) {
	gdb, err := Open(Options{DSN: ":memory:", LogLevel: "silent"})
	if err != nil {
		return nil, err
	}
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Migrate 自动建表
func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.Language{},
		&models.SiteConfig{},
		&models.SiteConfigTranslation{},
		&models.PageType{},
		&models.PageTypeTranslation{},
		&models.Category{},
		&models.CategoryTranslation{},
		&models.Tag{},
		&models.TagTranslation{},
		&models.Game{},
		&models.GameTranslation{},
		&models.GameVote{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database migration completed")
	return nil
}

// languageNames 内置语言的显示名
var languageNames = map[string][2]string{
	"en": {"English", "English"},
	"zh": {"Chinese", "中文"},
	"es": {"Spanish", "Español"},
	"fr": {"French", "Français"},
	"de": {"German", "Deutsch"},
	"ja": {"Japanese", "日本語"},
	"ko": {"Korean", "한국어"},
	"pt": {"Portuguese", "Português"},
	"ru": {"Russian", "Русский"},
}

// Seed 初始化语言、站点配置和页面类型，已存在则跳过
func Seed(gdb *gorm.DB, locales []string, defaultLocale string) error {
	for i, code := range locales {
		names, ok := languageNames[code]
		if !ok {
			names = [2]string{code, code}
		}
		lang := models.Language{
			Code:       code,
			Name:       names[0],
			NativeName: names[1],
			IsDefault:  code == defaultLocale,
			Enabled:    true,
			SortOrder:  i,
		}
		if err := gdb.Clauses(clause.OnConflict{DoNothing: true}).Create(&lang).Error; err != nil {
			return fmt.Errorf("seed language %s: %w", code, err)
		}
	}

	var site models.SiteConfig
	err := gdb.Where("key = ?", models.DefaultSiteConfigKey).First(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		site = models.SiteConfig{
			Key: models.DefaultSiteConfigKey,
			Translations: []models.SiteConfigTranslation{{
				Locale:          defaultLocale,
				SiteName:        "PlayHub",
				Tagline:         "Free online games",
				MetaDescription: "Play free HTML5 games in your browser.",
			}},
		}
		if err := gdb.Create(&site).Error; err != nil {
			return fmt.Errorf("seed site config: %w", err)
		}
		slog.Info("default site config created")
	} else if err != nil {
		return fmt.Errorf("load site config: %w", err)
	}

	for _, key := range []string{models.PageHome, models.PageNew, models.PageCategory, models.PageTag, models.PageGame} {
		pt := models.PageType{Key: key}
		if err := gdb.Clauses(clause.OnConflict{DoNothing: true}).Create(&pt).Error; err != nil {
			return fmt.Errorf("seed page type %s: %w", key, err)
		}
	}
	return nil
}

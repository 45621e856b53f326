package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"playhub/internal/locale"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port             string
	SiteURL          string
	DatabaseURL      string
	DBLogLevel       string
	SessionSecret    string
	DefaultLocale    string
	SupportedLocales []string
	AdminToken       string
	VoterSalt        string
	RedisURL         string
	CORSOrigins      []string
	LogLevel         string
	LogFormat        string
	LogFile          string
	AI               AIProvider
}

// Load 读取 .env、可选的 YAML 配置文件和环境变量，环境变量优先
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, reading env vars from system")
	}

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("database_url", "")
	v.SetDefault("db_log_level", "warn")
	v.SetDefault("session_secret", "secret_key_change_me")
	v.SetDefault("default_locale", "en")
	v.SetDefault("supported_locales", "en,zh,es,fr")
	v.SetDefault("admin_token", "")
	v.SetDefault("voter_salt", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("ai_provider", "")
	v.AutomaticEnv()

	file := os.Getenv("CONFIG_FILE")
	if file == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			file = "config.yaml"
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("port"),
		SiteURL:       strings.TrimRight(v.GetString("site_url"), "/"),
		DatabaseURL:   v.GetString("database_url"),
		DBLogLevel:    v.GetString("db_log_level"),
		SessionSecret: v.GetString("session_secret"),
		AdminToken:    v.GetString("admin_token"),
		VoterSalt:     v.GetString("voter_salt"),
		RedisURL:      v.GetString("redis_url"),
		CORSOrigins:   splitList(v.Get("cors_origins")),
		LogLevel:      v.GetString("log_level"),
		LogFormat:     v.GetString("log_format"),
		LogFile:       v.GetString("log_file"),
	}

	cfg.DefaultLocale = locale.Normalize(v.GetString("default_locale"))
	if cfg.DefaultLocale == "" {
		return nil, errors.New("default_locale must not be empty")
	}
	// 默认语言始终在支持列表首位
	cfg.SupportedLocales = []string{cfg.DefaultLocale}
	for _, code := range splitList(v.Get("supported_locales")) {
		code = locale.Normalize(code)
		if code == "" || contains(cfg.SupportedLocales, code) {
			continue
		}
		cfg.SupportedLocales = append(cfg.SupportedLocales, code)
	}

	if cfg.VoterSalt == "" {
		cfg.VoterSalt = cfg.SessionSecret
	}

	raw, err := rawProvider(v.Get("ai_provider"))
	if err != nil {
		return nil, err
	}
	if cfg.AI, err = ParseAIProvider(raw); err != nil {
		return nil, err
	}
	return cfg, nil
}

// rawProvider 环境变量里是 JSON 字符串，YAML 里是对象
func rawProvider(val interface{}) ([]byte, error) {
	switch t := val.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("ai_provider: %w", err)
		}
		return b, nil
	}
}

// splitList 兼容 "a,b" 字符串和 YAML 列表
func splitList(val interface{}) []string {
	var parts []string
	switch t := val.(type) {
	case string:
		parts = strings.Split(t, ",")
	case []interface{}:
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
	case []string:
		parts = t
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

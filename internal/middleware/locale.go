package middleware

import (
	"log/slog"

	"playhub/internal/locale"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	LocaleKey        = "locale"
	localeSessionKey = "locale"
)

// Locale 决定本次请求的语言：?lang= > session > Accept-Language > 默认语言。
// ?lang= 选中的语言会写入 session。
func Locale(m *locale.Matcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var session sessions.Session
		if _, ok := c.Get(sessions.DefaultKey); ok {
			session = sessions.Default(c)
		}

		loc := ""
		if q := c.Query("lang"); q != "" && m.IsSupported(q) {
			loc = locale.Normalize(q)
			if session != nil && session.Get(localeSessionKey) != loc {
				session.Set(localeSessionKey, loc)
				if err := session.Save(); err != nil {
					slog.Warn("save locale to session failed", "error", err)
				}
			}
		}
		if loc == "" && session != nil {
			if v, ok := session.Get(localeSessionKey).(string); ok && m.IsSupported(v) {
				loc = v
			}
		}
		if loc == "" {
			loc = m.Match(c.GetHeader("Accept-Language"))
		}

		c.Set(LocaleKey, loc)
		c.Next()
	}
}

// CurrentLocale 读取 Locale 中间件选定的语言
func CurrentLocale(c *gin.Context) string {
	return c.GetString(LocaleKey)
}

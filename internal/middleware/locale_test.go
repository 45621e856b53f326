package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"playhub/internal/locale"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func newLocaleRouter(withSession bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if withSession {
		r.Use(sessions.Sessions("playhub_session", cookie.NewStore([]byte("test-secret"))))
	}
	r.Use(Locale(locale.NewMatcher([]string{"en", "zh", "fr"}, "en")))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentLocale(c))
	})
	return r
}

func TestLocaleAcceptLanguage(t *testing.T) {
	r := newLocaleRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "zh" {
		t.Errorf("locale = %q, want zh", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?lang=de", nil))
	if w.Body.String() != "en" {
		t.Errorf("unsupported lang should fall back to default, got %q", w.Body.String())
	}
}

func TestLocaleQueryPersistsInSession(t *testing.T) {
	r := newLocaleRouter(true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?lang=fr", nil))
	if w.Body.String() != "fr" {
		t.Fatalf("locale = %q, want fr", w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	// 带着 cookie 再次访问，Accept-Language 不再生效
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "zh")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "fr" {
		t.Errorf("session locale = %q, want fr", w.Body.String())
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"playhub/internal/services"

	"github.com/gin-gonic/gin"
)

func TestClientAddressPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"none", nil, UnknownAddress},
		{"forwarded first entry", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1", "X-Real-IP": "10.0.0.2"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4", "CF-Connecting-IP": "1.1.1.1"}, "198.51.100.4"},
		{"cloudflare", map[string]string{"CF-Connecting-IP": "2001:db8::1"}, "2001:db8::1"},
		{"true client ip", map[string]string{"True-Client-IP": "192.0.2.9"}, "192.0.2.9"},
		{"garbage skipped", map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "192.0.2.10"}, "192.0.2.10"},
		{"with port", map[string]string{"X-Real-IP": "192.0.2.11:4431"}, "192.0.2.11"},
		{"mapped v4", map[string]string{"X-Real-IP": "::ffff:192.0.2.12"}, "192.0.2.12"},
	}
	for _, tc := range cases {
		h := http.Header{}
		for k, v := range tc.headers {
			h.Set(k, v)
		}
		if got := ClientAddress(h); got != tc.want {
			t.Errorf("%s: ClientAddress = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestVoterIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(VoterIdentity("salt"))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentVoter(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "192.0.2.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != services.HashVoterKey("salt", "192.0.2.1") {
		t.Errorf("voter key = %q", w.Body.String())
	}

	// 无代理头：标识为空
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.String() != "" {
		t.Errorf("unknown client should have empty voter key, got %q", w.Body.String())
	}
}

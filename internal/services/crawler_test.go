package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const gamePage = `<!doctype html><html><head><title>Star Miner</title></head><body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Star Miner</h1>
<p>Star Miner is a relaxing idle game where you build mining drones and explore asteroid belts across the galaxy.</p>
<p>Upgrade your fleet, unlock new planets, and trade rare minerals with friendly aliens to grow your empire.</p>
<p>The game runs in any modern browser and saves your progress automatically so you can come back at any time.</p>
<script>window.evil = true;</script>
</article>
<footer>Copyright</footer>
</body></html>`

func TestCrawlerFetchText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(gamePage))
	}))
	defer server.Close()

	text, err := NewCrawlerService(5*time.Second).FetchText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchText failed: %v", err)
	}
	if !strings.Contains(text, "mining drones") {
		t.Errorf("article text missing: %q", text)
	}
	if strings.Contains(text, "window.evil") || strings.Contains(text, "<p>") {
		t.Errorf("text not cleaned: %q", text)
	}
}

func TestCrawlerFetchTextStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if _, err := NewCrawlerService(0).FetchText(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 404 page")
	}
}

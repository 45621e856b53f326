package utils

import (
	"strings"
	"testing"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("**Jump** over pipes<script>alert(1)</script>"))
	if !strings.Contains(out, "<strong>Jump</strong>") {
		t.Errorf("markdown not rendered: %s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("script not removed: %s", out)
	}
}

func TestRenderMarkdownEmbedsYouTube(t *testing.T) {
	out := string(RenderMarkdown("Watch:\n\nhttps://www.youtube.com/watch?v=abc123&t=10"))
	if !strings.Contains(out, "youtube-nocookie.com/embed/abc123") {
		t.Errorf("video not embedded: %s", out)
	}
}

func TestRenderMarkdownLazyImages(t *testing.T) {
	out := string(RenderMarkdown("![shot](https://cdn.example.com/a.png)"))
	if !strings.Contains(out, `loading="lazy"`) {
		t.Errorf("image not lazy: %s", out)
	}
}

func TestMarkdownExcerpt(t *testing.T) {
	got := MarkdownExcerpt("# 标题\n\nA **fast** puzzle game.", 40)
	if got != "标题 A fast puzzle game." {
		t.Errorf("excerpt = %q", got)
	}
	if CountWidth(MarkdownExcerpt(strings.Repeat("游戏", 200), 160)) > 160 {
		t.Error("excerpt exceeds width limit")
	}
}

func TestParseID(t *testing.T) {
	if id, ok := ParseID("42"); !ok || id != 42 {
		t.Errorf("ParseID(42) = %d, %v", id, ok)
	}
	for _, in := range []string{"", "0", "-1", "abc"} {
		if _, ok := ParseID(in); ok {
			t.Errorf("ParseID(%q) should fail", in)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Super Mario Bros.":  "super-mario-bros",
		"  2048 -- Classic ": "2048-classic",
		"俄罗斯方块":              "",
		"Café Rush!":         "caf-rush",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

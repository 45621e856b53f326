package utils

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceHTMLContent 图片懒加载，单独一行的 YouTube 链接转换为嵌入播放器（玩法视频）
func EnhanceHTMLContent(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
		s.SetAttr("decoding", "async")
	})

	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(text, "http") || strings.Contains(text, " ") {
			return
		}
		if id := youtubeID(text); id != "" {
			s.ReplaceWithHtml(`<div class="video-container"><iframe src="https://www.youtube-nocookie.com/embed/` +
				url.PathEscape(id) + `" frameborder="0" loading="lazy" allowfullscreen ` +
				`allow="accelerometer; clipboard-write; encrypted-media; gyroscope; picture-in-picture"></iframe></div>`)
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return template.HTML(htmlStr)
	}
	return template.HTML(out)
}

// youtubeID 支持 youtube.com/watch?v= 和 youtu.be/ 两种链接
func youtubeID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if u.Path == "/watch" {
			return u.Query().Get("v")
		}
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	}
	return ""
}

// PlainText 去掉 HTML 标签并压缩空白
func PlainText(htmlStr string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return strings.Join(strings.Fields(htmlStr), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

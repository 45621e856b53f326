package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"playhub/internal/locale"
	"playhub/internal/middleware"
	"playhub/internal/services"

	"github.com/gin-gonic/gin"
)

const feedSize = 20

type SEOHandler struct {
	catalog *services.CatalogService
	matcher *locale.Matcher
	siteURL string
}

func NewSEOHandler(catalog *services.CatalogService, matcher *locale.Matcher, siteURL string) *SEOHandler {
	return &SEOHandler{catalog: catalog, matcher: matcher, siteURL: siteURL}
}

// RobotsTxt 返回 robots.txt
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /admin/
Disallow: /api/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string      `xml:"loc"`
	LastMod    string      `xml:"lastmod,omitempty"`
	ChangeFreq string      `xml:"changefreq,omitempty"`
	Priority   string      `xml:"priority,omitempty"`
	Links      []xhtmlLink `xml:"xhtml:link"`
}

type xhtmlLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// SitemapXML 每个页面每种语言一条 <url>，附带全部语言的 hreflang 备用链接。
// 游戏页只列出已有翻译的语言。
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	games, err := h.catalog.SitemapGames(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
	}
	today := time.Now().UTC().Format("2006-01-02")
	supported := h.matcher.Supported()

	set.URLs = append(set.URLs, h.entries("/", supported, today, "daily", "1.0")...)
	set.URLs = append(set.URLs, h.entries("/new", supported, today, "hourly", "0.9")...)
	for _, g := range games {
		locs := g.Locales
		if len(locs) == 0 {
			locs = []string{h.matcher.Default()}
		}
		set.URLs = append(set.URLs, h.entries("/game/"+g.Slug, locs, g.UpdatedAt.UTC().Format("2006-01-02"), "weekly", "0.8")...)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}

func (h *SEOHandler) entries(path string, locales []string, lastmod, freq, priority string) []sitemapURL {
	links := make([]xhtmlLink, 0, len(locales)+1)
	for _, loc := range locales {
		links = append(links, xhtmlLink{Rel: "alternate", Hreflang: loc, Href: localizedURL(h.siteURL, path, loc)})
	}
	links = append(links, xhtmlLink{Rel: "alternate", Hreflang: "x-default", Href: h.siteURL + path})

	out := make([]sitemapURL, 0, len(locales))
	for _, loc := range locales {
		out = append(out, sitemapURL{
			Loc:        localizedURL(h.siteURL, path, loc),
			LastMod:    lastmod,
			ChangeFreq: freq,
			Priority:   priority,
			Links:      links,
		})
	}
	return out
}

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSSFeed 当前语言的最新游戏
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	ctx := c.Request.Context()
	loc := middleware.CurrentLocale(c)

	page, err := h.catalog.ListGames(ctx, services.GameQuery{Locale: loc, Sort: services.SortNew, PerPage: feedSize})
	if err != nil {
		respondError(c, err)
		return
	}
	site := h.catalog.SiteInfo(ctx, loc)

	feed := rss{
		Version: "2.0",
		Channel: rssChannel{
			Title:         site.SiteName,
			Link:          localizedURL(h.siteURL, "/", loc),
			Description:   site.MetaDescription,
			Language:      loc,
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
		},
	}
	for _, g := range page.Games {
		link := localizedURL(h.siteURL, "/game/"+g.Slug, loc)
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       g.Title,
			Link:        link,
			Description: g.Excerpt,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
		})
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", append([]byte(xml.Header), out...))
}

package learnedgeek

import (
	"encoding/xml"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// buildSitemap lists the blog index, each category page with posts, and
// every published post.
func buildSitemap(cfg SiteConfig, posts []PostSummary, counts []CategoryCount) sitemapURLSet {
	var lastMod string
	if len(posts) > 0 {
		lastMod = posts[0].DateString()
	}
	urls := []sitemapURL{
		{Loc: BuildURL(cfg.URL, "blog"), LastMod: lastMod},
	}
	for _, cc := range counts {
		if cc.Count == 0 {
			continue
		}
		urls = append(urls, sitemapURL{Loc: BuildURL(cfg.URL, "blog") + "?category=" + string(cc.Category)})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     Permalink(cfg.URL, p.Slug),
			LastMod: p.DateString(),
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	sitemap := buildSitemap(a.Config, a.Service.AllPosts(), a.Service.CategoryCounts())
	return writeXML(c, "application/xml; charset=utf-8", sitemap)
}

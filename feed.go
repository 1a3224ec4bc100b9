package learnedgeek

import (
	"encoding/xml"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
)

// feedSize is how many posts both feeds carry.
const feedSize = 20

const (
	atomNamespace   = "http://www.w3.org/2005/Atom"
	jsonFeedVersion = "https://jsonfeed.org/version/1.1"

	mimeRSS      = "application/rss+xml; charset=utf-8"
	mimeJSONFeed = "application/feed+json; charset=utf-8"
)

type rssXML struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	AtomXMLNS string     `xml:"xmlns:atom,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string      `xml:"title"`
	Link          string      `xml:"link"`
	Description   string      `xml:"description"`
	Language      string      `xml:"language,omitempty"`
	LastBuildDate string      `xml:"lastBuildDate,omitempty"`
	AtomLink      rssAtomLink `xml:"atom:link"`
	Items         []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// buildRSS renders posts as an RSS 2.0 channel. pubDate uses RFC 1123 with
// a numeric zone, the RFC 822 form feed readers expect.
func buildRSS(cfg SiteConfig, posts []PostSummary) rssXML {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := Permalink(cfg.URL, p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			PubDate:     p.Date.Format(time.RFC1123Z),
			Description: p.Description,
			Categories:  append([]string(nil), p.Tags...),
		})
	}
	ch := rssChannel{
		Title:       cfg.Name,
		Link:        BuildURL(cfg.URL, "blog"),
		Description: cfg.Description,
		Language:    cfg.Language,
		AtomLink: rssAtomLink{
			Href: BuildURL(cfg.URL, "feed.xml"),
			Rel:  "self",
			Type: "application/rss+xml",
		},
		Items: items,
	}
	if len(posts) > 0 {
		ch.LastBuildDate = posts[0].Date.Format(time.RFC1123Z)
	}
	return rssXML{Version: "2.0", AtomXMLNS: atomNamespace, Channel: ch}
}

// jsonFeedDoc always emits "items", which JSON Feed requires even when empty.
type jsonFeedDoc struct {
	*feeds.JSONFeed
	Items []*feeds.JSONItem `json:"items"`
}

// buildJSONFeed renders posts as a JSON Feed 1.1 document.
func buildJSONFeed(cfg SiteConfig, posts []PostSummary) jsonFeedDoc {
	items := make([]*feeds.JSONItem, 0, len(posts))
	for _, p := range posts {
		link := Permalink(cfg.URL, p.Slug)
		published := p.Date
		items = append(items, &feeds.JSONItem{
			Id:            link,
			Url:           link,
			Title:         p.Title,
			Summary:       p.Description,
			ContentText:   p.Description,
			Image:         absoluteURL(cfg.URL, p.Image),
			PublishedDate: &published,
			Tags:          append([]string(nil), p.Tags...),
		})
	}
	feed := &feeds.JSONFeed{
		Version:     jsonFeedVersion,
		Title:       cfg.Name,
		HomePageUrl: BuildURL(cfg.URL, "blog"),
		FeedUrl:     BuildURL(cfg.URL, "feed.json"),
		Description: cfg.Description,
	}
	if cfg.Author != "" {
		feed.Author = &feeds.JSONAuthor{Name: cfg.Author, Url: BuildURL(cfg.URL)}
	}
	return jsonFeedDoc{JSONFeed: feed, Items: items}
}

func (a *App) handleRSS(c echo.Context) error {
	posts := a.Service.RecentPosts(feedSize)
	a.metrics.feedItems.WithLabelValues("rss").Set(float64(len(posts)))
	return writeXML(c, mimeRSS, buildRSS(a.Config, posts))
}

func (a *App) handleJSONFeed(c echo.Context) error {
	posts := a.Service.RecentPosts(feedSize)
	a.metrics.feedItems.WithLabelValues("json").Set(float64(len(posts)))
	return writeJSON(c, mimeJSONFeed, buildJSONFeed(a.Config, posts))
}

package learnedgeek

import (
	"net/url"
	"strings"
	"time"
)

// Category is the topic a post is filed under. The set is closed.
type Category string

const (
	CategoryTech     Category = "Tech"
	CategoryWriting  Category = "Writing"
	CategoryGaming   Category = "Gaming"
	CategoryPersonal Category = "Personal"
	CategoryProjects Category = "Projects"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryTech,
	CategoryWriting,
	CategoryGaming,
	CategoryPersonal,
	CategoryProjects,
}

// ParseCategory matches s against the category set, ignoring case and
// surrounding space. It never fails; ok is false when nothing matches.
func ParseCategory(s string) (c Category, ok bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// PostSummary is a post as described by the registry, without its body.
type PostSummary struct {
	Slug        string
	Title       string
	Description string
	Category    Category
	Tags        []string
	Date        time.Time // calendar day, midnight UTC
	Featured    bool
	Image       string
}

// Path is the site-relative URL of the post.
func (p PostSummary) Path() string {
	return PostPathPrefix + url.PathEscape(p.Slug)
}

// DateString formats Date the way the registry stores it.
func (p PostSummary) DateString() string {
	return p.Date.Format(dateLayout)
}

// PostDetail is a post with its Markdown body and the rendered HTML.
type PostDetail struct {
	PostSummary
	Content string
	HTML    string
}

// CategoryCount pairs a category with its number of published posts.
type CategoryCount struct {
	Category Category
	Count    int
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

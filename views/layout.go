package views

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/learnedgeek/learnedgeek"
)

// layout wraps body in the site chrome: head metadata, header and footer.
// head is written inside <head> after the standard tags and may be nil.
func layout(cfg learnedgeek.SiteConfig, meta learnedgeek.PageMeta, head, body func(*writer, context.Context)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="`)
		w.text(lang(cfg.Language))
		w.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw(`<title>`)
		w.text(meta.Title)
		w.raw(`</title>`)
		w.raw(`<meta name="description"`)
		w.attr("content", meta.Description)
		w.raw(`>`)
		w.raw(`<link rel="canonical"`)
		w.attr("href", meta.URL)
		w.raw(`>`)
		w.raw(`<meta property="og:title"`)
		w.attr("content", meta.Title)
		w.raw(`><meta property="og:description"`)
		w.attr("content", meta.Description)
		w.raw(`><meta property="og:url"`)
		w.attr("content", meta.URL)
		w.raw(`><meta property="og:type"`)
		w.attr("content", meta.OGType)
		w.raw(`>`)
		if meta.Image != "" {
			w.raw(`<meta property="og:image"`)
			w.attr("content", meta.Image)
			w.raw(`>`)
		}
		w.raw(`<link rel="alternate" type="application/rss+xml"`)
		w.attr("title", cfg.Name)
		w.raw(` href="/feed.xml">`)
		w.raw(`<link rel="alternate" type="application/feed+json"`)
		w.attr("title", cfg.Name)
		w.raw(` href="/feed.json">`)
		w.raw(`<link rel="icon" href="/favicon.svg" type="image/svg+xml">`)
		w.raw(`<link rel="stylesheet" href="/public/site.css">`)
		if head != nil {
			head(w, ctx)
		}
		w.raw(`</head><body>`)

		w.raw(`<header class="site"><a class="brand" href="/blog">`)
		w.text(cfg.Name)
		w.raw(`</a><nav><a href="/blog">Blog</a><a href="/contact">Contact</a><a href="/feed.xml">RSS</a></nav></header>`)

		w.raw(`<main>`)
		body(w, ctx)
		w.raw(`</main>`)

		w.raw(`<footer class="site"><span>&copy; `)
		w.text(time.Now().Format("2006"))
		w.raw(` `)
		w.text(authorOrName(cfg))
		w.raw(`</span><a href="/sitemap.xml">Sitemap</a></footer>`)
		w.raw(`</body></html>`)
		return w.err
	})
}

func lang(l string) string {
	if l == "" {
		return "en"
	}
	return l
}

func authorOrName(cfg learnedgeek.SiteConfig) string {
	if cfg.Author != "" {
		return cfg.Author
	}
	return cfg.Name
}

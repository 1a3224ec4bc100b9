// Package views renders the site's pages as templ components.
package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/learnedgeek/learnedgeek"
)

// New returns the default page set for cfg.
func New(cfg learnedgeek.SiteConfig) learnedgeek.ViewFuncs {
	return learnedgeek.ViewFuncs{
		List:        func(p learnedgeek.ListPage) templ.Component { return List(cfg, p) },
		Post:        func(p learnedgeek.PostPage) templ.Component { return Post(cfg, p) },
		Contact:     func(p learnedgeek.ContactPage) templ.Component { return Contact(cfg, p) },
		NotFound:    func() templ.Component { return NotFound(cfg) },
		ServerError: func() templ.Component { return ServerError(cfg) },
	}
}

// List renders the post listing with the category navigation.
func List(cfg learnedgeek.SiteConfig, page learnedgeek.ListPage) templ.Component {
	head := func(w *writer, _ context.Context) {
		w.raw(`<script type="application/ld+json">`, learnedgeek.WebsiteJsonLD(cfg), `</script>`)
	}
	return layout(cfg, page.Meta, head, func(w *writer, _ context.Context) {
		w.raw(`<h1>`)
		if page.Active != "" {
			w.text(string(page.Active))
		} else {
			w.text(cfg.Name)
		}
		w.raw(`</h1>`)
		if cfg.Description != "" {
			w.raw(`<p class="lede">`)
			w.text(cfg.Description)
			w.raw(`</p>`)
		}

		w.raw(`<ul class="categories"><li><a`)
		w.attr("class", categoryClass(page.Active == ""))
		w.raw(` href="/blog">All</a></li>`)
		for _, cc := range page.Categories {
			if cc.Count == 0 {
				continue
			}
			w.raw(`<li><a`)
			w.attr("class", categoryClass(page.Active == cc.Category))
			w.attr("href", CategoryHref(cc.Category))
			w.raw(`>`)
			w.text(string(cc.Category))
			w.raw(` (`, itoa(cc.Count), `)</a></li>`)
		}
		w.raw(`</ul>`)

		if len(page.Posts) == 0 {
			w.raw(`<p class="notice">No posts here yet.</p>`)
			return
		}
		w.raw(`<section class="posts">`)
		for _, p := range page.Posts {
			postCard(w, p)
		}
		w.raw(`</section>`)
	})
}

func postCard(w *writer, p learnedgeek.PostSummary) {
	w.raw(`<article class="post-card`)
	if p.Featured {
		w.raw(` featured`)
	}
	w.raw(`">`)
	w.raw(`<p class="meta"><time`)
	w.attr("datetime", p.DateString())
	w.raw(`>`)
	w.text(FormatDate(p))
	w.raw(`</time> &middot; <a`)
	w.attr("href", CategoryHref(p.Category))
	w.raw(`>`)
	w.text(string(p.Category))
	w.raw(`</a></p><h2><a`)
	w.attr("href", p.Path())
	w.raw(`>`)
	w.text(p.Title)
	w.raw(`</a></h2><p>`)
	w.text(p.Description)
	w.raw(`</p>`)
	tagList(w, p.Tags)
	w.raw(`</article>`)
}

func tagList(w *writer, tags []string) {
	if len(tags) == 0 {
		return
	}
	w.raw(`<ul class="tags">`)
	for _, t := range tags {
		w.raw(`<li>`)
		w.text(t)
		w.raw(`</li>`)
	}
	w.raw(`</ul>`)
}

// Post renders a single post with related posts and the comment widget.
func Post(cfg learnedgeek.SiteConfig, page learnedgeek.PostPage) templ.Component {
	head := func(w *writer, _ context.Context) {
		if page.JSONLD != "" {
			w.raw(`<script type="application/ld+json">`, page.JSONLD, `</script>`)
		}
	}
	p := page.Post
	return layout(cfg, page.Meta, head, func(w *writer, _ context.Context) {
		w.raw(`<article class="post">`)
		w.raw(`<p class="meta"><time`)
		w.attr("datetime", p.DateString())
		w.raw(`>`)
		w.text(FormatDate(p.PostSummary))
		w.raw(`</time> &middot; <a`)
		w.attr("href", CategoryHref(p.Category))
		w.raw(`>`)
		w.text(string(p.Category))
		w.raw(`</a></p><h1>`)
		w.text(p.Title)
		w.raw(`</h1>`)
		if p.Image != "" {
			w.raw(`<img class="hero"`)
			w.attr("src", p.Image)
			w.attr("alt", p.Title)
			w.raw(`>`)
		}
		tagList(w, p.Tags)
		w.raw(`<div class="content">`, p.HTML, `</div>`)
		w.raw(`</article>`)

		if len(page.Related) > 0 {
			w.raw(`<section class="related"><h2>Related posts</h2>`)
			for _, r := range page.Related {
				postCard(w, r)
			}
			w.raw(`</section>`)
		}

		if page.Comments.Enabled() {
			comments(w, page.Comments)
		}
	})
}

// comments embeds giscus. Threads are mapped by page path, so each post's
// discussion follows its permalink.
func comments(w *writer, c learnedgeek.CommentsConfig) {
	w.raw(`<section class="comments"><script src="https://giscus.app/client.js"`)
	w.attr("data-repo", c.Repo)
	w.attr("data-repo-id", c.RepoID)
	w.attr("data-category", c.Category)
	w.attr("data-category-id", c.CategoryID)
	w.raw(` data-mapping="pathname" data-strict="0" data-reactions-enabled="1" data-emit-metadata="0"`)
	w.raw(` data-input-position="bottom" data-theme="preferred_color_scheme" data-lang="en" data-loading="lazy"`)
	w.raw(` crossorigin="anonymous" async></script></section>`)
}

// Contact renders the contact form, or the thank-you note once sent.
func Contact(cfg learnedgeek.SiteConfig, page learnedgeek.ContactPage) templ.Component {
	head := func(w *writer, _ context.Context) {
		if page.Disabled || page.Sent {
			return
		}
		w.raw(`<script`)
		w.attr("src", "https://www.google.com/recaptcha/api.js?render="+PathEscape(page.SiteKey))
		w.raw(`></script>`)
	}
	return layout(cfg, page.Meta, head, func(w *writer, _ context.Context) {
		w.raw(`<h1>Contact</h1>`)
		switch {
		case page.Disabled:
			w.raw(`<p class="notice">The contact form is not available right now.</p>`)
			return
		case page.Sent:
			w.raw(`<p class="notice">Thanks! Your message is on its way.</p>`)
			return
		}
		if page.Error != "" {
			w.raw(`<p class="notice" role="alert">`)
			w.text(page.Error)
			w.raw(`</p>`)
		}
		w.raw(`<form class="contact" method="post" action="/contact" id="contact-form">`)
		w.raw(`<label>Name<input name="name" required`)
		w.attr("value", page.Name)
		w.raw(`></label>`)
		w.raw(`<label>Email<input type="email" name="email" required`)
		w.attr("value", page.Email)
		w.raw(`></label>`)
		w.raw(`<label>Message<textarea name="message" rows="8" required>`)
		w.text(page.Message)
		w.raw(`</textarea></label>`)
		w.raw(`<input type="hidden" name="g-recaptcha-response" id="g-recaptcha-response">`)
		w.raw(`<button type="submit">Send</button></form>`)
		w.raw(`<script>document.getElementById("contact-form").addEventListener("submit",function(e){`)
		w.raw(`var f=this;if(f.dataset.ok){return}e.preventDefault();grecaptcha.ready(function(){`)
		w.raw(`grecaptcha.execute(`)
		w.raw(jsString(page.SiteKey))
		w.raw(`,{action:"contact"}).then(function(t){document.getElementById("g-recaptcha-response").value=t;f.dataset.ok="1";f.submit()})})});</script>`)
	})
}

// NotFound renders the 404 page.
func NotFound(cfg learnedgeek.SiteConfig) templ.Component {
	meta := learnedgeek.PageMeta{Title: "Not found | " + cfg.Name, OGType: "website"}
	return layout(cfg, meta, nil, func(w *writer, _ context.Context) {
		w.raw(`<h1>Not found</h1><p>That page does not exist. Try the <a href="/blog">post list</a>.</p>`)
	})
}

// ServerError renders the 5xx page.
func ServerError(cfg learnedgeek.SiteConfig) templ.Component {
	meta := learnedgeek.PageMeta{Title: "Something went wrong | " + cfg.Name, OGType: "website"}
	return layout(cfg, meta, nil, func(w *writer, _ context.Context) {
		w.raw(`<h1>Something went wrong</h1><p>The error has been logged. Please try again later.</p>`)
	})
}

package learnedgeek

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// relatedLimit is how many related posts a post page shows.
const relatedLimit = 3

func handleIndexRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/blog")
}

// handleBlog serves the listing. An unknown or empty category parameter
// means no filter.
func (a *App) handleBlog(c echo.Context) error {
	page := ListPage{
		Meta: PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL, "blog"),
			OGType:      "website",
		},
		Categories: a.Service.CategoryCounts(),
	}
	if cat, ok := ParseCategory(c.QueryParam("category")); ok {
		page.Active = cat
		page.Posts = a.Service.PostsByCategory(cat)
		page.Meta.Title = string(cat) + " | " + a.Config.Name
	} else {
		page.Posts = a.Service.AllPosts()
	}
	return Render(c, a.Views.List(page))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Service.PostBySlug(c.Request().Context(), slug)
	switch {
	case errors.Is(err, ErrSlugNotFound):
		a.metrics.lookupErrors.WithLabelValues("slug_not_found").Inc()
		a.Logger.Info().Str("slug", slug).Msg("post not found")
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	case errors.Is(err, ErrContentMissing):
		a.metrics.lookupErrors.WithLabelValues("content_missing").Inc()
		a.Logger.Error().Err(err).Str("slug", slug).Msg("registered post has no content file")
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	case err != nil:
		a.metrics.lookupErrors.WithLabelValues("render_failure").Inc()
		return fmt.Errorf("render post %q: %w", slug, err)
	}

	permalink := Permalink(a.Config.URL, post.Slug)
	page := PostPage{
		Meta: PageMeta{
			Title:       post.Title + " | " + a.Config.Name,
			Description: post.Description,
			URL:         permalink,
			OGType:      "article",
			Image:       absoluteURL(a.Config.URL, post.Image),
		},
		Post:     post,
		Related:  a.Service.RelatedPosts(post.PostSummary, relatedLimit),
		JSONLD:   BlogPostingJsonLD(post.PostSummary, a.Config),
		Comments: a.Config.Comments,
	}
	if post.Date.After(a.Service.Today()) {
		// preview of an unpublished post
		c.Response().Header().Set("Cache-Control", "no-store")
	}
	return Render(c, a.Views.Post(page))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/favicon.svg")
}

// handleRobots generates robots.txt pointing at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /metrics\n\nSitemap: %s\n", BuildURL(a.Config.URL, "sitemap.xml"))
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

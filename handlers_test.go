package learnedgeek

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRedirectsToBlog(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	rec := get(app, "/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog", rec.Header().Get("Location"))
}

func TestBlogListing(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	rec := get(app, "/blog")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "list active= posts=b-slug,a-slug,ghost", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestBlogCategoryFilter(t *testing.T) {
	app := newTestApp(t, scenarioFS())

	tests := []struct {
		query string
		want  string
	}{
		{"tech", "list active=Tech posts=b-slug,a-slug"},
		{"Writing", "list active=Writing posts=ghost"},
		{"Gaming", "list active=Gaming posts="},
		{"cooking", "list active= posts=b-slug,a-slug,ghost"},
		{"", "list active= posts=b-slug,a-slug,ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := get(app, "/blog?category="+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestBlogTrailingSlashRedirects(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	rec := get(app, "/blog/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog", rec.Header().Get("Location"))
}

func TestPostPage(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	rec := get(app, "/blog/post/a-slug")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "post a-slug related=b-slug url=https://example.com/blog/post/a-slug\n"), body)
	assert.Contains(t, body, "<strong>A</strong>")
}

func TestPostPageCaseInsensitive(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	rec := get(app, "/blog/post/A-Slug")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "post a-slug ")
}

func TestPostPageNotFound(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	for _, slug := range []string{"missing-post", "c-slug", "ghost"} {
		t.Run(slug, func(t *testing.T) {
			rec := get(app, "/blog/post/"+slug)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "not found", rec.Body.String())
		})
	}
}

func TestPostPagePreviewShowsFuturePost(t *testing.T) {
	app := newTestApp(t, scenarioFS(), WithServiceOptions(WithPreview(true)))
	rec := get(app, "/blog/post/c-slug")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "post c-slug ")

	rec = get(app, "/blog")
	assert.NotContains(t, rec.Body.String(), "c-slug")
}

type brokenBodyStore struct{ PostStore }

func (brokenBodyStore) LoadBody(string) (string, error) {
	return "", errors.New("disk on fire")
}

func TestPostPageUnreadableBodyIsNotFound(t *testing.T) {
	app := newTestApp(t, scenarioFS(), WithStore(brokenBodyStore{NewFileStore(scenarioFS(), "posts.json")}))
	rec := get(app, "/blog/post/a-slug")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", rec.Body.String())
}

func TestPostPageRenderFailure(t *testing.T) {
	app := newTestApp(t, scenarioFS(), WithRenderer(failingRenderer{}))
	rec := get(app, "/blog/post/a-slug")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "server error", rec.Body.String())

	metrics := get(app, "/metrics").Body.String()
	assert.Contains(t, metrics, `learnedgeek_post_lookup_failures_total{reason="render_failure"} 1`)
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	rec := get(app, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", rec.Body.String())
}

func TestRobots(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	rec := get(app, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://example.com/sitemap.xml\n")
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
}

func TestEmbeddedStylesheet(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	rec := get(app, "/public/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
}

func TestSecurityHeaders(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	rec := get(app, "/blog")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://giscus.app")
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	get(app, "/blog/post/missing-post")
	get(app, "/blog/post/ghost")
	get(app, "/feed.xml")

	rec := get(app, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `learnedgeek_post_lookup_failures_total{reason="slug_not_found"} 1`)
	assert.Contains(t, body, `learnedgeek_post_lookup_failures_total{reason="content_missing"} 1`)
	assert.Contains(t, body, `learnedgeek_feed_items{format="rss"} 3`)
	assert.Contains(t, body, `learnedgeek_registry_entries{state="loaded"} 4`)
	assert.Contains(t, body, "requests_total")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	app := newTestAppWithConfig(t, cfg, scenarioFS())
	assert.Equal(t, http.StatusNotFound, get(app, "/metrics").Code)
}

func TestSkippedEntriesDoNotBreakListing(t *testing.T) {
	fsys := fstest.MapFS{
		"posts.json": {Data: []byte(`{"posts":[
			{"slug":"ok","title":"OK","category":"Tech","date":"2026-01-01"},
			{"slug":"","title":"No slug","category":"Tech","date":"2026-01-02"},
			{"slug":"bad-date","title":"Bad","category":"Tech","date":"01/02/2026"}
		]}`)},
		"ok.md": {Data: []byte("ok")},
	}
	app := newTestApp(t, fsys)
	rec := get(app, "/blog")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "list active= posts=ok", rec.Body.String())
}

func TestMixedCaseBlogPathsRedirect(t *testing.T) {
	app := newTestApp(t, scenarioFS())

	tests := []struct {
		target, location string
	}{
		{"/Blog/Post/b-slug", "/blog/post/b-slug"},
		{"/BLOG/post/B-Slug", "/blog/post/B-Slug"},
		{"/Blog?category=Tech", "/blog?category=Tech"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(app, tt.target)
			assert.Equal(t, http.StatusMovedPermanently, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}

	rec := get(app, get(app, "/Blog/Post/b-slug").Header().Get("Location"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "post b-slug ")
}

func TestCanonicalBlogPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		changed bool
	}{
		{"/blog", "/blog", false},
		{"/blog/post/A-Slug", "/blog/post/A-Slug", false},
		{"/Blog", "/blog", true},
		{"/Blog/Post/A-Slug", "/blog/post/A-Slug", true},
		{"/blogging", "/blogging", false},
		{"/feed.xml", "/feed.xml", false},
	}
	for _, tt := range tests {
		got, changed := canonicalBlogPath(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.changed, changed, tt.in)
	}
}

func TestErrorResponsesAreNotCached(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	for _, target := range []string{"/blog/post/missing-post", "/blog/post/ghost", "/nope"} {
		rec := get(app, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"), target)
	}

	failing := newTestApp(t, scenarioFS(), WithRenderer(failingRenderer{}))
	rec := get(failing, "/blog/post/a-slug")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestPreviewPostIsNotCached(t *testing.T) {
	app := newTestApp(t, scenarioFS(), WithServiceOptions(WithPreview(true)))

	rec := get(app, "/blog/post/c-slug")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = get(app, "/blog/post/a-slug")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

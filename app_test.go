package learnedgeek

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnedgeek/learnedgeek/recaptcha"
)

// stubViews renders each page as a short line of text so handler tests can
// assert on what the handler passed in.
func stubViews() ViewFuncs {
	text := func(s string) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, s)
			return err
		})
	}
	return ViewFuncs{
		List: func(p ListPage) templ.Component {
			return text(fmt.Sprintf("list active=%s posts=%s", p.Active, strings.Join(slugs(p.Posts), ",")))
		},
		Post: func(p PostPage) templ.Component {
			return text(fmt.Sprintf("post %s related=%s url=%s\n%s", p.Post.Slug,
				strings.Join(slugs(p.Related), ","), p.Meta.URL, p.Post.HTML))
		},
		Contact: func(p ContactPage) templ.Component {
			return text(fmt.Sprintf("contact disabled=%t sent=%t error=%q", p.Disabled, p.Sent, p.Error))
		},
		NotFound:    func() templ.Component { return text("not found") },
		ServerError: func() templ.Component { return text("server error") },
	}
}

type fakeVerifier struct {
	enabled bool
	result  recaptcha.Result
	err     error
	calls   int
}

func (f *fakeVerifier) Enabled() bool   { return f.enabled }
func (f *fakeVerifier) SiteKey() string { return "site-key" }

func (f *fakeVerifier) Verify(_ context.Context, _, _ string) (recaptcha.Result, error) {
	f.calls++
	return f.result, f.err
}

func testConfig() SiteConfig {
	return SiteConfig{
		Name:           "Test Blog",
		URL:            "https://example.com/",
		Description:    "Testing.",
		MetricsEnabled: true,
	}
}

func newTestApp(t *testing.T, fsys fstest.MapFS, opts ...Option) *App {
	t.Helper()
	return newTestAppWithConfig(t, testConfig(), fsys, opts...)
}

func newTestAppWithConfig(t *testing.T, cfg SiteConfig, fsys fstest.MapFS, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{
		WithStore(NewFileStore(fsys, "posts.json")),
		WithServiceOptions(WithClock(func() time.Time { return fixedNow })),
		WithVerifier(&fakeVerifier{}),
	}, opts...)
	app := New(cfg, stubViews(), zerolog.Nop(), opts...)
	require.NoError(t, app.Init())
	t.Cleanup(func() { app.Close() })
	return app
}

func doRequest(app *App, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func get(app *App, target string) *httptest.ResponseRecorder {
	return doRequest(app, http.MethodGet, target, nil)
}

func postForm(app *App, target string, form url.Values) *httptest.ResponseRecorder {
	return doRequest(app, http.MethodPost, target, strings.NewReader(form.Encode()))
}

func TestInitFailsWithoutRegistry(t *testing.T) {
	app := New(testConfig(), stubViews(), zerolog.Nop(), WithStore(NewFileStore(fstest.MapFS{}, "posts.json")))
	err := app.Init()
	assert.ErrorIs(t, err, ErrRegistryUnavailable)
}

func TestInitRejectsBadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Nowhere/Special"
	app := New(cfg, stubViews(), zerolog.Nop(), WithStore(NewFileStore(scenarioFS(), "posts.json")))
	assert.Error(t, app.Init())
}

func TestInitTrimsTrailingSlashFromURL(t *testing.T) {
	app := newTestApp(t, scenarioFS())
	assert.Equal(t, "https://example.com", app.Config.URL)
}

func TestCustomRoutes(t *testing.T) {
	app := newTestApp(t, scenarioFS(), WithCustomRoutes(func(a *App) {
		a.Echo.GET("/about", func(c echo.Context) error { return c.String(http.StatusOK, "about") })
	}))
	rec := get(app, "/about")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "about", rec.Body.String())
}

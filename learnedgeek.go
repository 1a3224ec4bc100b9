// Package learnedgeek serves a personal technical blog built from a JSON
// post registry and one Markdown file per post.
//
// The App wires the post store, the blog service, the echo handlers and
// middleware together. Templates are supplied by the caller through the
// ViewFuncs struct, so the package itself never decides what a page looks
// like.
package learnedgeek

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/learnedgeek/learnedgeek/markdown"
	"github.com/learnedgeek/learnedgeek/recaptcha"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	List        func(page ListPage) templ.Component
	Post        func(page PostPage) templ.Component
	Contact     func(page ContactPage) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// ListPage is everything the listing template needs.
type ListPage struct {
	Meta       PageMeta
	Posts      []PostSummary
	Active     Category // empty when no filter applies
	Categories []CategoryCount
}

// PostPage is everything the single-post template needs.
type PostPage struct {
	Meta     PageMeta
	Post     PostDetail
	Related  []PostSummary
	JSONLD   string
	Comments CommentsConfig
}

// ContactPage is everything the contact form template needs.
type ContactPage struct {
	Meta     PageMeta
	SiteKey  string
	Disabled bool
	Sent     bool
	Error    string
	Name     string
	Email    string
	Message  string
}

// CaptchaVerifier checks bot-mitigation tokens submitted with forms.
type CaptchaVerifier interface {
	Enabled() bool
	SiteKey() string
	Verify(ctx context.Context, token, remoteIP string) (recaptcha.Result, error)
}

// App is the central application. It wires together the store, service,
// handlers, middleware, and caller-provided templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Logger  zerolog.Logger
	Service *BlogService
	Views   ViewFuncs

	store          PostStore
	renderer       markdown.Renderer
	serviceOpts    []ServiceOption
	verifier       CaptchaVerifier
	contactLimiter *ContactLimiter
	metrics        *siteMetrics
	customRoutes   []func(*App)
	initialized    bool
}

// New creates an App with the given configuration and views. Nothing is
// loaded until Init or Start is called.
func New(cfg SiteConfig, views ViewFuncs, logger zerolog.Logger, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Logger: logger,
		Views:  views,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init loads the registry and registers middleware and routes. A registry
// that cannot be loaded is fatal: the error wraps ErrRegistryUnavailable.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	loc, err := a.Config.Location()
	if err != nil {
		return fmt.Errorf("learnedgeek: timezone %q: %w", a.Config.Timezone, err)
	}

	if a.store == nil {
		a.store = NewFileStore(os.DirFS(a.Config.ContentDir), filepath.ToSlash(a.Config.RegistryFile))
	}
	entries, err := a.store.LoadRegistry()
	if err != nil {
		return fmt.Errorf("learnedgeek: %w", err)
	}
	snap := NewSnapshot(entries, a.Logger)
	a.Logger.Info().
		Int("posts", snap.Len()).
		Int("skipped", len(snap.skipped)).
		Msg("registry loaded")

	opts := append([]ServiceOption{
		WithLocation(loc),
		WithPreview(a.Config.PreviewFuture),
	}, a.serviceOpts...)
	if a.renderer == nil {
		a.renderer = markdown.New()
	}
	a.Service = NewBlogService(snap, a.store, a.renderer, opts...)

	a.metrics = newSiteMetrics()
	a.metrics.observeSnapshot(snap)

	if a.verifier == nil {
		a.verifier = recaptcha.NewVerifier(a.Config.Recaptcha)
	}
	a.contactLimiter = NewContactLimiter(5, 10*time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info().Str("addr", a.Config.Addr).Str("url", a.Config.URL).Msg("listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(assets)))))
	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/", handleIndexRedirect)
	e.GET("/blog", a.handleBlog)
	e.GET("/blog/post/:slug", a.handlePost)

	e.GET("/feed.xml", a.handleRSS)
	e.GET("/feed.json", a.handleJSONFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	e.GET("/contact", a.handleContactForm)
	e.POST("/contact", a.handleContactSubmit)

	if a.Config.MetricsEnabled {
		e.GET("/metrics", a.metricsHandler())
	}
}

// Close releases background resources. Call it when the app shuts down.
func (a *App) Close() error {
	if a.contactLimiter != nil {
		a.contactLimiter.Stop()
	}
	return nil
}

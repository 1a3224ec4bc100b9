package learnedgeek

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/learnedgeek/learnedgeek/markdown"
	"github.com/learnedgeek/learnedgeek/recaptcha"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "LEARNEDGEEK"

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `default:"Learned Geek"`          // Site name, feed title
	URL         string `default:"http://localhost:3000"` // Canonical base URL for permalinks
	Description string `default:"Notes from a developer who keeps learning."`
	Author      string // Author name for JSON-LD and feeds
	Language    string `default:"en-us"`

	Addr          string `default:":3000"`      // Listen address
	ContentDir    string `split_words:"true" default:"content"`
	RegistryFile  string `split_words:"true" default:"posts.json"` // Relative to ContentDir
	StaticDir     string `split_words:"true" default:"public"`
	Timezone      string `default:"UTC"`                   // Zone that decides which day "today" is
	PreviewFuture bool   `split_words:"true"`              // Serve future posts by permalink

	LogLevel  string `split_words:"true" default:"info"`
	LogFormat string `split_words:"true" default:"json"` // "json" or "console"

	MetricsEnabled bool `split_words:"true" default:"true"`

	Comments  CommentsConfig
	Recaptcha recaptcha.Settings

	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// CommentsConfig configures the giscus widget. Discussions are keyed by the
// page path, so every post gets its own thread.
type CommentsConfig struct {
	Repo       string
	RepoID     string `envconfig:"REPO_ID"`
	Category   string
	CategoryID string `envconfig:"CATEGORY_ID"`
}

// Enabled reports whether enough is configured to embed the widget.
func (c CommentsConfig) Enabled() bool {
	return c.Repo != "" && c.RepoID != "" && c.CategoryID != ""
}

// LoadConfig reads SiteConfig from LEARNEDGEEK_* environment variables.
func LoadConfig() (SiteConfig, error) {
	var cfg SiteConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("load config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (c SiteConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// setDefaults fills zero values for configs built in code rather than
// loaded from the environment.
func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Learned Geek"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Language == "" {
		c.Language = "en-us"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.RegistryFile == "" {
		c.RegistryFile = "posts.json"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	c.Recaptcha.SetDefaults()
}

// Option configures additional App behavior.
type Option func(*App)

// WithStore replaces the file-system post store, mainly for tests.
func WithStore(s PostStore) Option {
	return func(a *App) {
		a.store = s
	}
}

// WithServiceOptions passes options through to the BlogService.
func WithServiceOptions(opts ...ServiceOption) Option {
	return func(a *App) {
		a.serviceOpts = append(a.serviceOpts, opts...)
	}
}

// WithRenderer replaces the goldmark Markdown renderer.
func WithRenderer(r markdown.Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}

// WithVerifier replaces the reCAPTCHA verifier used by the contact form.
func WithVerifier(v CaptchaVerifier) Option {
	return func(a *App) {
		a.verifier = v
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

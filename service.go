package learnedgeek

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/learnedgeek/learnedgeek/markdown"
)

var (
	// ErrSlugNotFound is returned when no visible post has the requested slug.
	ErrSlugNotFound = errors.New("post not found")

	// ErrContentMissing is returned when a post is registered but its body
	// cannot be loaded.
	ErrContentMissing = errors.New("post content missing")

	// ErrRenderFailure is returned when the Markdown body fails to convert.
	ErrRenderFailure = errors.New("post render failed")
)

// BlogService answers every read the site makes about posts. It holds an
// immutable snapshot, so it is safe for concurrent use.
type BlogService struct {
	snap     *Snapshot
	bodies   PostStore
	renderer markdown.Renderer
	now      func() time.Time
	loc      *time.Location
	preview  bool
}

// ServiceOption configures a BlogService.
type ServiceOption func(*BlogService)

// WithClock sets the clock that decides what "today" is.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *BlogService) {
		s.now = now
	}
}

// WithLocation sets the time zone in which "today" is evaluated.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *BlogService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithPreview makes future-dated posts reachable by slug. They stay out of
// every listing and feed.
func WithPreview(on bool) ServiceOption {
	return func(s *BlogService) {
		s.preview = on
	}
}

// NewBlogService returns a service over snap, loading bodies from bodies
// and rendering them with renderer.
func NewBlogService(snap *Snapshot, bodies PostStore, renderer markdown.Renderer, opts ...ServiceOption) *BlogService {
	s := &BlogService{
		snap:     snap,
		bodies:   bodies,
		renderer: renderer,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current calendar day as midnight UTC, comparable with post
// dates.
func (s *BlogService) Today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *BlogService) visible(p PostSummary) bool {
	return !p.Date.After(s.Today())
}

// AllPosts returns published posts, newest first. Posts sharing a date keep
// their registry order.
func (s *BlogService) AllPosts() []PostSummary {
	pub := s.snap.published(s.Today())
	return append(make([]PostSummary, 0, len(pub)), pub...)
}

// PostsByCategory returns published posts in category c, newest first.
// A category outside the set yields no posts.
func (s *BlogService) PostsByCategory(c Category) []PostSummary {
	var out []PostSummary
	for _, p := range s.snap.published(s.Today()) {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// RecentPosts returns at most n published posts, newest first. Both feeds
// draw from this same selection.
func (s *BlogService) RecentPosts(n int) []PostSummary {
	all := s.AllPosts()
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// PostBySlug looks slug up ignoring case, loads its body and renders it.
func (s *BlogService) PostBySlug(ctx context.Context, slug string) (PostDetail, error) {
	p, ok := s.snap.lookup(slug)
	if !ok || (!s.preview && !s.visible(p)) {
		return PostDetail{}, fmt.Errorf("%w: %q", ErrSlugNotFound, slug)
	}
	body, err := s.bodies.LoadBody(p.Slug)
	if err != nil {
		return PostDetail{}, fmt.Errorf("%w: %s: %v", ErrContentMissing, p.Slug, err)
	}
	html, err := s.renderer.Render(ctx, body)
	if err != nil {
		return PostDetail{}, fmt.Errorf("%w: %s: %v", ErrRenderFailure, p.Slug, err)
	}
	return PostDetail{PostSummary: p, Content: body, HTML: html}, nil
}

// RelatedPosts returns up to limit published posts in the same category as
// p, newest first, never including p itself.
func (s *BlogService) RelatedPosts(p PostSummary, limit int) []PostSummary {
	if limit <= 0 {
		return nil
	}
	var out []PostSummary
	for _, candidate := range s.snap.published(s.Today()) {
		if candidate.Category != p.Category || strings.EqualFold(candidate.Slug, p.Slug) {
			continue
		}
		out = append(out, candidate)
		if len(out) == limit {
			break
		}
	}
	return out
}

// CategoryCounts returns the number of published posts per category, in
// display order. Categories without posts are included with a zero count.
func (s *BlogService) CategoryCounts() []CategoryCount {
	counts := make(map[Category]int, len(Categories))
	for _, p := range s.snap.published(s.Today()) {
		counts[p.Category]++
	}
	out := make([]CategoryCount, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, CategoryCount{Category: c, Count: counts[c]})
	}
	return out
}

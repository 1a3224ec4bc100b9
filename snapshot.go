package learnedgeek

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/learnedgeek/learnedgeek/registry"
)

const dateLayout = registry.DateLayout

// Snapshot is the validated registry, built once and never modified. It
// replaces any process-wide cache: whoever needs the posts is handed the
// snapshot explicitly.
type Snapshot struct {
	byDate  []PostSummary // date descending, ties in registry order
	bySlug  map[string]int
	skipped []SkippedEntry
}

// SkippedEntry records a registry entry left out of the snapshot.
type SkippedEntry struct {
	Index  int
	Slug   string
	Reason string
}

// NewSnapshot validates entries and builds the snapshot. Malformed entries
// and duplicate slugs are skipped and logged rather than failing the whole
// registry. Duplicates are compared case-insensitively; the first one in
// registry order wins.
func NewSnapshot(entries []registry.Entry, logger zerolog.Logger) *Snapshot {
	s := &Snapshot{bySlug: make(map[string]int, len(entries))}
	seen := make(map[string]struct{}, len(entries))
	posts := make([]PostSummary, 0, len(entries))
	for i, e := range entries {
		p, reason := summaryFromEntry(e)
		if reason == "" {
			key := strings.ToLower(p.Slug)
			if _, dup := seen[key]; dup {
				reason = "duplicate slug"
			} else {
				seen[key] = struct{}{}
			}
		}
		if reason != "" {
			s.skipped = append(s.skipped, SkippedEntry{Index: i, Slug: e.Slug, Reason: reason})
			logger.Warn().Int("index", i).Str("slug", e.Slug).Str("reason", reason).Msg("skipping registry entry")
			continue
		}
		posts = append(posts, p)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
	for i, p := range posts {
		s.bySlug[strings.ToLower(p.Slug)] = i
	}
	s.byDate = posts
	return s
}

func summaryFromEntry(e registry.Entry) (PostSummary, string) {
	slug := strings.TrimSpace(e.Slug)
	if slug == "" {
		return PostSummary{}, "empty slug"
	}
	if strings.ContainsAny(slug, `/\`) {
		return PostSummary{}, "slug contains a path separator"
	}
	if strings.TrimSpace(e.Title) == "" {
		return PostSummary{}, "empty title"
	}
	cat, ok := ParseCategory(e.Category)
	if !ok {
		return PostSummary{}, "unknown category " + `"` + e.Category + `"`
	}
	date, err := e.ParsedDate()
	if err != nil {
		return PostSummary{}, "invalid date " + `"` + e.Date + `"`
	}
	tags := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return PostSummary{
		Slug:        slug,
		Title:       e.Title,
		Description: e.Description,
		Category:    cat,
		Tags:        tags,
		Date:        date,
		Featured:    e.Featured,
		Image:       e.Image,
	}, ""
}

// Len is the number of valid posts, published or not.
func (s *Snapshot) Len() int {
	return len(s.byDate)
}

// Skipped returns the entries that were left out, in registry order.
func (s *Snapshot) Skipped() []SkippedEntry {
	return append([]SkippedEntry(nil), s.skipped...)
}

// published returns the posts dated on or before today, newest first.
// byDate is sorted descending, so future posts form a prefix.
func (s *Snapshot) published(today time.Time) []PostSummary {
	i := sort.Search(len(s.byDate), func(i int) bool {
		return !s.byDate[i].Date.After(today)
	})
	return s.byDate[i:]
}

func (s *Snapshot) lookup(slug string) (PostSummary, bool) {
	i, ok := s.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return PostSummary{}, false
	}
	return s.byDate[i], true
}

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "posts": [
    {"slug": "older", "title": "Older", "description": "d", "category": "Tech", "tags": ["go"], "date": "2026-01-01", "featured": false},
    {"slug": "newer", "title": "Newer & better", "description": "d", "category": "Writing", "tags": [], "date": "2026-02-01", "featured": true, "linkedInHook": "Read this <now>"},
    {"slug": "same-day", "title": "Same day", "description": "d", "category": "Tech", "tags": [], "date": "2026-01-01", "featured": false}
  ]
}`

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	require.Len(t, doc.Posts, 3)
	assert.Equal(t, "newer", doc.Posts[1].Slug)
	assert.Equal(t, "Read this <now>", doc.Posts[1].LinkedInHook)
	assert.Equal(t, []string{"go"}, doc.Posts[0].Tags)
}

func TestDecodeEmptyPosts(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, doc.Posts)
	assert.Empty(t, doc.Posts)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"posts": [`))
	assert.Error(t, err)
}

func TestSortNewestFirstIsStable(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	doc.Posts = append(doc.Posts, Entry{Slug: "undated", Date: "someday"})

	doc.SortNewestFirst()

	var slugs []string
	for _, e := range doc.Posts {
		slugs = append(slugs, e.Slug)
	}
	assert.Equal(t, []string{"newer", "older", "same-day", "undated"}, slugs)
}

func TestAddRejectsDuplicate(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	err = doc.Add(Entry{Slug: "OLDER"})
	assert.True(t, errors.Is(err, ErrDuplicateSlug))

	require.NoError(t, doc.Add(Entry{Slug: "brand-new"}))
	assert.Equal(t, 3, doc.Find("brand-new"))
	assert.Equal(t, -1, doc.Find("missing"))
}

func TestSaveRoundTripPreservesFields(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "content", "posts.json")
	require.NoError(t, Save(path, doc))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"linkedInHook": "Read this <now>"`)
	assert.Contains(t, string(raw), `"title": "Newer & better"`)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc, again)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSaveKeepsUnknownKeys(t *testing.T) {
	const in = `{
  "site": "learnedgeek.com",
  "posts": [
    {"slug": "a", "title": "A", "description": "", "category": "Tech", "tags": [], "date": "2026-01-01", "featured": false,
     "image": "", "series": {"name": "Go <basics>", "part": 2}, "draft": true},
    {"slug": "b", "title": "B", "description": "", "category": "Tech", "tags": ["x"], "date": "2026-02-01", "featured": true,
     "image": "/img/b.png", "linkedInHook": "hook"}
  ]
}`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	assert.Contains(t, doc.Posts[0].Extra, "series")
	assert.Contains(t, doc.Posts[0].Extra, "image")
	assert.Nil(t, doc.Posts[1].Extra)

	doc.SortNewestFirst()
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, Save(path, doc))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"name": "Go <basics>"`)

	var want, got map[string]any
	require.NoError(t, json.Unmarshal([]byte(in), &want))
	require.NoError(t, json.Unmarshal(raw, &got))
	wantPosts := want["posts"].([]any)
	want["posts"] = []any{wantPosts[1], wantPosts[0]}
	assert.Equal(t, want, got)
}

func TestMarshalEntryExtraCannotShadowFields(t *testing.T) {
	e := Entry{Slug: "a", Title: "A", Tags: []string{}, Image: "/new.png", Extra: map[string]json.RawMessage{
		"image": json.RawMessage(`""`),
		"Slug":  json.RawMessage(`"other"`),
		"notes": json.RawMessage(`"kept"`),
	}}
	b, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "/new.png", got["image"])
	assert.Equal(t, "a", got["slug"])
	assert.Equal(t, "kept", got["notes"])
	assert.NotContains(t, got, "Slug")
}

func TestEncodeIndent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Document{Posts: []Entry{{Slug: "a"}}}))
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"posts\": [\n    {"))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDoc))
	}))
	defer srv.Close()

	doc, err := NewFetcher(0, time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, doc.Posts, 3)
}

func TestFetchRejectsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewFetcher(0, time.Second).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchRejectsGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	_, err := NewFetcher(0, time.Second).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

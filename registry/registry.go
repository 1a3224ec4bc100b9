// Package registry reads and writes the post registry document
// (posts.json), the authoritative list of post metadata.
//
// The document is an object with a single "posts" array. Entries are kept
// in file order; every field is preserved on rewrite, including editorial
// fields the site never renders.
package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DateLayout is the on-disk format of Entry.Date.
const DateLayout = "2006-01-02"

// ErrDuplicateSlug is returned by Add when the slug is already registered.
var ErrDuplicateSlug = errors.New("registry: slug already exists")

// Entry is one post as it appears in posts.json.
type Entry struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	Date         string   `json:"date"`
	Featured     bool     `json:"featured"`
	Image        string   `json:"image,omitempty"`
	LinkedInHook string   `json:"linkedInHook,omitempty"`

	// Extra holds keys the struct does not model, written back unchanged
	// after the known fields, in key order.
	Extra map[string]json.RawMessage `json:"-"`
}

// entryFields is Entry without its JSON methods.
type entryFields Entry

// UnmarshalJSON decodes the known fields and keeps everything else in
// Extra. An explicitly empty "image" or "linkedInHook" is kept as well.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var f entryFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*e = Entry(f)
	for _, k := range e.emittedKeys() {
		delete(raw, k)
	}
	e.Extra = nil
	if len(raw) > 0 {
		e.Extra = raw
	}
	return nil
}

// MarshalJSON writes the known fields followed by Extra. Extra keys that
// collide with a written field, ignoring case, are dropped.
func (e Entry) MarshalJSON() ([]byte, error) {
	f := entryFields(e)
	f.Extra = nil
	return marshalWithExtra(f, e.emittedKeys(), e.Extra)
}

func (e Entry) emittedKeys() []string {
	keys := []string{"slug", "title", "description", "category", "tags", "date", "featured"}
	if e.Image != "" {
		keys = append(keys, "image")
	}
	if e.LinkedInHook != "" {
		keys = append(keys, "linkedInHook")
	}
	return keys
}

// ParsedDate parses Date as a calendar day at midnight UTC.
func (e Entry) ParsedDate() (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(e.Date))
}

// Document is the top-level posts.json object.
type Document struct {
	Posts []Entry `json:"posts"`

	// Extra holds top-level keys other than "posts".
	Extra map[string]json.RawMessage `json:"-"`
}

type documentFields Document

// UnmarshalJSON decodes posts and keeps any other top-level keys in Extra.
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var f documentFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*d = Document(f)
	delete(raw, "posts")
	d.Extra = nil
	if len(raw) > 0 {
		d.Extra = raw
	}
	return nil
}

// MarshalJSON writes posts followed by Extra.
func (d Document) MarshalJSON() ([]byte, error) {
	f := documentFields(d)
	f.Extra = nil
	return marshalWithExtra(f, []string{"posts"}, d.Extra)
}

// marshalWithExtra encodes v, a JSON object, and appends the extra keys in
// sorted order, skipping any that match a key in written.
func marshalWithExtra(v any, written []string, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := marshalNoEscape(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !containsFold(written, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return base, nil
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(bytes.TrimSuffix(base, []byte("}")))
	for _, k := range keys {
		name, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalNoEscape is json.Marshal without HTML escaping, matching Encode.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func containsFold(keys []string, k string) bool {
	for _, w := range keys {
		if strings.EqualFold(w, k) {
			return true
		}
	}
	return false
}

// Decode reads a Document from r.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("registry: decode: %w", err)
	}
	if doc.Posts == nil {
		doc.Posts = []Entry{}
	}
	return doc, nil
}

// Load reads the registry file at path.
func Load(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes doc as indented JSON. Non-ASCII text and HTML characters
// are written as-is so hand edits stay readable.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Save writes doc to path through a temporary file and a rename, so a
// failed write never leaves a truncated registry behind.
func Save(path string, doc Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}
	return atomicWriteFile(path, buf.Bytes(), 0o644)
}

// SortNewestFirst orders entries by date descending. The sort is stable, so
// entries sharing a date keep their relative order. Entries whose date does
// not parse sink to the end.
func (d *Document) SortNewestFirst() {
	sort.SliceStable(d.Posts, func(i, j int) bool {
		ti, erri := d.Posts[i].ParsedDate()
		tj, errj := d.Posts[j].ParsedDate()
		switch {
		case erri != nil:
			return false
		case errj != nil:
			return true
		}
		return ti.After(tj)
	})
}

// Find returns the index of the first entry whose slug matches slug
// case-insensitively, or -1.
func (d Document) Find(slug string) int {
	for i, e := range d.Posts {
		if strings.EqualFold(e.Slug, slug) {
			return i
		}
	}
	return -1
}

// Add appends e unless its slug is already present.
func (d *Document) Add(e Entry) error {
	if d.Find(e.Slug) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateSlug, e.Slug)
	}
	d.Posts = append(d.Posts, e)
	return nil
}

func atomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	closed = true
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

package views

import (
	"encoding/json"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/learnedgeek/learnedgeek"
)

// writer accumulates the first write error so page code can stay linear.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(parts ...string) {
	for _, p := range parts {
		if w.err != nil {
			return
		}
		_, w.err = io.WriteString(w.w, p)
	}
}

// text writes s HTML-escaped.
func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (w *writer) attr(name, value string) {
	w.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// PathEscape wraps url.PathEscape for use in hrefs.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// CategoryHref links to the listing filtered by c, or unfiltered when c is
// empty.
func CategoryHref(c learnedgeek.Category) string {
	if c == "" {
		return "/blog"
	}
	return "/blog?category=" + url.QueryEscape(string(c))
}

// FormatDate renders a post date for humans, e.g. "January 5, 2026".
func FormatDate(p learnedgeek.PostSummary) string {
	return p.Date.Format("January 2, 2006")
}

func categoryClass(active bool) string {
	if active {
		return "active"
	}
	return ""
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// jsString quotes s as a JavaScript string literal safe inside <script>.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

package scaffold

import (
	"strings"
	"testing"
)

func TestWritePost(t *testing.T) {
	var b strings.Builder
	err := WritePost(&b, PostData{
		Slug:        "hello",
		Title:       "Hello <World>",
		Description: "First post.",
		Tags:        []string{"go", "blog"},
	})
	if err != nil {
		t.Fatalf("WritePost: %v", err)
	}
	out := b.String()
	for _, want := range []string{"# Hello <World>\n", "First post.\n", "Tags: go, blog"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePostWithoutDescription(t *testing.T) {
	var b strings.Builder
	if err := WritePost(&b, PostData{Title: "Bare"}); err != nil {
		t.Fatalf("WritePost: %v", err)
	}
	if !strings.HasPrefix(b.String(), "# Bare\n\nWrite the post here.") {
		t.Errorf("unexpected output:\n%s", b.String())
	}
}

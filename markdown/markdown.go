// Package markdown converts post bodies from Markdown to HTML.
//
// Conversion is delegated to goldmark with the GitHub-flavoured extensions.
// Absolute http(s) links open in a new tab, and headings get stable ids so
// sections can be linked to.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Renderer turns Markdown text into HTML.
type Renderer interface {
	Render(ctx context.Context, md string) (string, error)
}

// Goldmark is the default Renderer.
type Goldmark struct {
	md goldmark.Markdown
}

// New returns a goldmark-backed Renderer. Raw HTML in the source is passed
// through: post bodies are authored in the repository, not by visitors.
func New() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithASTTransformers(util.Prioritized(externalLinks{}, 500)),
			),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts md to HTML. The output for a given input is always the
// same.
func (g *Goldmark) Render(ctx context.Context, md string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("markdown: convert: %w", err)
	}
	return buf.String(), nil
}

// externalLinks marks absolute http(s) links to open in a new tab.
type externalLinks struct{}

func (externalLinks) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok || !IsExternal(string(link.Destination)) {
			return ast.WalkContinue, nil
		}
		link.SetAttributeString("target", []byte("_blank"))
		link.SetAttributeString("rel", []byte("noopener noreferrer"))
		return ast.WalkContinue, nil
	})
}

// IsExternal reports whether dest is an absolute http or https URL.
func IsExternal(dest string) bool {
	d := strings.ToLower(strings.TrimSpace(dest))
	return strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://")
}

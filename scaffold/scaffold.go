// Package scaffold provides the embedded template used by
// `learnedgeek posts new` to start a post body.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// PostData is passed to templates/post.md.tmpl.
type PostData struct {
	Slug        string
	Title       string
	Description string
	Tags        []string
}

var funcs = template.FuncMap{"join": strings.Join}

// WritePost renders the post body template for d into w.
func WritePost(w io.Writer, d PostData) error {
	tmpl, err := template.New("post.md.tmpl").Funcs(funcs).ParseFS(Templates, "templates/post.md.tmpl")
	if err != nil {
		return fmt.Errorf("parse post template: %w", err)
	}
	if err := tmpl.Execute(w, d); err != nil {
		return fmt.Errorf("execute post template: %w", err)
	}
	return nil
}

package learnedgeek

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/learnedgeek/learnedgeek/registry"
)

var (
	// ErrRegistryUnavailable is returned when the registry cannot be read or
	// parsed. The site cannot serve anything without it.
	ErrRegistryUnavailable = errors.New("post registry unavailable")

	// ErrBodyNotFound is returned when no Markdown file exists for a slug.
	ErrBodyNotFound = errors.New("post body not found")
)

// PostStore provides the raw registry and post bodies.
type PostStore interface {
	LoadRegistry() ([]registry.Entry, error)
	LoadBody(slug string) (string, error)
}

// FileStore reads the registry and the {slug}.md bodies from a file system.
// Bodies live in the same directory as the registry.
type FileStore struct {
	fsys     fs.FS
	registry string
}

// NewFileStore returns a FileStore reading registryPath from fsys.
func NewFileStore(fsys fs.FS, registryPath string) *FileStore {
	return &FileStore{fsys: fsys, registry: registryPath}
}

// LoadRegistry reads and decodes the registry document.
func (s *FileStore) LoadRegistry() ([]registry.Entry, error) {
	f, err := s.fsys.Open(s.registry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	defer f.Close()
	doc, err := registry.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return doc.Posts, nil
}

// LoadBody returns the Markdown body of the post with the given slug.
// The slug must come from the registry, never straight from a request.
func (s *FileStore) LoadBody(slug string) (string, error) {
	name := path.Join(path.Dir(s.registry), slug+".md")
	if !fs.ValidPath(name) || path.Base(name) != slug+".md" {
		return "", fmt.Errorf("%w: %q", ErrBodyNotFound, slug)
	}
	b, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrBodyNotFound, slug)
		}
		return "", err
	}
	return string(b), nil
}

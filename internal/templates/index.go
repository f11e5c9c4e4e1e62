package templates

import (
	"errors"
	"fmt"
	"path"
	"sort"

	"git.home.luguber.info/inful/pagesmith/internal/plan"
	"git.home.luguber.info/inful/pagesmith/internal/slug"
)

// ErrWrongExtension indicates a template file the engine cannot parse.
var ErrWrongExtension = errors.New("template must use the .html extension")

// Index maps template names, slash paths relative to the templates root, to
// the files that hold them.
type Index struct {
	files map[string]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{files: make(map[string]string)}
}

// Add registers the template file at path under name.
func (ix *Index) Add(name, file string) error {
	name = path.Clean(name)
	if path.Ext(name) != "."+plan.HTMLExt {
		return fmt.Errorf("%w: %s", ErrWrongExtension, name)
	}
	if existing, ok := ix.files[name]; ok {
		return fmt.Errorf("template %s registered twice (%s, %s)", name, existing, file)
	}
	ix.files[name] = file
	return nil
}

// File returns the file backing a template name.
func (ix *Index) File(name string) (string, bool) {
	f, ok := ix.files[name]
	return f, ok
}

// Names returns all template names in lexical order.
func (ix *Index) Names() []string {
	names := make([]string, 0, len(ix.files))
	for name := range ix.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of templates.
func (ix *Index) Len() int { return len(ix.files) }

// Find resolves the template for a page. An exact match on the page's own path
// wins; otherwise the nearest `page` template walking up from the page's
// directory to the root. ok is false when neither exists.
func (ix *Index) Find(s slug.Slug, effective plan.MediaType) (name string, ok bool) {
	ext := effective.Extension()
	if exact := s.WithExt(ext).ToPath(); ix.has(exact) {
		return exact, true
	}

	reserved := slug.Slug{Stem: slug.Other(slug.ReservedName), Ext: ext}
	dir := s.Parent
	for {
		reserved.Parent = dir
		if candidate := reserved.ToPath(); ix.has(candidate) {
			return candidate, true
		}
		if dir == "" {
			return "", false
		}
		dir = parentDir(dir)
	}
}

func (ix *Index) has(name string) bool {
	_, ok := ix.files[name]
	return ok
}

func parentDir(dir string) string {
	d := path.Dir(dir)
	if d == "." || d == "/" {
		return ""
	}
	return d
}

// Package metadata holds per-page metadata and the ordered store that indexes it
// by slug.
package metadata

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Metadata describes one content page. It is created with defaults during
// classification and filled in by the page's own render steps.
//
// Empty strings and a nil Frontmatter mean "absent".
type Metadata struct {
	Slug slug.Slug

	// Frontmatter is the author-supplied structured document, if any.
	Frontmatter map[string]any

	// Title is the flattened text of the page's level-1 heading.
	Title string

	// URL is the site-absolute URL of the rendered page.
	URL string

	// IsArticle marks pages that originated from rendered markup.
	IsArticle bool

	// Bibliography is the bibliography source path relative to the page's directory.
	Bibliography string

	// Fingerprint identifies the rendered content of the page.
	Fingerprint string
}

// New returns the default metadata of a page whose output uses outputExt.
func New(s slug.Slug, outputExt string, isArticle bool) *Metadata {
	return &Metadata{
		Slug:      s,
		URL:       URLFor(s, outputExt),
		IsArticle: isArticle,
	}
}

// URLFor computes the URL of a page. HTML index pages are addressed by their
// directory; everything else by its output file path.
func URLFor(s slug.Slug, outputExt string) string {
	if s.Stem.IsIndex() && outputExt == "html" {
		if s.Parent == "" {
			return "/"
		}
		return "/" + s.Parent + "/"
	}
	return "/" + s.WithExt(outputExt).ToPath()
}

// DisplayTitle returns the page title, falling back to a title derived from the
// file or directory name.
func (m *Metadata) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	name := m.Slug.Stem.Name()
	if m.Slug.Stem.IsIndex() {
		if m.Slug.Parent == "" {
			return "Home"
		}
		name = path.Base(m.Slug.Parent)
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

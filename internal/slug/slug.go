// Package slug defines the canonical identity of a content page.
//
// A Slug is derived from a path relative to the content root and carries a
// total order that keeps every directory's non-index pages ahead of its index
// page, and every nested directory ahead of the page that owns it. The Metadata
// Store relies on that order to answer subtree queries with one range scan.
package slug

import (
	"cmp"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// IndexName is the file stem that marks a directory's index page.
const IndexName = "index"

// ReservedName is the file stem used by templates (`page.html`) and therefore
// forbidden for content pages.
const ReservedName = "page"

var (
	// ErrNoFileName indicates the path has no file name component.
	ErrNoFileName = errors.New("path has no file name")
	// ErrNotRelative indicates the path escapes its root or is absolute.
	ErrNotRelative = errors.New("path must be relative to its root")
)

type stemKind uint8

const (
	kindOther stemKind = iota
	kindIndex
	// kindEnd sorts after every real stem of a directory. Only range bounds use it.
	kindEnd
)

// Stem is the file name without extension: either the distinguished Index
// value or an arbitrary name.
type Stem struct {
	kind stemKind
	name string
}

// Index returns the index stem.
func Index() Stem { return Stem{kind: kindIndex} }

// Other returns a non-index stem with the given name.
func Other(name string) Stem { return Stem{kind: kindOther, name: name} }

// IsIndex reports whether the stem is the index stem.
func (s Stem) IsIndex() bool { return s.kind == kindIndex }

// Name returns the stem as it appears in a file name.
func (s Stem) Name() string {
	if s.kind == kindIndex {
		return IndexName
	}
	return s.name
}

func (s Stem) String() string {
	if s.kind == kindIndex {
		return "Index"
	}
	return fmt.Sprintf("Other(%q)", s.name)
}

func compareStems(a, b Stem) int {
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}
	return strings.Compare(a.name, b.name)
}

// Slug is the canonical address of a content page.
//
// Parent is the slash-separated directory (empty at the root) and Ext is the
// source extension without its dot (empty when the file has none). Two slugs
// are equal iff all fields are equal, so == may be used directly.
type Slug struct {
	Parent string
	Stem   Stem
	Ext    string
}

// FromPath derives a slug from a path relative to the content root.
func FromPath(rel string) (Slug, error) {
	p := filepath.ToSlash(rel)
	if p == "" || strings.HasSuffix(p, "/") {
		return Slug{}, fmt.Errorf("%w: %q", ErrNoFileName, rel)
	}
	p = path.Clean(p)
	if p == "." || p == "/" {
		return Slug{}, fmt.Errorf("%w: %q", ErrNoFileName, rel)
	}
	if path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
		return Slug{}, fmt.Errorf("%w: %q", ErrNotRelative, rel)
	}

	dir, base := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")

	name, ext := splitExt(base)
	stem := Other(name)
	if name == IndexName {
		stem = Index()
	}
	return Slug{Parent: dir, Stem: stem, Ext: ext}, nil
}

// splitExt splits base into stem and extension. Dot files and names ending in a
// dot keep the whole base as their stem so ToPath reproduces them.
func splitExt(base string) (string, string) {
	ext := path.Ext(base)
	if ext == "" || ext == "." || ext == base {
		return base, ""
	}
	return strings.TrimSuffix(base, ext), ext[1:]
}

// FileName returns the slug's file name, including the extension if any.
func (s Slug) FileName() string {
	if s.Ext == "" {
		return s.Stem.Name()
	}
	return s.Stem.Name() + "." + s.Ext
}

// ToPath projects the slug back to a slash-separated relative path.
func (s Slug) ToPath() string {
	if s.Parent == "" {
		return s.FileName()
	}
	return s.Parent + "/" + s.FileName()
}

// String implements fmt.Stringer.
func (s Slug) String() string { return s.ToPath() }

// WithExt returns a copy of s with its extension replaced.
func (s Slug) WithExt(ext string) Slug {
	s.Ext = strings.TrimPrefix(ext, ".")
	return s
}

// IsReserved reports whether the slug uses the stem reserved for templates.
func (s Slug) IsReserved() bool {
	return s.Stem.kind == kindOther && s.Stem.name == ReservedName
}

// Compare orders slugs: parent directories component-wise in reverse (deeper
// and later directories first), then stems with Index after every Other name,
// then extensions.
func Compare(a, b Slug) int {
	if c := compareParents(a.Parent, b.Parent); c != 0 {
		return -c
	}
	if c := compareStems(a.Stem, b.Stem); c != 0 {
		return c
	}
	return strings.Compare(a.Ext, b.Ext)
}

// Less reports whether a sorts before b.
func Less(a, b Slug) bool { return Compare(a, b) < 0 }

func compareParents(a, b string) int {
	return slices.Compare(components(a), components(b))
}

func components(dir string) []string {
	if dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}

// Range is the half-open interval [Lower, Upper) in slug order.
type Range struct {
	Lower Slug
	Upper Slug
}

// Contains reports whether s lies inside the range.
func (r Range) Contains(s Slug) bool {
	return Compare(r.Lower, s) <= 0 && Compare(s, r.Upper) < 0
}

// SubpageRange returns the slugs considered subpages of s.
//
// For an index page these are the non-index pages of its own directory. For a
// page named `name` they are the pages inside the sibling directory `name/`,
// including that directory's index page.
func (s Slug) SubpageRange() Range {
	if s.Stem.IsIndex() {
		return Range{
			Lower: Slug{Parent: s.Parent, Stem: Other("")},
			Upper: Slug{Parent: s.Parent, Stem: Index()},
		}
	}
	dir := s.Stem.name
	if s.Parent != "" {
		dir = s.Parent + "/" + dir
	}
	return Range{
		Lower: Slug{Parent: dir, Stem: Other("")},
		Upper: Slug{Parent: dir, Stem: Stem{kind: kindEnd}},
	}
}

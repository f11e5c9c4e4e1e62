package metadata

import (
	"fmt"

	"git.home.luguber.info/inful/pagesmith/internal/slug"
	"github.com/emirpasic/gods/trees/redblacktree"
)

// View is read-only access to the store, as used while processing pages.
type View interface {
	Get(s slug.Slug) *Metadata
	Subpages(s slug.Slug) []*Metadata
}

// Store is an ordered map from slug to metadata. It is built once per build and
// is not safe for concurrent use.
type Store struct {
	tree *redblacktree.Tree
}

var _ View = (*Store)(nil)

// NewStore returns an empty store ordered by slug.Compare.
func NewStore() *Store {
	return &Store{tree: redblacktree.NewWith(compareSlugKeys)}
}

func compareSlugKeys(a, b interface{}) int {
	return slug.Compare(a.(slug.Slug), b.(slug.Slug))
}

// Insert adds m under m.Slug. Every slug is inserted exactly once during
// classification, so a duplicate is a programming error and panics.
func (s *Store) Insert(m *Metadata) {
	if _, found := s.tree.Get(m.Slug); found {
		panic(fmt.Sprintf("metadata: duplicate insert for slug %q", m.Slug))
	}
	s.tree.Put(m.Slug, m)
}

// Lookup returns the metadata for key if present.
func (s *Store) Lookup(key slug.Slug) (*Metadata, bool) {
	v, found := s.tree.Get(key)
	if !found {
		return nil, false
	}
	return v.(*Metadata), true
}

// Get returns the metadata for key. Every content slug is inserted before any
// render step runs, so a missing key panics.
func (s *Store) Get(key slug.Slug) *Metadata {
	m, ok := s.Lookup(key)
	if !ok {
		panic(fmt.Sprintf("metadata: no entry for slug %q", key))
	}
	return m
}

// Len returns the number of entries.
func (s *Store) Len() int { return s.tree.Size() }

// Subpages returns the metadata of every slug in key.SubpageRange(), in slug
// order. It seeks to the lower bound and scans forward until the upper bound.
func (s *Store) Subpages(key slug.Slug) []*Metadata {
	r := key.SubpageRange()
	node, _ := s.tree.Ceiling(r.Lower)
	if node == nil {
		return nil
	}

	var out []*Metadata
	it := s.tree.IteratorAt(node)
	for {
		k := it.Key().(slug.Slug)
		if slug.Compare(k, r.Upper) >= 0 {
			break
		}
		out = append(out, it.Value().(*Metadata))
		if !it.Next() {
			break
		}
	}
	return out
}

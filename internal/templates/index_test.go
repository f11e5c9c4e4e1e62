package templates

import (
	"testing"

	"git.home.luguber.info/inful/pagesmith/internal/plan"
	"git.home.luguber.info/inful/pagesmith/internal/slug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexOf(t *testing.T, names ...string) *Index {
	t.Helper()
	ix := NewIndex()
	for _, n := range names {
		require.NoError(t, ix.Add(n, "/templates/"+n))
	}
	return ix
}

func mustSlug(t *testing.T, rel string) slug.Slug {
	t.Helper()
	s, err := slug.FromPath(rel)
	require.NoError(t, err)
	return s
}

func TestIndex_Find(t *testing.T) {
	tests := []struct {
		name      string
		templates []string
		page      string
		want      string
		wantOK    bool
	}{
		{"nearer directory wins", []string{"a/page.html", "page.html"}, "a/b/c.md", "a/page.html", true},
		{"falls back to root", []string{"page.html"}, "a/b/c.md", "page.html", true},
		{"exact match beats page", []string{"a/b/c.html", "a/b/page.html"}, "a/b/c.md", "a/b/c.html", true},
		{"index exact match", []string{"blog/index.html", "page.html"}, "blog/index.md", "blog/index.html", true},
		{"none", []string{"x/page.html", "other.html"}, "a/b/c.md", "", false},
		{"sibling tree ignored", []string{"b/page.html"}, "a/c.md", "", false},
		{"root page", []string{"page.html"}, "about.html", "page.html", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := indexOf(t, tt.templates...).Find(mustSlug(t, tt.page), plan.HTML)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndex_AddRejectsWrongExtension(t *testing.T) {
	ix := NewIndex()
	err := ix.Add("page.md", "/templates/page.md")
	require.ErrorIs(t, err, ErrWrongExtension)
	assert.Equal(t, 0, ix.Len())
}

func TestIndex_AddRejectsDuplicates(t *testing.T) {
	ix := indexOf(t, "page.html")
	require.Error(t, ix.Add("./page.html", "/elsewhere/page.html"))
}

func TestIndex_Names(t *testing.T) {
	ix := indexOf(t, "z/page.html", "page.html", "a/page.html")
	assert.Equal(t, []string{"a/page.html", "page.html", "z/page.html"}, ix.Names())
	f, ok := ix.File("a/page.html")
	require.True(t, ok)
	assert.Equal(t, "/templates/a/page.html", f)
}

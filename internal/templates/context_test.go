package templates

import (
	"html/template"
	"testing"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageContext_Data(t *testing.T) {
	meta := metadata.New(mustSlug(t, "blog/post.md"), "html", true)
	meta.Title = "Post"
	meta.Fingerprint = "fp"
	meta.Frontmatter = map[string]any{"tags": []any{"go"}, "title": "Overridden", "author": "Ann"}
	child := metadata.New(mustSlug(t, "blog/post/detail.md"), "html", true)

	data := PageContext{
		Meta:     meta,
		Content:  "<p>x</p>",
		Subpages: []*metadata.Metadata{child},
		Debug:    true,
		Site:     map[string]any{"title": "Site"},
		BuiltAt:  time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}.Data()

	assert.Equal(t, "Ann", data["author"])
	assert.Equal(t, []any{"go"}, data["tags"])
	assert.Equal(t, "Post", data["title"], "computed keys win over frontmatter")
	assert.Equal(t, template.HTML("<p>x</p>"), data["content"])
	assert.Equal(t, meta.Frontmatter, data["frontmatter"])
	assert.Equal(t, "Post", data["display_title"])
	assert.Equal(t, "/blog/post.html", data["url"])
	assert.Equal(t, "blog/post.md", data["slug"])
	assert.Equal(t, true, data["is_article"])
	assert.Equal(t, true, data["debug"])
	assert.Equal(t, "fp", data["fingerprint"])
	assert.Equal(t, []*metadata.Metadata{child}, data["subpages"])
	assert.Equal(t, map[string]any{"title": "Site"}, data["site"])
	assert.Equal(t, "2024-05-06", data["build_date"])
}

func TestPageContext_DataDefaults(t *testing.T) {
	meta := metadata.New(mustSlug(t, "index.html"), "html", false)
	data := PageContext{Meta: meta}.Data()

	assert.Equal(t, map[string]any{}, data["frontmatter"])
	assert.Equal(t, []*metadata.Metadata{}, data["subpages"])
	assert.Equal(t, "Home", data["display_title"])
	assert.Equal(t, "/", data["url"])
	assert.Equal(t, false, data["is_article"])
	_, hasDate := data["build_date"]
	assert.False(t, hasDate)
}

func TestPageContext_RendersListing(t *testing.T) {
	ix := writeTemplates(t, map[string]string{
		"page.html": `<h1>{{ .display_title }}</h1><ul>{{ range .subpages }}<li><a href="{{ .URL }}">{{ .DisplayTitle }}</a></li>{{ end }}</ul>`,
	})
	e, err := NewHTMLEngine(ix)
	require.NoError(t, err)

	index := metadata.New(mustSlug(t, "blog/index.md"), "html", true)
	first := metadata.New(mustSlug(t, "blog/first-post.md"), "html", true)
	second := metadata.New(mustSlug(t, "blog/second.md"), "html", true)
	second.Title = "Second Post"

	out, err := e.Render("page.html", PageContext{Meta: index, Subpages: []*metadata.Metadata{first, second}}.Data())
	require.NoError(t, err)
	assert.Equal(t,
		`<h1>Blog</h1><ul><li><a href="/blog/first-post.html">First Post</a></li><li><a href="/blog/second.html">Second Post</a></li></ul>`,
		out)
}

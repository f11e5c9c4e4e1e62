package markup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/pagesmith/internal/citation"
	"git.home.luguber.info/inful/pagesmith/internal/metadata"
	"git.home.luguber.info/inful/pagesmith/internal/slug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const refsBib = `@misc{a, title = {Alpha}, year = {2001}}
@misc{c, title = {Gamma}, year = {2003}}
@misc{d, title = {Delta}, year = {2004}}
`

type recordingEngine struct {
	requests []citation.Request
}

func (e *recordingEngine) Resolve(requests []citation.Request) (*citation.Result, error) {
	e.requests = requests
	return citation.Numeric{}.Resolve(requests)
}

func newMeta(t *testing.T, rel string) *metadata.Metadata {
	t.Helper()
	s, err := slug.FromPath(rel)
	require.NoError(t, err)
	return metadata.New(s, "html", true)
}

func render(t *testing.T, r *Renderer, path, source string) (string, *metadata.Metadata, error) {
	t.Helper()
	meta := newMeta(t, filepath.Base(path))
	out, err := r.Render(RenderContext{Path: path, Source: []byte(source), Meta: meta})
	return out, meta, err
}

func TestRender_FrontmatterRoundTrip(t *testing.T) {
	r, err := NewRenderer(WithLibraryLoader(func(string) (*citation.Library, error) {
		return citation.NewLibrary()
	}))
	require.NoError(t, err)

	src := "```=json\n{\"bibliography\": \"refs.bib\", \"tags\": [\"go\"]}\n```\n\nBody text.\n"
	out, meta, err := render(t, r, "post.md", src)
	require.NoError(t, err)

	assert.Equal(t, "refs.bib", meta.Bibliography)
	assert.Equal(t, "refs.bib", meta.Frontmatter["bibliography"])
	assert.Equal(t, []any{"go"}, meta.Frontmatter["tags"])
	assert.NotContains(t, out, "bibliography")
	assert.NotContains(t, out, "<pre>")
	assert.Contains(t, out, "<p>Body text.</p>")
	assert.NotEmpty(t, meta.Fingerprint)
}

func TestRender_NoFrontmatter(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	src := "```json\n{\"bibliography\": \"refs.bib\"}\n```\n"
	out, meta, err := render(t, r, "post.md", src)
	require.NoError(t, err)
	assert.Nil(t, meta.Frontmatter)
	assert.Empty(t, meta.Bibliography)
	assert.Contains(t, out, `<code class="language-json">`)
}

func TestRender_FrontmatterMustLead(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	src := "Intro.\n\n```=json\n{\"a\": 1}\n```\n"
	_, meta, err := render(t, r, "post.md", src)
	require.NoError(t, err)
	assert.Nil(t, meta.Frontmatter)
}

func TestRender_FrontmatterErrors(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	tests := []struct {
		name string
		src  string
	}{
		{"malformed", "```=json\n{\"a\": \n```\n"},
		{"not an object", "```=json\n[1, 2]\n```\n"},
		{"bibliography not a string", "```=json\n{\"bibliography\": 3}\n```\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := render(t, r, "post.md", tt.src)
			require.ErrorIs(t, err, ErrFrontmatter)
			var se *StageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, StageFrontmatter, se.Stage)
		})
	}
}

func TestRender_CustomBibliographyField(t *testing.T) {
	var loaded string
	r, err := NewRenderer(
		WithBibliographyField("$.refs.file"),
		WithLibraryLoader(func(path string) (*citation.Library, error) {
			loaded = path
			return citation.NewLibrary()
		}),
	)
	require.NoError(t, err)

	src := "```=json\n{\"refs\": {\"file\": \"../shared/refs.bib\"}}\n```\n"
	_, meta, err := render(t, r, filepath.Join("content", "blog", "post.md"), src)
	require.NoError(t, err)
	assert.Equal(t, "../shared/refs.bib", meta.Bibliography)
	assert.Equal(t, filepath.Join("content", "shared", "refs.bib"), loaded)
}

func TestNewRenderer_InvalidField(t *testing.T) {
	_, err := NewRenderer(WithBibliographyField("$.a["))
	require.Error(t, err)
}

func TestRender_Title(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, meta, err := render(t, r, "post.md", "Lead paragraph.\n\n## Sub\n\n# Hello *World* `code`\n\nText.\n")
	require.NoError(t, err)
	assert.Equal(t, "Hello World code", meta.Title)
	assert.Contains(t, out, "<h1 id=\"hello-world-code\">Hello <em>World</em> <code>code</code></h1>")
}

func TestRender_TitleDecodesEscapes(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	tests := []struct {
		src  string
		want string
	}{
		{"# Fish &amp; Chips\n", "Fish & Chips"},
		{"# Tom \\*&amp;\\* Jerry\n", "Tom *&* Jerry"},
		{"# A &#38; B &lt;c&gt;\n", "A & B <c>"},
		{"# Use `a\\*b &amp;`\n", "Use a\\*b &amp;"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			_, meta, err := render(t, r, "post.md", tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, meta.Title)
		})
	}
}

func TestRender_NoTitle(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, meta, err := render(t, r, "post.md", "## Only a subheading\n")
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
}

func TestRender_DuplicateTitle(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, _, err = render(t, r, "post.md", "# One\n\ntext\n\n- item\n\n  # Two\n")
	require.ErrorIs(t, err, ErrDuplicateTitle)
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageTitle, se.Stage)
}

func TestRender_CitationSplicing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refs.bib"), []byte(refsBib), 0o600))

	engine := &recordingEngine{}
	r, err := NewRenderer(WithEngine(engine))
	require.NoError(t, err)

	src := "```=json\n{\"bibliography\": \"refs.bib\"}\n```\n\n# Paper\n\nFirst [a; b]{=cite} then [c]{=cite}.\n"
	out, _, err := render(t, r, filepath.Join(dir, "paper.md"), src)
	require.NoError(t, err)

	require.Len(t, engine.requests, 5)
	require.Len(t, engine.requests[0].Items, 1, "unknown key b is skipped")
	assert.Equal(t, "a", engine.requests[0].Items[0].Entry.Key)
	assert.False(t, engine.requests[0].Items[0].Hidden)
	assert.Equal(t, "c", engine.requests[1].Items[0].Entry.Key)
	for i, key := range []string{"a", "c", "d"} {
		item := engine.requests[2+i].Items[0]
		assert.True(t, item.Hidden)
		assert.Equal(t, key, item.Entry.Key)
	}

	assert.Contains(t, out,
		`<p>First <span class="citation"><a href="#ref-a">[1]</a></span> then <span class="citation"><a href="#ref-c">[2]</a></span>.</p>`)
	assert.NotContains(t, out, "{=cite}")

	assert.Contains(t, out, `<section class="reference"><h2 id="reference">Reference</h2>`)
	for _, anchor := range []string{`<span id="ref-a">[1]</span>`, `<span id="ref-c">[2]</span>`, `<span id="ref-d">[3]</span>`} {
		assert.Equal(t, 1, strings.Count(out, anchor), anchor)
	}
	assert.NotContains(t, out, "ref-b")
	assert.Less(t, strings.Index(out, "First"), strings.Index(out, `<section class="reference">`))
}

func TestRender_CitationInsideLinkText(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refs.bib"), []byte(refsBib), 0o600))
	r, err := NewRenderer()
	require.NoError(t, err)

	src := "```=json\n{\"bibliography\": \"refs.bib\"}\n```\n\n[see [a]{=cite}](http://x) and [c]{=cite}\n"
	out, _, err := render(t, r, filepath.Join(dir, "paper.md"), src)
	require.NoError(t, err)

	assert.Contains(t, out, `<a href="http://x">see <span class="citation">[1]</span></a>`)
	assert.Contains(t, out, `and <span class="citation"><a href="#ref-c">[2]</a></span>`)
}

func TestRender_CitationsWithoutBibliography(t *testing.T) {
	r, err := NewRenderer(WithLibraryLoader(func(string) (*citation.Library, error) {
		t.Fatal("no bibliography should be loaded")
		return nil, nil
	}))
	require.NoError(t, err)

	out, _, err := render(t, r, "post.md", "See [a]{=cite} here.\n")
	require.NoError(t, err)
	assert.Equal(t, "<p>See  here.</p>\n", out)
}

func TestRender_MissingBibliography(t *testing.T) {
	r, err := NewRenderer(WithReferenceTitle("References"))
	require.NoError(t, err)

	src := "```=json\n{\"bibliography\": \"missing.bib\"}\n```\n"
	_, _, err = render(t, r, filepath.Join(t.TempDir(), "post.md"), src)
	require.ErrorIs(t, err, ErrBibliography)
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageCitations, se.Stage)
}

func TestRender_ReferenceTitle(t *testing.T) {
	lib, err := citation.NewLibrary(&citation.Entry{Key: "x", Type: "misc", Fields: map[string]string{"title": "X"}})
	require.NoError(t, err)
	r, err := NewRenderer(
		WithReferenceTitle("Sources & Notes"),
		WithLibraryLoader(func(string) (*citation.Library, error) { return lib, nil }),
	)
	require.NoError(t, err)

	out, _, err := render(t, r, "post.md", "```=json\n{\"bibliography\": \"x.bib\"}\n```\n\nNo markers.\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<h2 id="reference">Sources &amp; Notes</h2>`)
	assert.Contains(t, out, `<span id="ref-x">[1]</span>`)
}

func TestRender_FingerprintTracksContent(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, m1, err := render(t, r, "a.md", "# A\n")
	require.NoError(t, err)
	_, m2, err := render(t, r, "b.md", "# A\n")
	require.NoError(t, err)
	_, m3, err := render(t, r, "c.md", "# B\n")
	require.NoError(t, err)

	assert.Equal(t, m1.Fingerprint, m2.Fingerprint)
	assert.NotEqual(t, m1.Fingerprint, m3.Fingerprint)
}

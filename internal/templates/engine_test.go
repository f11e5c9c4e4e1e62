package templates

import (
	"html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplates(t *testing.T, files map[string]string) *Index {
	t.Helper()
	root := t.TempDir()
	ix := NewIndex()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		require.NoError(t, ix.Add(name, p))
	}
	return ix
}

func TestHTMLEngine_Render(t *testing.T) {
	ix := writeTemplates(t, map[string]string{
		"page.html":         `<title>{{ .title | default "Untitled" }}</title>{{ template "partials/nav.html" (dict "url" .url) }}<main>{{ .content }}</main>`,
		"partials/nav.html": `<nav data-url="{{ .url }}"></nav>`,
	})
	e, err := NewHTMLEngine(ix)
	require.NoError(t, err)

	out, err := e.Render("page.html", map[string]any{
		"title":   "",
		"url":     "/blog/",
		"content": template.HTML("<p>hi</p>"),
	})
	require.NoError(t, err)
	assert.Equal(t, `<title>Untitled</title><nav data-url="/blog/"></nav><main><p>hi</p></main>`, out)
}

func TestHTMLEngine_EscapesUntrusted(t *testing.T) {
	ix := writeTemplates(t, map[string]string{"page.html": `{{ .content }}`})
	e, err := NewHTMLEngine(ix)
	require.NoError(t, err)

	out, err := e.Render("page.html", map[string]any{"content": "<b>"})
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;", out)
}

func TestHTMLEngine_Errors(t *testing.T) {
	_, err := NewHTMLEngine(writeTemplates(t, map[string]string{"page.html": `{{ .x `}))
	require.Error(t, err)

	e, err := NewHTMLEngine(writeTemplates(t, map[string]string{"page.html": `ok`}))
	require.NoError(t, err)
	_, err = e.Render("missing.html", nil)
	require.Error(t, err)
}

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "two")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, m)

	_, err = dict("a")
	require.Error(t, err)
	_, err = dict(1, 2)
	require.Error(t, err)
}

func TestDefaultValue(t *testing.T) {
	assert.Equal(t, "x", defaultValue("x", nil))
	assert.Equal(t, "x", defaultValue("x", ""))
	assert.Equal(t, "x", defaultValue("x", 0))
	assert.Equal(t, "x", defaultValue("x", []any{}))
	assert.Equal(t, "y", defaultValue("x", "y"))
	assert.Equal(t, true, defaultValue(false, true))
}

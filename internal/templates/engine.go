package templates

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"reflect"
)

// Engine renders a named template with a data map.
type Engine interface {
	Render(name string, data map[string]any) (string, error)
}

// HTMLEngine is an Engine over html/template. All indexed templates share one
// set, so any template can include another by name.
type HTMLEngine struct {
	set *template.Template
}

var _ Engine = (*HTMLEngine)(nil)

// NewHTMLEngine parses every template in ix.
func NewHTMLEngine(ix *Index) (*HTMLEngine, error) {
	set := template.New("").Funcs(Funcs())
	for _, name := range ix.Names() {
		file, _ := ix.File(name)
		body, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		if _, err := set.New(name).Parse(string(body)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
	}
	return &HTMLEngine{set: set}, nil
}

// Render implements Engine.
func (e *HTMLEngine) Render(name string, data map[string]any) (string, error) {
	tpl := e.set.Lookup(name)
	if tpl == nil {
		return "", fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Funcs returns the helper functions available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		// safeHTML marks s as trusted markup.
		"safeHTML": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec // page content is produced by the renderer
		"dict":     dict,
		"default":  defaultValue,
	}
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict needs an even number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %d is %T, not string", i/2, kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}

// defaultValue returns fallback when v is nil or the zero value of its type.
// Used as `{{ .x | default "y" }}`.
func defaultValue(fallback, v any) any {
	if v == nil {
		return fallback
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		if rv.Len() == 0 {
			return fallback
		}
	default:
		if rv.IsZero() {
			return fallback
		}
	}
	return v
}

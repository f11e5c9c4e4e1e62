package templates

import (
	"html/template"
	"maps"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/metadata"
)

// PageContext is everything a page template can see.
type PageContext struct {
	Meta     *metadata.Metadata
	Content  string
	Subpages []*metadata.Metadata
	Debug    bool
	Site     map[string]any
	BuiltAt  time.Time
}

// Data flattens the context into the template data map. Frontmatter fields are
// copied first so the computed keys always win.
func (c PageContext) Data() map[string]any {
	data := make(map[string]any, len(c.Meta.Frontmatter)+12)
	maps.Copy(data, c.Meta.Frontmatter)

	frontmatter := c.Meta.Frontmatter
	if frontmatter == nil {
		frontmatter = map[string]any{}
	}
	subpages := c.Subpages
	if subpages == nil {
		subpages = []*metadata.Metadata{}
	}

	data["content"] = template.HTML(c.Content) //nolint:gosec // rendered by the markup step or an HTML source page
	data["frontmatter"] = frontmatter
	data["title"] = c.Meta.Title
	data["display_title"] = c.Meta.DisplayTitle()
	data["url"] = c.Meta.URL
	data["slug"] = c.Meta.Slug.String()
	data["is_article"] = c.Meta.IsArticle
	data["debug"] = c.Debug
	data["fingerprint"] = c.Meta.Fingerprint
	data["subpages"] = subpages
	data["site"] = c.Site

	if _, ok := data["build_date"]; !ok && !c.BuiltAt.IsZero() {
		data["build_date"] = c.BuiltAt.UTC().Format("2006-01-02")
	}
	return data
}

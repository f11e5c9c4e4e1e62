package markup

import (
	"fmt"
	"html"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/citation"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	gast "github.com/yuin/goldmark/ast"
)

// ReferenceSectionID is the id of the appended reference list section.
const ReferenceSectionID = "reference"

func collectCitations(doc gast.Node) []*Citation {
	var markers []*Citation
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if c, ok := n.(*Citation); ok && entering {
			markers = append(markers, c)
		}
		return gast.WalkContinue, nil
	})
	return markers
}

// processCitations resolves every marker against the page's bibliography,
// splices the rendered fragments in and appends the reference list.
func (r *Renderer) processCitations(doc gast.Node, rc RenderContext) error {
	markers := collectCitations(doc)
	if rc.Meta.Bibliography == "" {
		if len(markers) > 0 {
			r.logger.Warn("Citation markers without a bibliography are dropped",
				logfields.Path(rc.Path), logfields.Count(len(markers)))
		}
		return nil
	}

	bibPath := filepath.Join(filepath.Dir(rc.Path), filepath.FromSlash(rc.Meta.Bibliography))
	lib, err := r.loadLibrary(bibPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBibliography, err)
	}

	requests := make([]citation.Request, 0, len(markers)+lib.Len())
	for _, m := range markers {
		var req citation.Request
		for _, key := range m.Keys {
			entry, ok := lib.Get(key)
			if !ok {
				r.logger.Warn("Unknown citation key skipped",
					logfields.Path(rc.Path), logfields.Key(key), slog.String("bibliography", bibPath))
				continue
			}
			req.Items = append(req.Items, citation.Item{Entry: entry})
		}
		requests = append(requests, req)
	}
	for _, entry := range lib.Entries() {
		requests = append(requests, citation.Request{Items: []citation.Item{{Entry: entry, Hidden: true}}})
	}

	res, err := r.engine.Resolve(requests)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCitation, err)
	}
	if len(res.Citations) != len(requests) {
		return fmt.Errorf("%w: engine returned %d fragments for %d requests", ErrCitation, len(res.Citations), len(requests))
	}

	splices := make([]Splice, 0, len(markers))
	for i, m := range markers {
		splices = append(splices, Splice{
			Offset:      m.Offset,
			Target:      m,
			Replacement: NewRawInline(fragmentFor(m, res.Citations[i])),
		})
	}
	if err := ApplySplices(splices); err != nil {
		return fmt.Errorf("%w: %w", ErrCitation, err)
	}

	doc.AppendChild(doc, NewRawBlock(referenceSection(r.referenceTitle, res.Bibliography)))
	r.logger.Debug("Resolved citations",
		logfields.Path(rc.Path), logfields.Count(len(markers)), slog.Int("references", len(res.Bibliography)))
	return nil
}

// fragmentFor picks the anchor-free form for markers inside link text, since
// links cannot nest.
func fragmentFor(m *Citation, f citation.Fragment) string {
	for p := m.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*gast.Link); ok {
			return f.Unlinked
		}
	}
	return f.HTML
}

func referenceSection(title string, refs []citation.Reference) string {
	var b strings.Builder
	b.WriteString(`<section class="reference"><h2 id="` + ReferenceSectionID + `">`)
	b.WriteString(html.EscapeString(title))
	b.WriteString(`</h2><div class="reference-grid">`)
	for _, ref := range refs {
		fmt.Fprintf(&b, `<div class="reference-key"><span id="%s">[%s]</span></div><cite class="reference-body">%s</cite>`,
			html.EscapeString(citation.AnchorID(ref.Key)), html.EscapeString(ref.Label), ref.HTML)
	}
	b.WriteString(`</div></section>`)
	return b.String()
}

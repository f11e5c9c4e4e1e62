// Package plan maps a content file's original media type to the ordered list of
// transform steps the pipeline runs for it.
package plan

import "strings"

// HTMLExt is the extension of the template engine's native format.
const HTMLExt = "html"

// DefaultMarkupExts are the extensions rendered as markup unless configured otherwise.
var DefaultMarkupExts = []string{"md", "markdown"}

// Kind classifies a media type.
type Kind uint8

const (
	KindOther Kind = iota
	KindMarkup
	KindHTML
)

func (k Kind) String() string {
	switch k {
	case KindMarkup:
		return "markup"
	case KindHTML:
		return "html"
	default:
		return "other"
	}
}

// MediaType is a file's media type together with the extension it is stored under.
type MediaType struct {
	Kind Kind
	Ext  string
}

// HTML is the media type of rendered markup and of templates.
var HTML = MediaType{Kind: KindHTML, Ext: HTMLExt}

// Extension returns the file extension (without dot) used for this media type.
func (m MediaType) Extension() string {
	if m.Kind == KindHTML {
		return HTMLExt
	}
	return m.Ext
}

func (m MediaType) String() string {
	if m.Ext == "" {
		return m.Kind.String()
	}
	return m.Kind.String() + "(" + m.Ext + ")"
}

// Step is one transform in a content file's plan.
type Step uint8

const (
	RenderMarkup Step = iota + 1
	ApplyTemplate
)

func (s Step) String() string {
	switch s {
	case RenderMarkup:
		return "render_markup"
	case ApplyTemplate:
		return "apply_template"
	default:
		return "unknown"
	}
}

// Plan is the immutable transform plan of one content file.
type Plan struct {
	Original  MediaType
	Effective MediaType
	Steps     []Step
}

// IsCopy reports whether the file is copied byte-for-byte.
func (p Plan) IsCopy() bool { return len(p.Steps) == 0 }

// Has reports whether step is part of the plan.
func (p Plan) Has(step Step) bool {
	for _, s := range p.Steps {
		if s == step {
			return true
		}
	}
	return false
}

// StepNames returns the step names in order.
func (p Plan) StepNames() []string {
	names := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		names = append(names, s.String())
	}
	return names
}

// Planner derives plans from extensions. The rule table is fixed; only the set
// of extensions treated as markup is configurable.
type Planner struct {
	markup map[string]struct{}
}

// NewPlanner returns a planner treating markupExts as markup. With no
// extensions it falls back to DefaultMarkupExts.
func NewPlanner(markupExts ...string) *Planner {
	if len(markupExts) == 0 {
		markupExts = DefaultMarkupExts
	}
	p := &Planner{markup: make(map[string]struct{}, len(markupExts))}
	for _, ext := range markupExts {
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" || ext == HTMLExt {
			continue
		}
		p.markup[ext] = struct{}{}
	}
	return p
}

// Classify returns the media type of a file with the given extension.
func (p *Planner) Classify(ext string) MediaType {
	ext = strings.TrimPrefix(ext, ".")
	if _, ok := p.markup[ext]; ok {
		return MediaType{Kind: KindMarkup, Ext: ext}
	}
	if ext == HTMLExt {
		return HTML
	}
	return MediaType{Kind: KindOther, Ext: ext}
}

// For returns the plan for a file with the given original extension.
//
//	markup -> [RenderMarkup, ApplyTemplate], effective media type HTML
//	html   -> [ApplyTemplate]
//	other  -> [] (copied unchanged)
func (p *Planner) For(ext string) Plan {
	original := p.Classify(ext)
	switch original.Kind {
	case KindMarkup:
		return Plan{Original: original, Effective: HTML, Steps: []Step{RenderMarkup, ApplyTemplate}}
	case KindHTML:
		return Plan{Original: original, Effective: HTML, Steps: []Step{ApplyTemplate}}
	default:
		return Plan{Original: original, Effective: original}
	}
}

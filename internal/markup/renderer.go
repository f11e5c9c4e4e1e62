// Package markup renders Markdown content pages to HTML, extracting frontmatter
// and the page title into metadata and resolving inline citations.
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/pagesmith/internal/citation"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metadata"
	"github.com/inful/mdfp"
	"github.com/ohler55/ojg/jp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

var (
	ErrFrontmatter    = errors.New("invalid frontmatter")
	ErrDuplicateTitle = errors.New("more than one level-1 heading")
	ErrBibliography   = errors.New("bibliography unavailable")
	ErrCitation       = errors.New("citation processing failed")
)

// Render stages, in execution order.
const (
	StageFrontmatter = "frontmatter"
	StageTitle       = "title"
	StageCitations   = "citations"
	StageHTML        = "html"
)

// StageError names the render stage a failure happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// RenderContext is the input of one render call. Meta is the page's own
// metadata slot and is updated in place.
type RenderContext struct {
	Path   string
	Source []byte
	Meta   *metadata.Metadata
}

// LibraryLoader loads the bibliography at an OS path.
type LibraryLoader func(path string) (*citation.Library, error)

// Renderer executes the RenderMarkup step.
type Renderer struct {
	md             goldmark.Markdown
	engine         citation.Engine
	field          jp.Expr
	loadLibrary    LibraryLoader
	referenceTitle string
	logger         *slog.Logger
}

// Option configures a Renderer.
type Option func(*options)

type options struct {
	engine         citation.Engine
	field          string
	loader         LibraryLoader
	referenceTitle string
	logger         *slog.Logger
}

// WithEngine sets the citation engine. Defaults to citation.Numeric.
func WithEngine(e citation.Engine) Option { return func(o *options) { o.engine = e } }

// WithBibliographyField sets the JSONPath that locates the bibliography path in frontmatter.
func WithBibliographyField(expr string) Option { return func(o *options) { o.field = expr } }

// WithLibraryLoader overrides how bibliography files are read.
func WithLibraryLoader(l LibraryLoader) Option { return func(o *options) { o.loader = l } }

// WithReferenceTitle sets the heading of the appended reference list.
func WithReferenceTitle(title string) Option { return func(o *options) { o.referenceTitle = title } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// NewRenderer builds a Renderer. It fails only on an invalid bibliography field expression.
func NewRenderer(opts ...Option) (*Renderer, error) {
	o := options{
		engine:         citation.Numeric{},
		field:          DefaultBibliographyField,
		loader:         citation.LoadLibrary,
		referenceTitle: "Reference",
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	field, err := jp.ParseString(o.field)
	if err != nil {
		return nil, fmt.Errorf("invalid bibliography field %q: %w", o.field, err)
	}

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, Citations),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		engine:         o.engine,
		field:          field,
		loadLibrary:    o.loader,
		referenceTitle: o.referenceTitle,
		logger:         o.logger,
	}, nil
}

// Render converts rc.Source to HTML. Frontmatter, title, bibliography and
// fingerprint are recorded on rc.Meta.
func (r *Renderer) Render(rc RenderContext) (string, error) {
	doc := r.md.Parser().Parse(text.NewReader(rc.Source))

	raw, fm, err := extractFrontmatter(doc, rc.Source)
	if err != nil {
		return "", &StageError{Stage: StageFrontmatter, Err: err}
	}
	if fm != nil {
		rc.Meta.Frontmatter = fm
		bib, err := lookupBibliography(r.field, fm)
		if err != nil {
			return "", &StageError{Stage: StageFrontmatter, Err: err}
		}
		rc.Meta.Bibliography = bib
	}

	title, err := extractTitle(doc, rc.Source)
	if err != nil {
		return "", &StageError{Stage: StageTitle, Err: err}
	}
	if title == "" {
		r.logger.Debug("No title heading", logfields.Path(rc.Path))
	} else {
		rc.Meta.Title = title
	}

	if err := r.processCitations(doc, rc); err != nil {
		return "", &StageError{Stage: StageCitations, Err: err}
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, rc.Source, doc); err != nil {
		return "", &StageError{Stage: StageHTML, Err: err}
	}
	out := buf.String()
	rc.Meta.Fingerprint = mdfp.CalculateFingerprintFromParts(raw, out)
	return out, nil
}

package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/citation"
	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/format"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/markup"
	"git.home.luguber.info/inful/pagesmith/internal/metadata"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/plan"
	"git.home.luguber.info/inful/pagesmith/internal/templates"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Request describes one build.
type Request struct {
	Input  string
	Output string
	// Release disables the template debug flag and enables formatting.
	Release bool
	// KeepGoing renders every page before reporting content errors, joined.
	KeepGoing bool
}

// EngineFactory builds the template engine for a classified site.
type EngineFactory func(*templates.Index) (templates.Engine, error)

// Builder runs builds for one configuration.
type Builder struct {
	cfg        *config.Config
	planner    *plan.Planner
	renderOpts []markup.Option
	formatter  format.Formatter
	newEngine  EngineFactory
	recorder   metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the base logger. Each build adds its build_id.
func WithLogger(l *slog.Logger) Option { return func(b *Builder) { b.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(b *Builder) { b.recorder = r } }

// WithFormatter overrides the formatter selected by the configuration.
func WithFormatter(f format.Formatter) Option { return func(b *Builder) { b.formatter = f } }

// WithTemplateEngine overrides the html/template engine.
func WithTemplateEngine(f EngineFactory) Option { return func(b *Builder) { b.newEngine = f } }

// WithCitationEngine overrides the numeric citation engine.
func WithCitationEngine(e citation.Engine) Option {
	return func(b *Builder) { b.renderOpts = append(b.renderOpts, markup.WithEngine(e)) }
}

// WithClock sets the time source used for build timestamps.
func WithClock(now func() time.Time) Option { return func(b *Builder) { b.now = now } }

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg *config.Config, opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg:     cfg,
		planner: plan.NewPlanner(cfg.Markup.Extensions...),
		renderOpts: []markup.Option{
			markup.WithBibliographyField(cfg.Bibliography.Field),
			markup.WithReferenceTitle(cfg.Bibliography.StyleLabel),
		},
		newEngine: func(ix *templates.Index) (templates.Engine, error) {
			e, err := templates.NewHTMLEngine(ix)
			if err != nil {
				return nil, err
			}
			return e, nil
		},
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.formatter == nil {
		f, err := format.ForTool(string(cfg.Format.Tool), b.logger)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid format.tool").Fatal().Build()
		}
		b.formatter = f
	}
	if _, err := markup.NewRenderer(b.renderOpts...); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid bibliography.field").Fatal().Build()
	}
	return b, nil
}

// Build renders req.Input into req.Output. Pages are processed strictly in
// ascending slug order so listing pages observe their subpages' metadata.
func (b *Builder) Build(ctx context.Context, req Request) (report *Report, err error) {
	start := b.now()
	report = &Report{
		BuildID: uuid.NewString(),
		Input:   req.Input,
		Output:  req.Output,
		Release: req.Release,
	}
	logger := b.logger.With(logfields.BuildID(report.BuildID))

	defer func() {
		report.Duration = b.now().Sub(start)
		b.recorder.ObserveBuildDuration(report.Duration)
		switch {
		case err == nil:
			b.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			b.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
		default:
			b.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		}
	}()

	if err := validateRequest(req); err != nil {
		return report, err
	}

	lock, err := acquireLock(req.Output)
	if err != nil {
		return report, err
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			logger.Warn("Failed to release output lock", logfields.Error(uerr))
		}
	}()

	files, err := Gather(req.Input)
	if err != nil {
		return report, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read input").Fatal().WithPath(req.Input).Build()
	}
	s, err := Parse(files, b.planner)
	if err != nil {
		return report, err
	}
	for _, f := range s.Ignored {
		logger.Debug("Ignoring file outside content, templates and static", logfields.Path(f.Rel))
	}

	engine, err := b.newEngine(s.Templates)
	if err != nil {
		return report, ferrors.WrapError(err, ferrors.CategoryTemplate, "load templates").Fatal().Build()
	}
	renderer, err := markup.NewRenderer(append(b.renderOpts, markup.WithLogger(logger))...)
	if err != nil {
		return report, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid bibliography.field").Fatal().Build()
	}

	if err := b.prepareOutput(req.Output); err != nil {
		return report, err
	}
	if err := b.copyStatic(s, req.Output, report); err != nil {
		return report, err
	}

	store := metadata.NewStore()
	for _, cf := range s.Content {
		store.Insert(metadata.New(cf.Slug, cf.Plan.Effective.Extension(), cf.Plan.Has(plan.RenderMarkup)))
	}

	run := &pageRun{
		store:    store,
		index:    s.Templates,
		engine:   engine,
		renderer: renderer,
		recorder: b.recorder,
		logger:   logger,
		output:   req.Output,
		debug:    !req.Release,
		site:     b.cfg.SiteData(),
		builtAt:  start,
	}

	logger.Info("Rendering content",
		logfields.Count(store.Len()), slog.Int("templates", s.Templates.Len()), slog.Bool("release", req.Release))

	var failures []error
	for _, cf := range s.Content {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("build canceled: %w", err)
		}
		page, err := run.process(cf)
		if err != nil {
			if !req.KeepGoing {
				return report, err
			}
			report.Failed++
			logger.Error("Page failed", logfields.Slug(page.Slug), logfields.Error(err))
			failures = append(failures, err)
			continue
		}
		report.Pages = append(report.Pages, page)
	}
	if len(failures) > 0 {
		return report, errors.Join(failures...)
	}

	if req.Release || b.cfg.Format.OnDebug {
		if err := b.format(ctx, req.Output, logger); err != nil {
			return report, err
		}
		report.Formatter = b.formatter.Name()
	}

	logger.Info("Build complete",
		logfields.Output(req.Output),
		logfields.Count(len(report.Pages)),
		logfields.Bytes(report.Bytes()),
		logfields.DurationMS(float64(b.now().Sub(start).Microseconds())/1000))
	return report, nil
}

func validateRequest(req Request) error {
	if req.Output == "" {
		return ferrors.ValidationError("output directory is required").Build()
	}
	st, err := os.Stat(req.Input)
	if err != nil || !st.IsDir() {
		return ferrors.ValidationError("input directory does not exist").WithPath(req.Input).Build()
	}
	absIn, err := filepath.Abs(req.Input)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "resolve input").Fatal().Build()
	}
	absOut, err := filepath.Abs(req.Output)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "resolve output").Fatal().Build()
	}
	if within(absOut, absIn) {
		return ferrors.ValidationError("output directory must not contain the input directory").
			WithPath(req.Output).Build()
	}
	// The output and its sibling lock file must stay out of the trees a build reads.
	for _, dir := range []string{ContentDir, TemplatesDir, StaticDir} {
		if within(filepath.Join(absIn, dir), absOut) {
			return ferrors.ValidationError("output directory must not be inside the input's " + dir + "/ directory").
				WithPath(req.Output).Build()
		}
	}
	return nil
}

// within reports whether p is dir or lies below it.
func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// acquireLock takes an exclusive lock on a sibling `<output>.lock` file so two
// builds cannot write the same output directory.
func acquireLock(output string) (*flock.Flock, error) {
	lockPath := filepath.Clean(output) + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil { //nolint:gosec // output parent directory
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output parent").Fatal().WithPath(lockPath).Build()
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "acquire output lock").Fatal().WithPath(lockPath).Build()
	}
	if !ok {
		return nil, ferrors.FileSystemError("output directory is locked by another build").WithPath(lockPath).Build()
	}
	return lock, nil
}

func (b *Builder) prepareOutput(output string) error {
	if b.cfg.Output.Clean {
		if err := os.RemoveAll(output); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "clean output").Fatal().WithPath(output).Build()
		}
	}
	if err := os.MkdirAll(output, 0o755); err != nil { //nolint:gosec // published site directory
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output").Fatal().WithPath(output).Build()
	}
	return nil
}

func (b *Builder) copyStatic(s *Site, output string, report *Report) error {
	for _, st := range s.Static {
		dst := filepath.Join(output, filepath.FromSlash(st.OutputRel))
		n, err := copyFile(st.Path, dst)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "copy static file").Fatal().WithPath(st.Rel).Build()
		}
		report.Static++
		report.StaticBytes += n
		b.recorder.IncPage(metrics.PageStatic)
		b.recorder.AddOutputBytes(n)
	}
	return nil
}

func (b *Builder) format(ctx context.Context, output string, logger *slog.Logger) error {
	start := time.Now()
	err := b.formatter.Format(ctx, output)
	b.recorder.ObserveStageDuration("format", time.Since(start))
	if err != nil {
		b.recorder.IncStageResult("format", metrics.ResultFatal)
		if errors.Is(err, format.ErrBinaryNotFound) {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "formatter unavailable (set format.tool to native or none)").
				Fatal().WithStage("format").Build()
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "format output").
			Fatal().WithPath(output).WithStage("format").Build()
	}
	b.recorder.IncStageResult("format", metrics.ResultSuccess)
	logger.Debug("Formatted output", logfields.Stage("format"), logfields.Formatter(b.formatter.Name()))
	return nil
}

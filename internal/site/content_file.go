package site

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/markup"
	"git.home.luguber.info/inful/pagesmith/internal/metadata"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/plan"
	"git.home.luguber.info/inful/pagesmith/internal/templates"
)

// pageRun holds what every content file's plan needs during one build.
type pageRun struct {
	store    metadata.View
	index    *templates.Index
	engine   templates.Engine
	renderer *markup.Renderer
	recorder metrics.Recorder
	logger   *slog.Logger
	output   string
	debug    bool
	site     map[string]any
	builtAt  time.Time
}

// process executes cf's plan and writes the result to its mirrored output path.
func (r *pageRun) process(cf *ContentFile) (PageReport, error) {
	start := time.Now()
	page := PageReport{
		Slug:   cf.Slug.String(),
		Source: cf.Rel,
		Output: cf.OutputRel(),
		Steps:  cf.Plan.StepNames(),
	}
	dst := filepath.Join(r.output, filepath.FromSlash(page.Output))

	if cf.Plan.IsCopy() {
		n, err := copyFile(cf.Path, dst)
		if err != nil {
			return page, ferrors.WrapError(err, ferrors.CategoryFileSystem, "copy content file").
				Fatal().WithPath(cf.Rel).Build()
		}
		page.Kind, page.Bytes, page.Duration = metrics.PageCopied, n, time.Since(start)
		r.recorder.IncPage(page.Kind)
		r.recorder.AddOutputBytes(n)
		return page, nil
	}

	src, err := os.ReadFile(cf.Path)
	if err != nil {
		return page, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read content file").
			Fatal().WithPath(cf.Rel).Build()
	}
	meta := r.store.Get(cf.Slug)
	content := string(src)
	page.Kind = metrics.PageUntemplated

	for _, step := range cf.Plan.Steps {
		stepStart := time.Now()
		switch step {
		case plan.RenderMarkup:
			content, err = r.renderer.Render(markup.RenderContext{Path: cf.Path, Source: src, Meta: meta})
			if err != nil {
				r.recorder.IncStageResult(step.String(), metrics.ResultFatal)
				return page, renderError(err, cf.Rel)
			}
		case plan.ApplyTemplate:
			name, ok := r.index.Find(cf.Slug, cf.Plan.Effective)
			if !ok {
				r.logger.Debug("No template found, writing content untemplated", logfields.Slug(page.Slug))
				break
			}
			data := templates.PageContext{
				Meta:     meta,
				Content:  content,
				Subpages: r.store.Subpages(cf.Slug),
				Debug:    r.debug,
				Site:     r.site,
				BuiltAt:  r.builtAt,
			}.Data()
			content, err = r.engine.Render(name, data)
			if err != nil {
				r.recorder.IncStageResult(step.String(), metrics.ResultFatal)
				return page, ferrors.WrapError(err, ferrors.CategoryTemplate, "apply template "+name).
					WithPath(cf.Rel).WithStage(step.String()).WithContext(ferrors.ContextSlug, page.Slug).Build()
			}
			page.Template = name
			page.Kind = metrics.PageTemplated
			r.logger.Debug("Applied template", logfields.Slug(page.Slug), logfields.Template(name))
		}
		r.recorder.ObserveStageDuration(step.String(), time.Since(stepStart))
		r.recorder.IncStageResult(step.String(), metrics.ResultSuccess)
	}

	n, err := writeFile(dst, content)
	if err != nil {
		return page, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write output").
			Fatal().WithPath(dst).Build()
	}
	page.Bytes, page.Duration = n, time.Since(start)
	r.recorder.IncPage(page.Kind)
	r.recorder.AddOutputBytes(n)
	return page, nil
}

func renderError(err error, rel string) error {
	category := ferrors.CategoryContent
	if errors.Is(err, markup.ErrBibliography) || errors.Is(err, markup.ErrCitation) {
		category = ferrors.CategoryCitation
	}
	b := ferrors.WrapError(err, category, "render markup").WithPath(rel)
	var se *markup.StageError
	if errors.As(err, &se) {
		b = b.WithStage(se.Stage)
	}
	return b.Build()
}

func writeFile(dst, content string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil { //nolint:gosec // published site directories
		return 0, err
	}
	if err := os.WriteFile(dst, []byte(content), 0o644); err != nil { //nolint:gosec // published site content
		return 0, err
	}
	return int64(len(content)), nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil { //nolint:gosec // published site directories
		return 0, err
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", src, err)
	}
	return n, nil
}

// Package site drives a build: it classifies the input tree, renders content
// pages in slug order and writes the output tree.
package site

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/plan"
	"git.home.luguber.info/inful/pagesmith/internal/slug"
	"git.home.luguber.info/inful/pagesmith/internal/templates"
)

// Reserved top-level directories of the input tree.
const (
	ContentDir   = "content"
	TemplatesDir = "templates"
	StaticDir    = "static"
)

var (
	ErrReservedPageName  = errors.New("content file uses the name reserved for templates")
	ErrTemplateExtension = templates.ErrWrongExtension
	ErrOutputCollision   = errors.New("two input files map to the same output path")
)

// ContentFile is a page below content/ together with its identity and plan.
type ContentFile struct {
	File
	Slug slug.Slug
	Plan plan.Plan
}

// OutputRel is the slash path of the page's output relative to the output root.
func (c *ContentFile) OutputRel() string {
	return c.Slug.WithExt(c.Plan.Effective.Extension()).ToPath()
}

// StaticFile is an asset below static/, copied verbatim.
type StaticFile struct {
	File
	OutputRel string
}

// Site is the classified input tree.
type Site struct {
	// Content is sorted in ascending slug order, the order pages are rendered in.
	Content   []*ContentFile
	Templates *templates.Index
	Static    []StaticFile
	Ignored   []File
}

// Parse classifies files by their top-level directory. Every configuration
// error found is reported, joined.
func Parse(files []File, planner *plan.Planner) (*Site, error) {
	s := &Site{Templates: templates.NewIndex()}
	var errs []error

	for _, f := range files {
		top, rest, nested := strings.Cut(f.Rel, "/")
		if !nested {
			s.Ignored = append(s.Ignored, f)
			continue
		}
		switch top {
		case ContentDir:
			cf, err := classifyContent(f, rest, planner)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			s.Content = append(s.Content, cf)
		case TemplatesDir:
			if err := s.Templates.Add(rest, f.Path); err != nil {
				errs = append(errs, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid template").
					Fatal().WithPath(f.Rel).Build())
			}
		case StaticDir:
			s.Static = append(s.Static, StaticFile{File: f, OutputRel: path.Clean(rest)})
		default:
			s.Ignored = append(s.Ignored, f)
		}
	}

	sort.SliceStable(s.Content, func(i, j int) bool {
		return slug.Less(s.Content[i].Slug, s.Content[j].Slug)
	})

	errs = append(errs, s.checkCollisions()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

func classifyContent(f File, rel string, planner *plan.Planner) (*ContentFile, error) {
	s, err := slug.FromPath(rel)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid content path").
			Fatal().WithPath(f.Rel).Build()
	}
	if s.IsReserved() {
		return nil, ferrors.WrapError(ErrReservedPageName, ferrors.CategoryConfig, "ambiguous content name").
			Fatal().WithPath(f.Rel).Build()
	}
	return &ContentFile{File: f, Slug: s, Plan: planner.For(s.Ext)}, nil
}

func (s *Site) checkCollisions() []error {
	owner := make(map[string]string, len(s.Content)+len(s.Static))
	var errs []error
	claim := func(out, rel string) {
		if prev, taken := owner[out]; taken {
			errs = append(errs, ferrors.WrapError(ErrOutputCollision, ferrors.CategoryConfig,
				fmt.Sprintf("%s and %s both write %s", prev, rel, out)).Fatal().WithPath(rel).Build())
			return
		}
		owner[out] = rel
	}
	for _, c := range s.Content {
		claim(c.OutputRel(), c.Rel)
	}
	for _, st := range s.Static {
		claim(st.OutputRel, st.Rel)
	}
	return errs
}

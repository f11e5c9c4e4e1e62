package site

import (
	"git.home.luguber.info/inful/pagesmith/internal/plan"
)

// PlanRow is the planned handling of one content file.
type PlanRow struct {
	Slug     string
	Source   string
	Output   string
	Template string
	Steps    []string
}

// Plan classifies input and reports, in render order, what a build would do
// with every content file. Nothing is read besides directory listings.
func (b *Builder) Plan(input string) ([]PlanRow, error) {
	files, err := Gather(input)
	if err != nil {
		return nil, err
	}
	s, err := Parse(files, b.planner)
	if err != nil {
		return nil, err
	}
	rows := make([]PlanRow, 0, len(s.Content))
	for _, cf := range s.Content {
		row := PlanRow{
			Slug:   cf.Slug.String(),
			Source: cf.Rel,
			Output: cf.OutputRel(),
			Steps:  cf.Plan.StepNames(),
		}
		if cf.Plan.Has(plan.ApplyTemplate) {
			if name, ok := s.Templates.Find(cf.Slug, cf.Plan.Effective); ok {
				row.Template = name
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

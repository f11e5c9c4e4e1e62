package commands

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/site"
)

// PlanCmd implements the 'plan' command.
type PlanCmd struct {
	Input string `arg:"" optional:"" default:"." help:"Site root holding content/, templates/ and static/" type:"path"`
}

func (p *PlanCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, p.Input, root.Config)
	if err != nil {
		return err
	}
	builder, err := site.NewBuilder(cfg, site.WithLogger(g.Logger))
	if err != nil {
		return err
	}
	rows, err := builder.Plan(p.Input)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Stdout, renderPlan(rows))
	return nil
}

func renderPlan(rows []site.PlanRow) string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		steps := "copy"
		if len(r.Steps) > 0 {
			steps = strings.Join(r.Steps, " > ")
		}
		tmpl := r.Template
		if tmpl == "" {
			tmpl = "-"
		}
		cells = append(cells, []string{r.Source, r.Output, steps, tmpl})
	}
	return renderTable([]string{"Source", "Output", "Steps", "Template"}, cells)
}

package commands

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/site"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws rows under headers. Columns listed in right are right aligned.
func renderTable(headers []string, rows [][]string, right ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(right))
	for _, col := range right {
		configs = append(configs, table.ColumnConfig{Number: col, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func renderSummary(r *site.Report) string {
	mode := "debug"
	if r.Release {
		mode = "release"
	}
	rows := [][]string{
		{"templated", humanize.Comma(int64(r.Count(metrics.PageTemplated)))},
		{"untemplated", humanize.Comma(int64(r.Count(metrics.PageUntemplated)))},
		{"copied", humanize.Comma(int64(r.Count(metrics.PageCopied)))},
		{"static", humanize.Comma(int64(r.Static))},
		{"written", humanize.Bytes(uint64(r.Bytes()))}, //nolint:gosec // sizes are never negative
	}
	if r.Formatter != "" {
		rows = append(rows, []string{"formatter", r.Formatter})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Built %s -> %s (%s) in %s\n", r.Input, r.Output, mode, r.Duration.Round(1e6))
	b.WriteString(renderTable([]string{"Pages", "Count"}, rows, 2))
	return b.String()
}

package site

import (
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

// PageReport describes how one content file was written.
type PageReport struct {
	Slug     string
	Source   string
	Output   string
	Template string
	Steps    []string
	Kind     metrics.PageLabel
	Bytes    int64
	Duration time.Duration
}

// Report summarises a build. It is returned even when the build fails, with
// the pages written up to that point.
type Report struct {
	BuildID     string
	Input       string
	Output      string
	Release     bool
	Pages       []PageReport
	Static      int
	StaticBytes int64
	Formatter   string
	Failed      int
	Duration    time.Duration
}

// Count returns the number of pages of the given kind.
func (r *Report) Count(kind metrics.PageLabel) int {
	n := 0
	for _, p := range r.Pages {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

// Bytes returns the total size of everything written.
func (r *Report) Bytes() int64 {
	total := r.StaticBytes
	for _, p := range r.Pages {
		total += p.Bytes
	}
	return total
}

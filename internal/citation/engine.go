package citation

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
)

// Item cites one library entry. Hidden items take no part in citation numbering
// order but guarantee the entry appears in the reference list.
type Item struct {
	Entry  *Entry
	Hidden bool
}

// Request is one citation as it appears in the document: zero or more items.
type Request struct {
	Items []Item
}

// Fragment is the rendered form of one request. Unlinked carries the same
// citation without anchors, for markers that sit inside link text.
type Fragment struct {
	HTML     string
	Unlinked string
	Keys     []string
}

// Reference is one rendered reference list entry.
type Reference struct {
	Key   string
	Label string
	HTML  string
}

// Result holds one fragment per request, in request order, and the reference list.
type Result struct {
	Citations    []Fragment
	Bibliography []Reference
}

// Engine turns citation requests into rendered fragments and a bibliography.
type Engine interface {
	Resolve(requests []Request) (*Result, error)
}

// AnchorID returns the HTML id of the reference list entry for key.
func AnchorID(key string) string {
	return "ref-" + key
}

// Numeric is a numeric citation style in the manner of IEEE: entries are
// numbered in order of first citation, uncited entries follow in request order,
// and in-text citations read "[1], [3]" or "[2]–[4]" for runs.
type Numeric struct{}

var _ Engine = Numeric{}

// Resolve implements Engine.
func (Numeric) Resolve(requests []Request) (*Result, error) {
	numbers := make(map[string]int)
	var order []*Entry

	assign := func(e *Entry) {
		if _, seen := numbers[e.Key]; seen {
			return
		}
		order = append(order, e)
		numbers[e.Key] = len(order)
	}

	for i, req := range requests {
		for j, item := range req.Items {
			if item.Entry == nil {
				return nil, fmt.Errorf("request %d item %d: nil entry", i, j)
			}
			if !item.Hidden {
				assign(item.Entry)
			}
		}
	}
	for _, req := range requests {
		for _, item := range req.Items {
			if item.Hidden {
				assign(item.Entry)
			}
		}
	}

	res := &Result{Citations: make([]Fragment, 0, len(requests))}
	for _, req := range requests {
		res.Citations = append(res.Citations, renderFragment(req, numbers))
	}
	for _, e := range order {
		res.Bibliography = append(res.Bibliography, Reference{
			Key:   e.Key,
			Label: strconv.Itoa(numbers[e.Key]),
			HTML:  FormatEntry(e),
		})
	}
	return res, nil
}

type citedNumber struct {
	n   int
	key string
}

func renderFragment(req Request, numbers map[string]int) Fragment {
	seen := make(map[string]bool)
	var cited []citedNumber
	for _, item := range req.Items {
		if item.Hidden || seen[item.Entry.Key] {
			continue
		}
		seen[item.Entry.Key] = true
		cited = append(cited, citedNumber{n: numbers[item.Entry.Key], key: item.Entry.Key})
	}
	if len(cited) == 0 {
		return Fragment{}
	}
	sort.Slice(cited, func(i, j int) bool { return cited[i].n < cited[j].n })

	keys := make([]string, 0, len(cited))
	for _, c := range cited {
		keys = append(keys, c.key)
	}

	return Fragment{
		HTML:     `<span class="citation">` + joinRuns(cited, link) + `</span>`,
		Unlinked: `<span class="citation">` + joinRuns(cited, label) + `</span>`,
		Keys:     keys,
	}
}

// joinRuns formats sorted numbers, collapsing runs of three or more.
func joinRuns(cited []citedNumber, format func(citedNumber) string) string {
	var parts []string
	for start := 0; start < len(cited); {
		end := start
		for end+1 < len(cited) && cited[end+1].n == cited[end].n+1 {
			end++
		}
		if end-start >= 2 {
			parts = append(parts, format(cited[start])+"–"+format(cited[end]))
		} else {
			for k := start; k <= end; k++ {
				parts = append(parts, format(cited[k]))
			}
		}
		start = end + 1
	}
	return strings.Join(parts, ", ")
}

func label(c citedNumber) string {
	return fmt.Sprintf("[%d]", c.n)
}

func link(c citedNumber) string {
	return fmt.Sprintf(`<a href="#%s">[%d]</a>`, html.EscapeString(AnchorID(c.key)), c.n)
}

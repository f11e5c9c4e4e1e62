package citation

import (
	"html"
	"strings"
)

const maxListedAuthors = 6

// FormatEntry renders a reference list entry as HTML.
//
//	A. Author and B. Author, "Title," <i>Container</i>, vol. 1, no. 2, pp. 3–4, Publisher, Mon. 2020. doi:...
func FormatEntry(e *Entry) string {
	var parts []string

	if authors := formatAuthors(e.Field("author")); authors != "" {
		parts = append(parts, esc(authors))
	} else if editors := formatAuthors(e.Field("editor")); editors != "" {
		parts = append(parts, esc(editors)+", Ed.")
	}

	title := e.Field("title")
	container := firstNonEmpty(e.Field("journal"), e.Field("booktitle"))
	switch {
	case title == "":
	case isStandalone(e.Type):
		parts = append(parts, "<i>"+esc(title)+"</i>")
	default:
		parts = append(parts, "“"+esc(title)+",”")
	}
	if container != "" {
		prefix := ""
		if e.Type == "inproceedings" || e.Type == "incollection" {
			prefix = "in "
		}
		parts = append(parts, prefix+"<i>"+esc(container)+"</i>")
	}

	if v := e.Field("volume"); v != "" {
		parts = append(parts, "vol. "+esc(v))
	}
	if n := e.Field("number"); n != "" {
		parts = append(parts, "no. "+esc(n))
	}
	if p := e.Field("pages"); p != "" {
		prefix := "pp. "
		if !strings.ContainsAny(p, "-–,") {
			prefix = "p. "
		}
		parts = append(parts, prefix+esc(strings.ReplaceAll(p, "-", "–")))
	}
	if pub := firstNonEmpty(e.Field("publisher"), e.Field("institution"), e.Field("school"), e.Field("organization")); pub != "" {
		parts = append(parts, esc(pub))
	}
	if date := formatDate(e.Field("month"), e.Field("year")); date != "" {
		parts = append(parts, esc(date))
	}

	out := joinParts(parts)
	if out != "" {
		out += "."
	}

	if doi := e.Field("doi"); doi != "" {
		href := "https://doi.org/" + strings.TrimPrefix(doi, "https://doi.org/")
		out += ` doi: <a href="` + esc(href) + `">` + esc(doi) + `</a>.`
	} else if url := e.Field("url"); url != "" {
		out += ` [Online]. Available: <a href="` + esc(url) + `">` + esc(url) + `</a>`
	}
	return strings.TrimSpace(out)
}

// joinParts joins with ", " except after a part that already ends in a
// quotation-closing comma.
func joinParts(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			if strings.HasSuffix(parts[i-1], ",”") {
				b.WriteString(" ")
			} else {
				b.WriteString(", ")
			}
		}
		b.WriteString(p)
	}
	return b.String()
}

func isStandalone(entryType string) bool {
	switch entryType {
	case "book", "manual", "techreport", "phdthesis", "mastersthesis", "misc", "online":
		return true
	}
	return false
}

func formatAuthors(field string) string {
	if field == "" {
		return ""
	}
	var names []string
	for _, raw := range strings.Split(field, " and ") {
		if name := formatName(strings.TrimSpace(raw)); name != "" {
			names = append(names, name)
		}
	}
	switch {
	case len(names) == 0:
		return ""
	case len(names) > maxListedAuthors:
		return names[0] + " et al."
	case len(names) == 1:
		return names[0]
	case len(names) == 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// formatName turns "Last, First Middle" or "First Middle Last" into "F. M. Last".
func formatName(name string) string {
	if name == "" {
		return ""
	}
	if strings.EqualFold(name, "others") {
		return ""
	}
	var given []string
	var family string
	if last, first, ok := strings.Cut(name, ","); ok {
		family = strings.TrimSpace(last)
		given = strings.Fields(first)
	} else {
		fields := strings.Fields(name)
		family = fields[len(fields)-1]
		given = fields[:len(fields)-1]
	}

	initials := make([]string, 0, len(given))
	for _, g := range given {
		var parts []string
		for _, hyphenated := range strings.Split(g, "-") {
			r := []rune(hyphenated)
			if len(r) > 0 {
				parts = append(parts, string(r[0])+".")
			}
		}
		initials = append(initials, strings.Join(parts, "-"))
	}
	if len(initials) == 0 {
		return family
	}
	return strings.Join(initials, " ") + " " + family
}

var monthAbbrev = map[string]string{
	"1": "Jan.", "jan": "Jan.", "january": "Jan.",
	"2": "Feb.", "feb": "Feb.", "february": "Feb.",
	"3": "Mar.", "mar": "Mar.", "march": "Mar.",
	"4": "Apr.", "apr": "Apr.", "april": "Apr.",
	"5": "May", "may": "May",
	"6": "Jun.", "jun": "Jun.", "june": "Jun.",
	"7": "Jul.", "jul": "Jul.", "july": "Jul.",
	"8": "Aug.", "aug": "Aug.", "august": "Aug.",
	"9": "Sep.", "sep": "Sep.", "september": "Sep.",
	"10": "Oct.", "oct": "Oct.", "october": "Oct.",
	"11": "Nov.", "nov": "Nov.", "november": "Nov.",
	"12": "Dec.", "dec": "Dec.", "december": "Dec.",
}

func formatDate(month, year string) string {
	if year == "" {
		return ""
	}
	if m, ok := monthAbbrev[strings.ToLower(strings.TrimSpace(month))]; ok {
		return m + " " + year
	}
	return year
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func esc(s string) string { return html.EscapeString(s) }

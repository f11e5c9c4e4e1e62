// Package citation resolves inline citation requests against a bibliography
// library and renders citation fragments and a reference list as HTML.
package citation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nickng/bibtex"
)

// ErrMalformedLibrary indicates the bibliography source could not be parsed.
var ErrMalformedLibrary = errors.New("malformed bibliography")

// Entry is one bibliography record.
type Entry struct {
	Key    string
	Type   string
	Fields map[string]string
}

// Field returns a field value by lower-case name, or "".
func (e *Entry) Field(name string) string {
	return e.Fields[name]
}

// Library is an ordered set of entries keyed by citation key.
type Library struct {
	entries []*Entry
	byKey   map[string]*Entry
}

// NewLibrary builds a library from entries, rejecting duplicate keys.
func NewLibrary(entries ...*Entry) (*Library, error) {
	lib := &Library{byKey: make(map[string]*Entry, len(entries))}
	for _, e := range entries {
		if _, dup := lib.byKey[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrMalformedLibrary, e.Key)
		}
		lib.byKey[e.Key] = e
		lib.entries = append(lib.entries, e)
	}
	return lib, nil
}

// Get returns the entry for key.
func (l *Library) Get(key string) (*Entry, bool) {
	e, ok := l.byKey[key]
	return e, ok
}

// Entries returns the entries in source order.
func (l *Library) Entries() []*Entry { return l.entries }

// Len returns the number of entries.
func (l *Library) Len() int { return len(l.entries) }

// ParseBibTeX reads a BibTeX source into a library.
func ParseBibTeX(r io.Reader) (*Library, error) {
	bib, err := bibtex.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLibrary, err)
	}

	entries := make([]*Entry, 0, len(bib.Entries))
	for _, be := range bib.Entries {
		if be.CiteName == "" {
			return nil, fmt.Errorf("%w: %s entry without a citation key", ErrMalformedLibrary, be.Type)
		}
		fields := make(map[string]string, len(be.Fields))
		for name, value := range be.Fields {
			if value == nil {
				continue
			}
			fields[strings.ToLower(name)] = cleanTeX(value.String())
		}
		entries = append(entries, &Entry{
			Key:    be.CiteName,
			Type:   strings.ToLower(be.Type),
			Fields: fields,
		})
	}
	return NewLibrary(entries...)
}

// LoadLibrary reads and parses the BibTeX file at path.
func LoadLibrary(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bibliography %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	lib, err := ParseBibTeX(f)
	if err != nil {
		return nil, fmt.Errorf("parse bibliography %s: %w", path, err)
	}
	return lib, nil
}

var texReplacer = strings.NewReplacer(
	"{", "", "}", "",
	`\&`, "&", `\%`, "%", `\$`, "$", `\_`, "_", `\#`, "#",
	"---", "—", "--", "–", "~", " ",
)

// cleanTeX strips grouping braces and the common escapes from a field value.
func cleanTeX(s string) string {
	return strings.Join(strings.Fields(texReplacer.Replace(s)), " ")
}

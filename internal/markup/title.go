package markup

import (
	"fmt"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"
)

// extractTitle returns the flattened text of the document's level-1 heading,
// or "" when there is none. The heading stays in the document.
func extractTitle(doc gast.Node, source []byte) (string, error) {
	var title string
	found := false
	err := gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		h, ok := n.(*gast.Heading)
		if !ok || h.Level != 1 {
			return gast.WalkContinue, nil
		}
		text := flattenText(h, source)
		if found {
			return gast.WalkStop, fmt.Errorf("%w: %q and %q", ErrDuplicateTitle, title, text)
		}
		title, found = text, true
		return gast.WalkSkipChildren, nil
	})
	return title, err
}

// flattenText returns the plain text of n. Backslash escapes and character
// references are decoded as the HTML renderer decodes them; code spans keep
// their raw text.
func flattenText(n gast.Node, source []byte) string {
	var b strings.Builder
	_ = gast.Walk(n, func(c gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gast.Text:
			b.Write(decodeText(t.Segment.Value(source), t.IsRaw()))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gast.String:
			b.Write(decodeText(t.Value, t.IsRaw() || t.IsCode()))
		case *Citation, *RawInline:
			return gast.WalkSkipChildren, nil
		}
		return gast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func decodeText(v []byte, raw bool) []byte {
	if raw {
		return v
	}
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	return util.ResolveEntityNames(v)
}

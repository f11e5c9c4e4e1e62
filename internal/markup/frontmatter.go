package markup

import (
	"bytes"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	gast "github.com/yuin/goldmark/ast"
)

// FrontmatterLanguage is the fenced-block info string that marks the leading
// block as JSON frontmatter.
const FrontmatterLanguage = "=json"

// DefaultBibliographyField locates the bibliography path inside frontmatter.
const DefaultBibliographyField = "$.bibliography"

// extractFrontmatter removes a leading `=json` fenced block from doc and parses
// it. A document without one has no frontmatter: raw is "" and fm is nil.
func extractFrontmatter(doc gast.Node, source []byte) (raw string, fm map[string]any, err error) {
	block, ok := doc.FirstChild().(*gast.FencedCodeBlock)
	if !ok || string(block.Language(source)) != FrontmatterLanguage {
		return "", nil, nil
	}

	var buf bytes.Buffer
	lines := block.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	raw = buf.String()

	value, err := oj.ParseString(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrFrontmatter, err)
	}
	fm, ok = value.(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrFrontmatter, value)
	}

	doc.RemoveChild(doc, block)
	return raw, fm, nil
}

// lookupBibliography evaluates field against fm. Absent and null values yield "".
func lookupBibliography(field jp.Expr, fm map[string]any) (string, error) {
	results := field.Get(fm)
	if len(results) == 0 || results[0] == nil {
		return "", nil
	}
	path, ok := results[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrFrontmatter, field, results[0])
	}
	return path, nil
}

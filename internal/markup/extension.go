package markup

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const citeSuffix = "]{=cite}"

// citationParserPriority runs the citation parser ahead of the link parser (200),
// which shares the '[' trigger.
const citationParserPriority = 150

type citationParser struct{}

func (citationParser) Trigger() []byte { return []byte{'['} }

func (citationParser) Parse(_ gast.Node, block text.Reader, _ parser.Context) gast.Node {
	line, seg := block.PeekLine()
	end := bytes.Index(line, []byte(citeSuffix))
	if end < 1 {
		return nil
	}
	inner := line[1:end]
	if bytes.ContainsAny(inner, "[]") {
		return nil
	}
	keys := splitKeys(string(inner))
	if len(keys) == 0 {
		return nil
	}
	block.Advance(end + len(citeSuffix))
	return &Citation{Keys: keys, Offset: seg.Start}
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ";") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

type nodeRenderer struct{}

func (r nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindCitation, r.renderCitation)
	reg.Register(KindRawInline, r.renderRawInline)
	reg.Register(KindRawBlock, r.renderRawBlock)
}

// Markers that were never resolved against a bibliography render as nothing.
func (nodeRenderer) renderCitation(util.BufWriter, []byte, gast.Node, bool) (gast.WalkStatus, error) {
	return gast.WalkSkipChildren, nil
}

func (nodeRenderer) renderRawInline(w util.BufWriter, _ []byte, n gast.Node, entering bool) (gast.WalkStatus, error) {
	if entering {
		_, _ = w.Write(n.(*RawInline).HTML)
	}
	return gast.WalkSkipChildren, nil
}

func (nodeRenderer) renderRawBlock(w util.BufWriter, _ []byte, n gast.Node, entering bool) (gast.WalkStatus, error) {
	if entering {
		_, _ = w.Write(n.(*RawBlock).HTML)
		_ = w.WriteByte('\n')
	}
	return gast.WalkSkipChildren, nil
}

type citeExtension struct{}

// Citations is a goldmark extension adding `[key; key]{=cite}` markers and the
// raw passthrough nodes used to splice rendered citations back in.
var Citations goldmark.Extender = citeExtension{}

func (citeExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(citationParser{}, citationParserPriority),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(nodeRenderer{}, 500),
	))
}

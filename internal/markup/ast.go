package markup

import (
	"strings"

	gast "github.com/yuin/goldmark/ast"
)

// KindCitation is the node kind of an inline citation marker.
var KindCitation = gast.NewNodeKind("Citation")

// Citation is an inline `[k1; k2]{=cite}` marker. Offset is the byte offset of
// the marker in the original source and orders splices.
type Citation struct {
	gast.BaseInline
	Keys   []string
	Offset int
}

// Kind implements ast.Node.
func (n *Citation) Kind() gast.NodeKind { return KindCitation }

// Dump implements ast.Node.
func (n *Citation) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{"Keys": strings.Join(n.Keys, "; ")}, nil)
}

// KindRawInline is the node kind of inline HTML passthrough.
var KindRawInline = gast.NewNodeKind("RawInline")

// RawInline is HTML emitted verbatim inside a paragraph.
type RawInline struct {
	gast.BaseInline
	HTML []byte
}

// NewRawInline returns an inline passthrough node.
func NewRawInline(html string) *RawInline {
	return &RawInline{HTML: []byte(html)}
}

// Kind implements ast.Node.
func (n *RawInline) Kind() gast.NodeKind { return KindRawInline }

// Dump implements ast.Node.
func (n *RawInline) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{"HTML": string(n.HTML)}, nil)
}

// KindRawBlock is the node kind of block-level HTML passthrough.
var KindRawBlock = gast.NewNodeKind("RawBlock")

// RawBlock is HTML emitted verbatim between blocks.
type RawBlock struct {
	gast.BaseBlock
	HTML []byte
}

// NewRawBlock returns a block passthrough node.
func NewRawBlock(html string) *RawBlock {
	return &RawBlock{HTML: []byte(html)}
}

// Kind implements ast.Node.
func (n *RawBlock) Kind() gast.NodeKind { return KindRawBlock }

// Dump implements ast.Node.
func (n *RawBlock) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{"HTML": string(n.HTML)}, nil)
}

package pipeline

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindRawHTML is the node kind of RawHTML.
var KindRawHTML = ast.NewNodeKind("RawHTML")

// RawHTML is a block holding already-rendered markup. The tree rewrite
// substitutes it for code blocks and image paragraphs.
type RawHTML struct {
	ast.BaseBlock
	HTML string
}

// NewRawHTML returns a RawHTML block for markup.
func NewRawHTML(markup string) *RawHTML {
	return &RawHTML{HTML: markup}
}

// Kind implements ast.Node.
func (n *RawHTML) Kind() ast.NodeKind {
	return KindRawHTML
}

// IsRaw implements ast.Node.
func (n *RawHTML) IsRaw() bool {
	return true
}

// Dump implements ast.Node.
func (n *RawHTML) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"HTML": n.HTML}, nil)
}

type rawHTMLRenderer struct{}

func (r *rawHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindRawHTML, r.render)
}

func (r *rawHTMLRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	markup := node.(*RawHTML).HTML
	_, _ = w.WriteString(markup)
	if len(markup) == 0 || markup[len(markup)-1] != '\n' {
		_ = w.WriteByte('\n')
	}
	return ast.WalkSkipChildren, nil
}

type rawHTMLExtension struct{}

func (e *rawHTMLExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&rawHTMLRenderer{}, 500),
	))
}

// KindSuperscript is the node kind of Superscript.
var KindSuperscript = ast.NewNodeKind("Superscript")

// Superscript is an inline ^text^ span.
type Superscript struct {
	ast.BaseInline
}

// Kind implements ast.Node.
func (n *Superscript) Kind() ast.NodeKind {
	return KindSuperscript
}

// Dump implements ast.Node.
func (n *Superscript) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// superscriptParser recognizes ^text^ where text is non-empty and contains
// no whitespace, so "2^10^" is a superscript and "a ^ b ^ c" is not.
type superscriptParser struct{}

func (p *superscriptParser) Trigger() []byte {
	return []byte{'^'}
}

func (p *superscriptParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) < 3 || line[0] != '^' {
		return nil
	}

	end := -1
	for i := 1; i < len(line); i++ {
		c := line[i]
		if c == '^' {
			end = i
			break
		}
		if util.IsSpace(c) {
			return nil
		}
		if c == '\\' && i+1 < len(line) {
			i++
		}
	}
	if end <= 1 {
		return nil
	}

	node := &Superscript{}
	node.AppendChild(node, ast.NewTextSegment(text.NewSegment(seg.Start+1, seg.Start+end)))
	block.Advance(end + 1)
	return node
}

type superscriptRenderer struct{}

func (r *superscriptRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindSuperscript, r.render)
}

func (r *superscriptRenderer) render(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<sup>")
	} else {
		_, _ = w.WriteString("</sup>")
	}
	return ast.WalkContinue, nil
}

type superscriptExtension struct{}

func (e *superscriptExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&superscriptParser{}, 600),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&superscriptRenderer{}, 600),
	))
}

// Extensions returned by name for callers that build their own goldmark
// instance with the same grammar.
var (
	RawHTMLExtension     goldmark.Extender = &rawHTMLExtension{}
	SuperscriptExtension goldmark.Extender = &superscriptExtension{}
)

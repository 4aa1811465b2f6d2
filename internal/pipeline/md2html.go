package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Fenced code block languages that are not highlighted.
const (
	DiagramLanguage = "plantuml"
	MathLanguage    = "katex"
)

// Sentinel errors for the transform.
var (
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrNoRenderer     = errors.New("no renderer configured")
)

// CodeRenderer highlights a block of source code.
type CodeRenderer interface {
	RenderCode(ctx context.Context, source, language string) (string, error)
}

// MathRenderer typesets TeX math in display or inline mode.
type MathRenderer interface {
	RenderMath(ctx context.Context, source string, display bool) (string, error)
}

// DiagramRenderer renders a diagram description to inline SVG.
type DiagramRenderer interface {
	RenderDiagram(ctx context.Context, source string) (string, error)
}

// Result is the HTML fragment for one document body.
type Result struct {
	HTML string
	// NeedsMathCSS is true when any inline or block math rendered.
	NeedsMathCSS bool
}

// Engine converts a Markdown body to an HTML fragment, dispatching code,
// math and diagram blocks to their renderers. It holds no per-document
// state and is safe for concurrent use.
type Engine struct {
	md      goldmark.Markdown
	code    CodeRenderer
	math    MathRenderer
	diagram DiagramRenderer
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCodeRenderer sets the renderer for fenced and indented code blocks.
func WithCodeRenderer(r CodeRenderer) Option {
	return func(e *Engine) { e.code = r }
}

// WithMathRenderer sets the renderer for katex blocks and inline math.
// Without one, inline math is left as written.
func WithMathRenderer(r MathRenderer) Option {
	return func(e *Engine) { e.math = r }
}

// WithDiagramRenderer sets the renderer for plantuml blocks.
func WithDiagramRenderer(r DiagramRenderer) Option {
	return func(e *Engine) { e.diagram = r }
}

// WithLogger sets the logger for inline math fallbacks.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine. Blocks whose renderer is not configured fail
// with ErrNoRenderer.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		md:     NewMarkdown(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewMarkdown returns the goldmark instance used for both parsing and
// serialization.
func NewMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,            // Tables, strikethrough, autolinks, task lists
			extension.Footnote,       // [^1] footnotes
			extension.DefinitionList, // Term\n: definition
			extension.Typographer,    // Smart quotes, dashes, ellipses
			SuperscriptExtension,
			RawHTMLExtension,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(), // Raw HTML passthrough
		),
	)
}

// Logger returns a copy of e that logs to l. Used to attach per-document
// attributes without rebuilding the goldmark instance.
func (e *Engine) Logger(l *slog.Logger) *Engine {
	c := *e
	c.logger = l
	return &c
}

// Transform renders body. Any block renderer failure aborts the whole
// transform; inline math failures only leave the expression as written.
func (e *Engine) Transform(ctx context.Context, body string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	substituted, inline := substituteInlineMath(ctx, e.math, e.logger, body)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := []byte(substituted)
	ids := &headingIDs{IDs: parser.NewContext().IDs(), inline: inline}
	doc := e.md.Parser().Parse(text.NewReader(source),
		parser.WithContext(parser.NewContext(parser.WithIDs(ids))))

	rw := &rewriter{ctx: ctx, engine: e, source: source, inline: inline}
	if err := rw.walk(doc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := e.md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	return &Result{
		HTML:         inline.restore(buf.String()),
		NeedsMathCSS: inline.used() || rw.math,
	}, nil
}

// headingIDs generates automatic heading IDs from the heading text with
// inline math placeholders replaced by their source.
type headingIDs struct {
	parser.IDs
	inline *inlineMath
}

func (h *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	return h.IDs.Generate([]byte(h.inline.plain(string(value))), kind)
}

// rewriter replaces recognized nodes in a single pre-order pass: a node is
// visited before its children, and a replaced node's children are not
// visited.
type rewriter struct {
	ctx    context.Context
	engine *Engine
	source []byte
	inline *inlineMath
	math   bool
}

func (r *rewriter) walk(n ast.Node) error {
	for child := n.FirstChild(); child != nil; {
		next := child.NextSibling()

		repl, err := r.visit(child)
		if err != nil {
			return err
		}
		if repl != nil {
			n.ReplaceChild(n, child, repl)
		} else if err := r.walk(child); err != nil {
			return err
		}

		child = next
	}
	return nil
}

// visit returns the replacement for n, or nil to keep it.
func (r *rewriter) visit(n ast.Node) (ast.Node, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}

	switch node := n.(type) {
	case *ast.FencedCodeBlock:
		return r.codeBlock(node, string(node.Language(r.source)))
	case *ast.CodeBlock:
		return r.codeBlock(node, "")
	case *ast.Paragraph:
		img := solitaryImage(node)
		if img == nil {
			return nil, nil
		}
		return NewRawHTML(r.figure(img)), nil
	case *ast.Link:
		node.Destination = r.plainBytes(node.Destination)
		node.Title = r.plainBytes(node.Title)
	case *ast.Image:
		node.Destination = r.plainBytes(node.Destination)
		node.Title = r.plainBytes(node.Title)
	}
	return nil, nil
}

// plainBytes undoes inline math substitution in link destinations and
// titles, which goldmark escapes before the markup could be restored.
func (r *rewriter) plainBytes(b []byte) []byte {
	if !bytes.Contains(b, []byte(MathStartPlaceholder)) {
		return b
	}
	return []byte(r.inline.plain(string(b)))
}

func (r *rewriter) codeBlock(n ast.Node, language string) (ast.Node, error) {
	source := r.inline.plain(blockText(n, r.source))
	e := r.engine

	switch language {
	case DiagramLanguage:
		if e.diagram == nil {
			return nil, r.blockError(n, DiagramLanguage, ErrNoRenderer)
		}
		svg, err := e.diagram.RenderDiagram(r.ctx, source)
		if err != nil {
			return nil, r.blockError(n, DiagramLanguage, err)
		}
		return NewRawHTML(`<figure class="diagram">` + svg + "</figure>"), nil

	case MathLanguage:
		if e.math == nil {
			return nil, r.blockError(n, MathLanguage, ErrNoRenderer)
		}
		out, err := e.math.RenderMath(r.ctx, source, true)
		if err != nil {
			return nil, r.blockError(n, MathLanguage, err)
		}
		r.math = true
		return NewRawHTML(out), nil

	default:
		if e.code == nil {
			return nil, r.blockError(n, "code", ErrNoRenderer)
		}
		out, err := e.code.RenderCode(r.ctx, source, language)
		if err != nil {
			return nil, r.blockError(n, "code", err)
		}
		return NewRawHTML(out), nil
	}
}

func (r *rewriter) blockError(n ast.Node, kind string, err error) error {
	lines := n.Lines()
	if lines.Len() == 0 {
		return fmt.Errorf("rendering %s block: %w", kind, err)
	}
	line := bytes.Count(r.source[:lines.At(0).Start], []byte("\n")) + 1
	return fmt.Errorf("rendering %s block at line %d: %w", kind, line, err)
}

// blockText concatenates the literal lines of a code block.
func blockText(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

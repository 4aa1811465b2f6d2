package pipeline

import (
	"html"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"
)

// solitaryImage returns the image when p contains exactly one child and that
// child is an image.
func solitaryImage(p *ast.Paragraph) *ast.Image {
	if p.ChildCount() != 1 {
		return nil
	}
	img, _ := p.FirstChild().(*ast.Image)
	return img
}

// figure renders img as a <figure>. The alt text is the image's inline
// text; the caption is the title when set, otherwise the alt text. An image
// with neither has no caption.
func (r *rewriter) figure(img *ast.Image) string {
	alt := r.inline.plain(inlineText(img, r.source))
	title := r.inline.plain(html.UnescapeString(string(util.UnescapePunctuations(img.Title))))
	src := string(util.URLEscape(r.plainBytes(img.Destination), true))

	caption := title
	if caption == "" {
		caption = alt
	}

	var b strings.Builder
	b.WriteString(`<figure><img src="`)
	b.WriteString(html.EscapeString(src))
	b.WriteString(`" alt="`)
	b.WriteString(html.EscapeString(alt))
	b.WriteString(`"`)
	if title != "" {
		b.WriteString(` title="`)
		b.WriteString(html.EscapeString(title))
		b.WriteString(`"`)
	}
	b.WriteString(`>`)
	if caption != "" {
		b.WriteString(`<figcaption>`)
		b.WriteString(html.EscapeString(caption))
		b.WriteString(`</figcaption>`)
	}
	b.WriteString("</figure>\n")
	return b.String()
}

// inlineText concatenates the unescaped text content of n's descendants.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || child == n {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(util.UnescapePunctuations(t.Segment.Value(source)))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			if t.IsCode() {
				b.Write(t.Value)
			} else {
				b.Write(util.UnescapePunctuations(t.Value))
			}
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return html.UnescapeString(b.String())
}

package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultChromaStyle is the style used when none is configured.
const DefaultChromaStyle = "github"

// ErrUnknownStyle is returned when a Chroma style name is not registered.
var ErrUnknownStyle = errors.New("unknown highlight style")

// Chroma highlights code in process. Output uses CSS classes so the page
// needs the stylesheet produced by WriteCSS.
type Chroma struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewChroma creates a Chroma renderer for the named style.
// An empty name selects DefaultChromaStyle.
func NewChroma(style string) (*Chroma, error) {
	if style == "" {
		style = DefaultChromaStyle
	}
	s, ok := styles.Registry[strings.ToLower(style)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
	return &Chroma{
		style:     s,
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
	}, nil
}

// RenderCode highlights source. Unknown or empty languages fall back to
// plain text.
func (c *Chroma) RenderCode(ctx context.Context, source, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenising %s: %w", language, err)
	}

	var b strings.Builder
	b.WriteString(`<div class="highlight">`)
	if err := c.formatter.Format(&b, c.style, iterator); err != nil {
		return "", fmt.Errorf("formatting %s: %w", language, err)
	}
	b.WriteString("</div>\n")
	return b.String(), nil
}

// WriteCSS writes the stylesheet matching RenderCode's class names.
func (c *Chroma) WriteCSS(w io.Writer) error {
	return c.formatter.WriteCSS(w, c.style)
}

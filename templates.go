package md2site

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/alnah/go-md2site/internal/dateutil"
	"github.com/alnah/go-md2site/internal/fileutil"
)

// SiteInfo describes the site as a whole.
type SiteInfo struct {
	Title   string
	Author  string
	BaseURL string // Absolute, e.g. "https://example.com/blog"; empty keeps links site-relative
}

// Theme is the look of the site: templates plus stylesheets.
type Theme struct {
	Templates  *TemplateSet
	Style      string // Page stylesheet, inlined in every page
	MathStyle  string // Inlined only in pages with typeset math
	DateFormat string // See dateutil; empty uses the default
}

// LoadTheme loads the named style and template set, plus the math
// stylesheet. Empty names select the built-in defaults.
func LoadTheme(loader AssetLoader, styleName, templateName string) (Theme, error) {
	if styleName == "" {
		styleName = DefaultStyle
	}
	if templateName == "" {
		templateName = DefaultTemplateSet
	}

	style, err := loader.LoadStyle(styleName)
	if err != nil {
		return Theme{}, err
	}
	mathStyle, err := loader.LoadStyle(MathStyle)
	if err != nil {
		return Theme{}, err
	}
	ts, err := loader.LoadTemplateSet(templateName)
	if err != nil {
		return Theme{}, err
	}

	return Theme{Templates: ts, Style: style, MathStyle: mathStyle}, nil
}

// Templates assembles pages from rendered content. It is built once and is
// safe for concurrent use.
type Templates struct {
	info  SiteInfo
	theme Theme
	post  *template.Template
	index *template.Template
}

// NewTemplates parses the theme's templates. Besides the html/template
// builtins, templates can call:
//
//	absurl "/posts/a/"   prefix a site path with SiteInfo.BaseURL
//	atomdate .Date       RFC 3339 in UTC
//	date .Date           formatted with Theme.DateFormat
func NewTemplates(info SiteInfo, theme Theme) (*Templates, error) {
	if theme.Templates == nil {
		return nil, fmt.Errorf("%w: theme has no template set", ErrTemplate)
	}

	layout, err := dateutil.Layout(theme.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}

	funcs := template.FuncMap{
		"absurl":   func(p string) string { return absURL(info.BaseURL, p) },
		"atomdate": dateutil.AtomDate,
		"date":     func(t time.Time) string { return t.Format(layout) },
	}

	post, err := template.New("post").Funcs(funcs).Parse(theme.Templates.Post)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing post template of %s: %w", ErrTemplate, theme.Templates.Name, err)
	}
	index, err := template.New("index").Funcs(funcs).Parse(theme.Templates.Index)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing index template of %s: %w", ErrTemplate, theme.Templates.Name, err)
	}

	return &Templates{info: info, theme: theme, post: post, index: index}, nil
}

// postData is the value the post template executes against.
type postData struct {
	Title          string
	Site           SiteInfo
	Document       *Document
	Content        template.HTML
	Style          template.CSS
	IncludeMathCSS bool
	MathStyle      template.CSS
}

// indexData is the value the index template executes against.
type indexData struct {
	Title    string
	Site     SiteInfo
	Sections []Section
	Style    template.CSS
}

// Post writes the full HTML page for page.
func (t *Templates) Post(w io.Writer, page *Page) error {
	data := postData{
		Title:          page.Document.Title,
		Site:           t.info,
		Document:       page.Document,
		Content:        template.HTML(page.Content), // #nosec G203 -- produced by the markdown engine
		Style:          template.CSS(t.theme.Style), // #nosec G203 -- loaded from trusted assets
		IncludeMathCSS: page.NeedsMathCSS,
		MathStyle:      template.CSS(t.theme.MathStyle), // #nosec G203 -- loaded from trusted assets
	}
	if err := t.post.Execute(w, data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTemplate, page.Document.Source, err)
	}
	return nil
}

// Index writes the listing page. docs are expected in display order, see
// SortByDate; they are grouped with GroupBySection.
func (t *Templates) Index(w io.Writer, docs []*Document) error {
	data := indexData{
		Title:    t.info.Title,
		Site:     t.info,
		Sections: GroupBySection(docs),
		Style:    template.CSS(t.theme.Style), // #nosec G203 -- loaded from trusted assets
	}
	if err := t.index.Execute(w, data); err != nil {
		return fmt.Errorf("%w: index: %w", ErrTemplate, err)
	}
	return nil
}

// Info returns the site description the templates were built with.
func (t *Templates) Info() SiteInfo {
	return t.info
}

// absURL joins a site path onto base. Absolute URLs and an empty base leave
// p unchanged.
func absURL(base, p string) string {
	if base == "" || fileutil.IsURL(p) {
		return p
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

package md2site

import (
	"fmt"
	"net/url"

	"github.com/alnah/go-md2site/internal/frontmatter"
	"github.com/alnah/go-md2site/internal/pipeline"
)

// Metadata is the validated header of a published document.
type Metadata = frontmatter.Metadata

// DefaultSection is the section of documents whose header omits one.
const DefaultSection = frontmatter.DefaultSection

// Renderer capabilities. The render package provides subprocess-backed
// implementations; tests substitute fakes.
type (
	CodeRenderer    = pipeline.CodeRenderer
	MathRenderer    = pipeline.MathRenderer
	DiagramRenderer = pipeline.DiagramRenderer
)

// Document is a published source file: its metadata and its Markdown body
// with the header stripped.
type Document struct {
	Metadata
	Body   string
	Source string // Path or identifier the document was loaded from
	URL    string // Site-relative, see URLFor
}

// URLFor returns the canonical path of the document with the given slug.
// The slug is escaped as a single path segment.
func URLFor(slug string) string {
	return "/posts/" + url.PathEscape(slug) + "/"
}

// Page is a rendered document ready for templating.
type Page struct {
	Document *Document
	Content  string // HTML fragment for the body
	// NeedsMathCSS is true when the page contains typeset math and its
	// template must include the math stylesheet.
	NeedsMathCSS bool
}

// Stage names the step at which a document failed.
type Stage string

// Stages reported in a Failure.
const (
	StageLoad   Stage = "load"
	StageRender Stage = "render"
)

// Failure records one document that could not be loaded or rendered.
type Failure struct {
	Source string
	Stage  Stage
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.Source, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Section groups documents under one section name.
type Section struct {
	Name      string
	Documents []*Document
}

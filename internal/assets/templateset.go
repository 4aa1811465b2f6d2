package assets

// TemplateSet holds the page templates for one theme.
type TemplateSet struct {
	Name  string // Identifier (name or directory)
	Post  string // Template for a single document page
	Index string // Template for the document listing
}

// Template file names inside a template set directory.
const (
	PostTemplateFile  = "post.html"
	IndexTemplateFile = "index.html"
)

// Built-in asset names.
const (
	DefaultTemplateSetName = "default"
	DefaultStyleName       = "default"
	MathStyleName          = "katex"
)

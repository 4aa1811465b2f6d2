// Package md2site turns a directory of Markdown posts into a static site.
//
// # Quick Start
//
// Create a Site with the renderers to use, load the posts, and render them:
//
//	site, err := md2site.NewSite(
//	    md2site.WithCodeRenderer(render.NewPygments("", nil)),
//	    md2site.WithMathRenderer(render.NewKaTeX("", nil)),
//	    md2site.WithDiagramRenderer(render.NewPlantUML("", nil)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	docs, failures, err := site.LoadDocuments("posts")
//	pages, more := site.RenderAll(ctx, docs)
//
// Loading never fails for a single bad document: documents without a
// metadata header or without a valid published date are skipped, and
// documents with a malformed header are reported as a Failure. Rendering
// follows the same rule, one Failure per document that could not render.
//
// # Documents
//
// A document starts with a YAML header between two "---" lines:
//
//	---
//	title: Hello
//	slug: hello
//	tags: [go]
//	summary: A first post.
//	published: "2023-01-02T03:04:05+00:00"
//	section: Notes
//	---
//	Body in Markdown.
//
// title, slug, tags and summary are required. A document without published,
// or with a value that is not an RFC 3339 timestamp, is not published.
// section defaults to "Miscellaneous". The document URL is /posts/<slug>/.
//
// # Rendering
//
// Bodies are rendered with goldmark (GFM, footnotes, definition lists,
// typographer, ^superscript^). Fenced code blocks are dispatched by their
// language tag:
//
//   - katex: display math, via the MathRenderer
//   - plantuml: an SVG diagram, via the DiagramRenderer
//   - anything else, or no tag: the CodeRenderer
//
// Inline math written as $x$ or \(x\) is typeset with the MathRenderer; an
// expression that fails to render is left as written. A paragraph holding a
// single image becomes a <figure> with a caption.
//
// # Assembly
//
// Templates combines a rendered Page with a TemplateSet and stylesheets into
// the final HTML, and also renders the index and the Atom feed:
//
//	loader, _ := md2site.NewAssetLoader("")
//	theme, _ := md2site.LoadTheme(loader, "default", "default")
//	tmpl, _ := md2site.NewTemplates(md2site.SiteInfo{Title: "Notes"}, theme)
//	_ = tmpl.Post(w, page)
//
// # Custom Assets
//
// Override built-in styles and templates with an asset directory:
//
//	assets/
//	├── styles/
//	│   └── custom.css
//	└── templates/
//	    └── custom/
//	        ├── post.html
//	        └── index.html
package md2site

// Package assets provides the stylesheets and HTML page templates used to
// assemble the site. Assets can be loaded from embedded files or a custom
// directory.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in theme)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the site builder. A custom directory
// may override a single stylesheet or template set and inherit the rest.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   ├── default.css          # Page stylesheet, inlined into every page
//	│   └── katex.css            # Math stylesheet, inlined when a page has math
//	└── templates/
//	    └── {name}/
//	        ├── post.html        # One document
//	        └── index.html       # Document listing
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets

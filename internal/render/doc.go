// Package render provides the block renderers used by the Markdown
// transform engine: syntax highlighting (Pygments or Chroma), math
// typesetting (KaTeX) and diagram rasterizing (PlantUML).
//
// The subprocess-backed renderers write the whole block to the tool's stdin,
// read stdout to completion and treat any non-zero exit as a failure.
// Every invocation runs under a timeout; on expiry the process group is
// killed and the call fails with ErrTimeout.
package render

// Package pipeline implements the Markdown transform engine.
//
// A document body goes through these stages:
//   - Inline math pre-pass ($...$ and \(...\) outside code)
//   - Goldmark parse with GFM, footnotes, definition lists, typographer,
//     superscript and automatic heading IDs
//   - Pre-order tree rewrite replacing code, math and diagram blocks and
//     solitary-image paragraphs with rendered HTML
//   - Goldmark serialization with the same configuration
//
// Block rendering is delegated to the CodeRenderer, MathRenderer and
// DiagramRenderer interfaces; internal/render provides the subprocess and
// in-process implementations.
package pipeline
